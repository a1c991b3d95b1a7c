package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// systemPromptOverride holds the prompt content loaded from an external
// file. Empty means the built-in default prompt is in effect.
var (
	systemPromptMu       sync.RWMutex
	systemPromptOverride string
)

// SystemPromptOverride returns the system prompt loaded from the configured
// file, or an empty string when no override is loaded.
func SystemPromptOverride() string {
	systemPromptMu.RLock()
	defer systemPromptMu.RUnlock()
	return systemPromptOverride
}

// SetSystemPromptOverride replaces the loaded system prompt. Used by the
// prompt watcher when the file changes on disk.
func SetSystemPromptOverride(content string) {
	systemPromptMu.Lock()
	defer systemPromptMu.Unlock()
	systemPromptOverride = content
}

// loadSystemPromptFile loads the system prompt from an external file if a
// file path is specified
func (c *Config) loadSystemPromptFile() error {
	if c.AI.SystemPromptFile == "" {
		log.Println("[CONFIG] No system prompt file configured - using built-in default")
		return nil
	}

	content, err := ReadSystemPromptFile(c.AI.SystemPromptFile)
	if err != nil {
		return err
	}

	SetSystemPromptOverride(content)
	return nil
}

// ReadSystemPromptFile reads and validates a system prompt file
func ReadSystemPromptFile(filePath string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for system prompt file '%s': %w", filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("system prompt file not found: %s", absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt file '%s': %w", absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("system prompt file '%s' is empty", absPath)
	}

	log.Printf("[CONFIG] Successfully loaded system prompt from file: %s (%d characters)",
		absPath, len(trimmedContent))

	return trimmedContent, nil
}
