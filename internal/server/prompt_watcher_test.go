package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"talentscout/internal/errors"
)

func TestPromptWatcherRequiresFile(t *testing.T) {
	if _, err := NewPromptWatcher("", time.Second, func() {}, nil); err == nil {
		t.Error("NewPromptWatcher() with empty path expected an error")
	}
}

func TestPromptWatcherStartStop(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	promptFile := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(promptFile, []byte("initial prompt"), 0600); err != nil {
		t.Fatalf("failed to create prompt file: %v", err)
	}

	watcher, err := NewPromptWatcher(promptFile, 50*time.Millisecond, func() {}, logger)
	if err != nil {
		t.Fatalf("NewPromptWatcher() error: %v", err)
	}

	if watcher.IsRunning() {
		t.Error("watcher reports running before Start()")
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !watcher.IsRunning() {
		t.Error("watcher not running after Start()")
	}

	// Starting twice fails
	if err := watcher.Start(); err == nil {
		t.Error("second Start() expected an error")
	}

	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if watcher.IsRunning() {
		t.Error("watcher still running after Stop()")
	}

	// Stopping again is a no-op
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestPromptWatcherTriggersReload(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	promptFile := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(promptFile, []byte("initial prompt"), 0600); err != nil {
		t.Fatalf("failed to create prompt file: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	watcher, err := NewPromptWatcher(promptFile, 20*time.Millisecond, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}, logger)
	if err != nil {
		t.Fatalf("NewPromptWatcher() error: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	}()

	// The modification time comparison needs the write to land after the
	// baseline taken in Start.
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(promptFile, []byte("updated prompt"), 0600); err != nil {
		t.Fatalf("failed to update prompt file: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked after prompt file change")
	}
}
