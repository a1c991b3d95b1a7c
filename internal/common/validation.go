package common

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateMessage checks a chat message before it reaches the dialogue
// engine. Whitespace-only input counts as empty.
func ValidateMessage(message string, maxLength int) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message must not be empty")
	}

	if maxLength > 0 && utf8.RuneCountInString(message) > maxLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", maxLength)
	}

	return nil
}
