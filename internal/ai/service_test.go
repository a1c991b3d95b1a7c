package ai

import (
	"testing"
	"time"

	"talentscout/internal/config"
	"talentscout/internal/errors"
)

func TestNewServiceUnsupportedProvider(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	cfg := &config.AIConfig{
		Provider:        "openai",
		Model:           "gpt-4",
		Timeout:         60 * time.Second,
		APIKey:          "test-key",
		Temperature:     0.7,
		MaxOutputTokens: 500,
	}

	service, err := NewService(cfg, logger)
	if err == nil {
		t.Fatal("NewService() with unsupported provider expected an error")
	}
	if service != nil {
		t.Error("NewService() returned a service alongside an error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("NewService() error type = %T, expected *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("error code = %q, expected %q", appErr.Code, errors.ErrCodeInvalidConfig)
	}
}
