package config

import (
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:        "gemini",
			Model:           "gemini-2.0-flash",
			Timeout:         60 * time.Second,
			APIKey:          "test-key",
			MaxRetries:      3,
			Temperature:     0.7,
			MaxOutputTokens: 500,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		Store: StoreConfig{
			Path:        "candidates.json",
			LockTimeout: 5 * time.Second,
		},
		App: AppConfig{
			LogLevel:         "info",
			MaxMessageLength: 4000,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "missing API key",
			mutate:      func(c *Config) { c.AI.APIKey = "" },
			expectError: true,
		},
		{
			name:        "zero timeout",
			mutate:      func(c *Config) { c.AI.Timeout = 0 },
			expectError: true,
		},
		{
			name:        "zero max output tokens",
			mutate:      func(c *Config) { c.AI.MaxOutputTokens = 0 },
			expectError: true,
		},
		{
			name:        "temperature above range",
			mutate:      func(c *Config) { c.AI.Temperature = 2.5 },
			expectError: true,
		},
		{
			name:        "temperature at upper bound",
			mutate:      func(c *Config) { c.AI.Temperature = 2.0 },
			expectError: false,
		},
		{
			name:        "temperature zero",
			mutate:      func(c *Config) { c.AI.Temperature = 0 },
			expectError: false,
		},
		{
			name:        "missing server port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
		},
		{
			name:        "missing store path",
			mutate:      func(c *Config) { c.Store.Path = "" },
			expectError: true,
		},
		{
			name:        "zero max message length",
			mutate:      func(c *Config) { c.App.MaxMessageLength = 0 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("Validate() expected an error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
	}{
		{
			name:        "disabled mode",
			tls:         TLSConfig{Mode: "disabled"},
			expectError: false,
		},
		{
			name: "server mode with cert and key",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/etc/talentscout/tls.crt",
				KeyFile:  "/etc/talentscout/tls.key",
			},
			expectError: false,
		},
		{
			name:        "server mode without cert files",
			tls:         TLSConfig{Mode: "server"},
			expectError: true,
		},
		{
			name: "server mode missing key file",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/etc/talentscout/tls.crt",
			},
			expectError: true,
		},
		{
			name:        "unknown mode",
			tls:         TLSConfig{Mode: "mutual"},
			expectError: true,
		},
		{
			name: "invalid min version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/etc/talentscout/tls.crt",
				KeyFile:    "/etc/talentscout/tls.key",
				MinVersion: "1.0",
			},
			expectError: true,
		},
		{
			name: "min version 1.3",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/etc/talentscout/tls.crt",
				KeyFile:    "/etc/talentscout/tls.key",
				MinVersion: "1.3",
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.expectError && err == nil {
				t.Error("ValidateTLSConfig() expected an error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("ValidateTLSConfig() unexpected error: %v", err)
			}
		})
	}
}

func TestApplyFallbacksAPIKeys(t *testing.T) {
	t.Setenv("TALENTSCOUT_SERVER_APIKEYS", "key-one, key-two ,key-three")

	cfg := validTestConfig()
	cfg.applyFallbacks()

	if len(cfg.Server.APIKeys) != 3 {
		t.Fatalf("parsed %d API keys, expected 3", len(cfg.Server.APIKeys))
	}
	expected := []string{"key-one", "key-two", "key-three"}
	for i, want := range expected {
		if cfg.Server.APIKeys[i] != want {
			t.Errorf("APIKeys[%d] = %q, expected %q", i, cfg.Server.APIKeys[i], want)
		}
	}
}

func TestApplyFallbacksLegacyGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "legacy-key")

	cfg := validTestConfig()
	cfg.AI.APIKey = ""
	cfg.applyFallbacks()

	if cfg.AI.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, expected the legacy environment value", cfg.AI.APIKey)
	}
}

func TestApplyFallbacksTLSMinVersion(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.TLS.Mode = "server"
	cfg.Server.TLS.MinVersion = ""
	cfg.applyFallbacks()

	if cfg.Server.TLS.MinVersion != "1.2" {
		t.Errorf("MinVersion = %q, expected default 1.2", cfg.Server.TLS.MinVersion)
	}
}
