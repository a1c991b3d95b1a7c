package ai

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"talentscout/internal/config"
	"talentscout/internal/types"

	"google.golang.org/api/googleapi"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func testProviderConfig() *config.AIConfig {
	return &config.AIConfig{
		Provider:        "gemini",
		Model:           "gemini-2.0-flash",
		Timeout:         60 * time.Second,
		MaxRetries:      3,
		Temperature:     0.7,
		MaxOutputTokens: 500,
	}
}

func TestIsRetryableError(t *testing.T) {
	provider := &GeminiProvider{config: testProviderConfig()}

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "nil error",
			err:       nil,
			retryable: false,
		},
		{
			name:      "network timeout",
			err:       timeoutError{},
			retryable: true,
		},
		{
			name:      "rate limited",
			err:       &googleapi.Error{Code: http.StatusTooManyRequests},
			retryable: true,
		},
		{
			name:      "internal server error",
			err:       &googleapi.Error{Code: http.StatusInternalServerError},
			retryable: true,
		},
		{
			name:      "bad gateway",
			err:       &googleapi.Error{Code: http.StatusBadGateway},
			retryable: true,
		},
		{
			name:      "service unavailable",
			err:       &googleapi.Error{Code: http.StatusServiceUnavailable},
			retryable: true,
		},
		{
			name:      "gateway timeout",
			err:       &googleapi.Error{Code: http.StatusGatewayTimeout},
			retryable: true,
		},
		{
			name:      "unauthorized is not retried",
			err:       &googleapi.Error{Code: http.StatusUnauthorized},
			retryable: false,
		},
		{
			name:      "bad request is not retried",
			err:       &googleapi.Error{Code: http.StatusBadRequest},
			retryable: false,
		},
		{
			name:      "plain error is not retried",
			err:       fmt.Errorf("something else went wrong"),
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := provider.isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableError(%v) = %v, expected %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestBuildRequestRoleMapping(t *testing.T) {
	provider := &GeminiProvider{config: testProviderConfig()}

	turns := []types.ConversationTurn{
		{Role: types.RoleSystem, Content: "instructions"},
		{Role: types.RoleSystem, Content: "record context"},
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "hi, who am I speaking with?"},
		{Role: types.RoleUser, Content: "my name is jane"},
	}

	contents, genConfig := provider.buildRequest(turns)

	// System turns go into the system instruction, not the content list
	if len(contents) != 3 {
		t.Fatalf("buildRequest() produced %d contents, expected 3", len(contents))
	}
	if genConfig.SystemInstruction == nil {
		t.Fatal("buildRequest() did not set a system instruction")
	}

	if genConfig.MaxOutputTokens != 500 {
		t.Errorf("MaxOutputTokens = %d, expected 500", genConfig.MaxOutputTokens)
	}
	if genConfig.Temperature == nil {
		t.Fatal("Temperature not set for a positive configured value")
	}
	if *genConfig.Temperature != 0.7 {
		t.Errorf("Temperature = %v, expected 0.7", *genConfig.Temperature)
	}
}

func TestBuildRequestZeroTemperatureOmitted(t *testing.T) {
	cfg := testProviderConfig()
	cfg.Temperature = 0
	provider := &GeminiProvider{config: cfg}

	_, genConfig := provider.buildRequest([]types.ConversationTurn{
		{Role: types.RoleUser, Content: "hello"},
	})

	if genConfig.Temperature != nil {
		t.Errorf("Temperature = %v, expected unset for zero configuration", *genConfig.Temperature)
	}
	if genConfig.SystemInstruction != nil {
		t.Error("SystemInstruction set without any system turns")
	}
}

func TestExtractTokenUsageNil(t *testing.T) {
	if usage := extractTokenUsage(nil); usage != nil {
		t.Errorf("extractTokenUsage(nil) = %v, expected nil", usage)
	}
}
