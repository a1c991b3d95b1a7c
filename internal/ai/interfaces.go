package ai

import (
	"context"

	"talentscout/internal/types"
)

// Provider is the language-model capability boundary: given an ordered
// sequence of role-tagged turns, return a single assistant reply. Failures
// are returned as errors and recovered by the caller.
type Provider interface {
	Complete(ctx context.Context, turns []types.ConversationTurn) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
