// Package engine implements the screening dialogue engine: exit-intent
// detection, candidate-field merging, and assembly of the bounded message
// window sent to the language model. The engine is stateless; conversation
// history and the candidate record are supplied by the caller on every turn
// and handed back in the TurnResult.
package engine

import (
	"context"
	"strings"

	"talentscout/internal/ai"
	"talentscout/internal/errors"
	"talentscout/internal/extract"
	"talentscout/internal/types"
)

// HistoryWindow is the maximum number of trailing history turns included in
// a model request. Older turns are dropped silently, never summarized.
const HistoryWindow = 10

// exitKeywords is the fixed exit-intent vocabulary. Matching is substring
// based, so "I will not stop" ends the conversation because it contains
// "stop".
var exitKeywords = []string{
	"bye", "goodbye", "exit", "quit", "end", "stop", "thanks bye", "thank you bye",
}

// Completer is the narrow completion capability the engine consumes. It is
// satisfied by ai.Provider implementations and by test fakes.
type Completer interface {
	Complete(ctx context.Context, turns []types.ConversationTurn) (string, *ai.TokenUsage, error)
}

// Engine orchestrates a single screening turn.
type Engine struct {
	completer    Completer
	systemPrompt func() string
	logger       *errors.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSystemPrompt overrides the default system instructions. The function is
// consulted on every turn, so a hot-reloaded prompt takes effect immediately.
func WithSystemPrompt(prompt func() string) Option {
	return func(e *Engine) {
		if prompt != nil {
			e.systemPrompt = prompt
		}
	}
}

// New creates a screening engine over the given completion capability.
func New(completer Completer, logger *errors.Logger, opts ...Option) *Engine {
	e := &Engine{
		completer:    completer,
		systemPrompt: func() string { return DefaultSystemPrompt },
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckExitIntent reports whether the utterance signals that the candidate
// wants to end the screening conversation.
func (e *Engine) CheckExitIntent(utterance string) bool {
	lowered := strings.ToLower(strings.TrimSpace(utterance))
	for _, kw := range exitKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Respond runs one screening turn. The returned TurnResult carries the reply
// text, the possibly-updated candidate record, and the end-of-conversation
// flag. The inputs are never mutated in place.
func (e *Engine) Respond(ctx context.Context, utterance string, history []types.ConversationTurn, record types.CandidateRecord) types.TurnResult {
	if e.CheckExitIntent(utterance) {
		// No extraction on the exit utterance itself.
		return types.TurnResult{
			Message:           FarewellMessage,
			ConversationEnded: true,
			CandidateData:     record.Clone(),
		}
	}

	merged := record.Clone()
	added := merged.Merge(extract.Extract(utterance, record))
	if added > 0 && e.logger != nil {
		e.logger.Debug("Extracted candidate fields",
			"fields_added", added,
			"fields_known", len(merged))
	}

	messages := e.buildMessages(utterance, history, merged)

	reply, _, err := e.completer.Complete(ctx, messages)
	if err != nil {
		// Recovered locally: the candidate sees a generic apology and the
		// conversation stays active. Fields merged from this utterance are
		// discarded with the failed turn.
		if e.logger != nil {
			e.logger.LogError(err, "Completion capability failed, returning apology")
		}
		return types.TurnResult{
			Message:           ApologyMessage,
			ConversationEnded: false,
			CandidateData:     record.Clone(),
		}
	}

	return types.TurnResult{
		Message:           reply,
		ConversationEnded: false,
		CandidateData:     merged,
	}
}

// buildMessages assembles the ordered outbound request: system instructions,
// the serialized record when non-empty, the trailing history window, and the
// current utterance.
func (e *Engine) buildMessages(utterance string, history []types.ConversationTurn, record types.CandidateRecord) []types.ConversationTurn {
	messages := make([]types.ConversationTurn, 0, len(history)+3)
	messages = append(messages, types.ConversationTurn{
		Role:    types.RoleSystem,
		Content: e.systemPrompt(),
	})

	if len(record) > 0 {
		if serialized, err := record.IndentedJSON(); err == nil {
			messages = append(messages, types.ConversationTurn{
				Role:    types.RoleSystem,
				Content: candidateDataHeader + serialized,
			})
		} else if e.logger != nil {
			e.logger.Warn("Failed to serialize candidate record for model context",
				"error", err.Error())
		}
	}

	windowed := history
	if len(windowed) > HistoryWindow {
		windowed = windowed[len(windowed)-HistoryWindow:]
	}
	messages = append(messages, windowed...)

	messages = append(messages, types.ConversationTurn{
		Role:    types.RoleUser,
		Content: utterance,
	})

	return messages
}
