package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"talentscout/internal/ai"
	"talentscout/internal/types"
)

// fakeCompleter records the message window it receives and returns a canned
// reply or error.
type fakeCompleter struct {
	reply    string
	err      error
	received []types.ConversationTurn
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []types.ConversationTurn) (string, *ai.TokenUsage, error) {
	f.calls++
	f.received = turns
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
}

func TestCheckExitIntent(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		expected  bool
	}{
		{
			name:      "plain goodbye",
			utterance: "goodbye",
			expected:  true,
		},
		{
			name:      "exit keyword with surrounding words",
			utterance: "BYE now",
			expected:  true,
		},
		{
			name:      "substring match inside a sentence",
			utterance: "I will not stop learning",
			expected:  true,
		},
		{
			name:      "thanks bye",
			utterance: "ok thanks bye",
			expected:  true,
		},
		{
			name:      "ordinary message",
			utterance: "hello there",
			expected:  false,
		},
		{
			name:      "empty message",
			utterance: "",
			expected:  false,
		},
	}

	e := New(&fakeCompleter{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.CheckExitIntent(tt.utterance); got != tt.expected {
				t.Errorf("CheckExitIntent(%q) = %v, expected %v", tt.utterance, got, tt.expected)
			}
		})
	}
}

func TestRespondExitSkipsCompletion(t *testing.T) {
	completer := &fakeCompleter{reply: "should not be used"}
	e := New(completer, nil)
	record := types.CandidateRecord{types.FieldName: "jane doe"}

	result := e.Respond(context.Background(), "goodbye", nil, record)

	if !result.ConversationEnded {
		t.Error("expected conversation to end on exit intent")
	}
	if result.Message != FarewellMessage {
		t.Errorf("message = %q, expected the farewell", result.Message)
	}
	if completer.calls != 0 {
		t.Errorf("completer was called %d times on an exit turn", completer.calls)
	}
	if result.CandidateData[types.FieldName] != "jane doe" {
		t.Errorf("candidate data lost on exit: %v", result.CandidateData)
	}
	// The exit utterance itself is never mined for fields.
	if len(result.CandidateData) != 1 {
		t.Errorf("unexpected fields extracted from exit utterance: %v", result.CandidateData)
	}
}

func TestRespondMergesExtractedFields(t *testing.T) {
	completer := &fakeCompleter{reply: "Nice to meet you! What is your email?"}
	e := New(completer, nil)

	result := e.Respond(context.Background(), "My name is Jane Doe", nil, types.CandidateRecord{})

	if result.ConversationEnded {
		t.Error("conversation should stay active on a normal turn")
	}
	if result.Message != completer.reply {
		t.Errorf("message = %q, expected completer reply", result.Message)
	}
	if result.CandidateData[types.FieldName] != "jane doe" {
		t.Errorf("expected extracted name in candidate data, got %v", result.CandidateData)
	}
}

func TestRespondFailureReturnsApologyAndInputRecord(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("model unavailable")}
	e := New(completer, nil)
	record := types.CandidateRecord{types.FieldEmail: "jane@example.com"}

	result := e.Respond(context.Background(), "My name is Jane Doe", nil, record)

	if result.ConversationEnded {
		t.Error("conversation should stay active after a completion failure")
	}
	if result.Message != ApologyMessage {
		t.Errorf("message = %q, expected the apology", result.Message)
	}
	// Fields merged from the failed turn are discarded.
	if len(result.CandidateData) != 1 || result.CandidateData[types.FieldEmail] != "jane@example.com" {
		t.Errorf("candidate data = %v, expected the unmodified input record", result.CandidateData)
	}
}

func TestRespondDoesNotMutateInputs(t *testing.T) {
	completer := &fakeCompleter{reply: "Got it."}
	e := New(completer, nil)
	record := types.CandidateRecord{types.FieldName: "jane doe"}
	history := []types.ConversationTurn{
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "hello"},
	}

	e.Respond(context.Background(), "my email is jane@example.com", history, record)

	if len(record) != 1 {
		t.Errorf("input record mutated: %v", record)
	}
	if len(history) != 2 {
		t.Errorf("input history mutated: %v", history)
	}
}

func TestBuildMessagesHistoryWindow(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	e := New(completer, nil)

	history := make([]types.ConversationTurn, 0, 15)
	for i := range 15 {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		history = append(history, types.ConversationTurn{
			Role:    role,
			Content: fmt.Sprintf("turn %d", i),
		})
	}

	e.Respond(context.Background(), "tell me more", history, types.CandidateRecord{})

	// system prompt + 10 windowed turns + current utterance
	if len(completer.received) != HistoryWindow+2 {
		t.Fatalf("completer received %d messages, expected %d", len(completer.received), HistoryWindow+2)
	}
	if completer.received[0].Role != types.RoleSystem {
		t.Errorf("first message role = %q, expected system", completer.received[0].Role)
	}
	if completer.received[1].Content != "turn 5" {
		t.Errorf("oldest windowed turn = %q, expected %q", completer.received[1].Content, "turn 5")
	}
	last := completer.received[len(completer.received)-1]
	if last.Role != types.RoleUser || last.Content != "tell me more" {
		t.Errorf("last message = %+v, expected the current utterance", last)
	}
}

func TestBuildMessagesIncludesRecordWhenNonEmpty(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	e := New(completer, nil)
	record := types.CandidateRecord{types.FieldName: "jane doe"}

	e.Respond(context.Background(), "tell me more", nil, record)

	if len(completer.received) != 3 {
		t.Fatalf("completer received %d messages, expected 3", len(completer.received))
	}
	second := completer.received[1]
	if second.Role != types.RoleSystem {
		t.Errorf("record message role = %q, expected system", second.Role)
	}
	if !strings.HasPrefix(second.Content, candidateDataHeader) {
		t.Errorf("record message missing header: %q", second.Content)
	}
	if !strings.Contains(second.Content, "jane doe") {
		t.Errorf("record message missing field value: %q", second.Content)
	}
}

func TestBuildMessagesOmitsEmptyRecord(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	e := New(completer, nil)

	e.Respond(context.Background(), "hello there", nil, types.CandidateRecord{})

	if len(completer.received) != 2 {
		t.Fatalf("completer received %d messages, expected 2 (system + utterance)", len(completer.received))
	}
}

func TestWithSystemPromptIsConsultedEveryTurn(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	prompt := "prompt one"
	e := New(completer, nil, WithSystemPrompt(func() string { return prompt }))

	e.Respond(context.Background(), "hello there", nil, types.CandidateRecord{})
	if completer.received[0].Content != "prompt one" {
		t.Errorf("system prompt = %q, expected %q", completer.received[0].Content, "prompt one")
	}

	prompt = "prompt two"
	e.Respond(context.Background(), "hello again", nil, types.CandidateRecord{})
	if completer.received[0].Content != "prompt two" {
		t.Errorf("system prompt after swap = %q, expected %q", completer.received[0].Content, "prompt two")
	}
}
