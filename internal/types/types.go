package types

import (
	"encoding/json"
	"sort"
)

// Candidate record field names recognized by the extractor.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldExperience = "experience"
	FieldPosition   = "position"
	FieldLocation   = "location"
	FieldTechStack  = "tech_stack"

	// FieldTimestamp is attached by the persistence layer only, never by
	// extraction.
	FieldTimestamp = "timestamp"
)

// Conversation roles for outbound model messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CandidateRecord is the accumulating mapping of screening fields extracted
// from the conversation. Fields are added incrementally and never overwritten
// once set (first-write-wins).
type CandidateRecord map[string]string

// Clone returns an independent copy of the record. A nil record clones to an
// empty, non-nil record so callers can merge into it safely.
func (r CandidateRecord) Clone() CandidateRecord {
	out := make(CandidateRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies fields from partial into the record, skipping any field that
// is already present. It returns the number of fields actually added.
func (r CandidateRecord) Merge(partial CandidateRecord) int {
	added := 0
	for k, v := range partial {
		if _, exists := r[k]; exists {
			continue
		}
		r[k] = v
		added++
	}
	return added
}

// Has reports whether the field is already set.
func (r CandidateRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Fields returns the set field names in sorted order.
func (r CandidateRecord) Fields() []string {
	fields := make([]string, 0, len(r))
	for k := range r {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// IndentedJSON serializes the record as indented JSON for inclusion in the
// model context.
func (r CandidateRecord) IndentedJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ConversationTurn is a single role-tagged message. History is an ordered,
// append-only sequence of turns owned by the caller.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnResult is the output of one engine invocation. It is constructed fresh
// on every call and handed back to the caller; the engine retains nothing.
type TurnResult struct {
	Message           string          `json:"message"`
	ConversationEnded bool            `json:"conversationEnded"`
	CandidateData     CandidateRecord `json:"candidateData"`
}
