package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCandidateRecordClone(t *testing.T) {
	original := CandidateRecord{FieldName: "jane doe", FieldEmail: "jane@example.com"}
	clone := original.Clone()

	clone[FieldPhone] = "555-1234"
	clone[FieldName] = "changed"

	if len(original) != 2 {
		t.Errorf("original record changed size after clone mutation: %v", original)
	}
	if original[FieldName] != "jane doe" {
		t.Errorf("original name = %q, expected %q", original[FieldName], "jane doe")
	}
}

func TestCandidateRecordCloneNil(t *testing.T) {
	var nilRecord CandidateRecord
	clone := nilRecord.Clone()

	if clone == nil {
		t.Fatal("Clone() of nil record returned nil")
	}
	// A cloned nil record must accept writes.
	clone[FieldName] = "jane doe"
	if clone[FieldName] != "jane doe" {
		t.Error("clone of nil record did not accept a write")
	}
}

func TestCandidateRecordMerge(t *testing.T) {
	tests := []struct {
		name          string
		record        CandidateRecord
		partial       CandidateRecord
		expectedAdded int
		expected      CandidateRecord
	}{
		{
			name:          "merge into empty record",
			record:        CandidateRecord{},
			partial:       CandidateRecord{FieldName: "jane doe", FieldEmail: "jane@example.com"},
			expectedAdded: 2,
			expected:      CandidateRecord{FieldName: "jane doe", FieldEmail: "jane@example.com"},
		},
		{
			name:          "existing field wins",
			record:        CandidateRecord{FieldName: "first value"},
			partial:       CandidateRecord{FieldName: "second value", FieldPhone: "555-1234"},
			expectedAdded: 1,
			expected:      CandidateRecord{FieldName: "first value", FieldPhone: "555-1234"},
		},
		{
			name:          "empty partial adds nothing",
			record:        CandidateRecord{FieldName: "jane doe"},
			partial:       CandidateRecord{},
			expectedAdded: 0,
			expected:      CandidateRecord{FieldName: "jane doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added := tt.record.Merge(tt.partial)
			if added != tt.expectedAdded {
				t.Errorf("Merge() added = %d, expected %d", added, tt.expectedAdded)
			}
			if len(tt.record) != len(tt.expected) {
				t.Fatalf("record = %v, expected %v", tt.record, tt.expected)
			}
			for k, v := range tt.expected {
				if tt.record[k] != v {
					t.Errorf("record[%q] = %q, expected %q", k, tt.record[k], v)
				}
			}
		})
	}
}

func TestCandidateRecordFieldsSorted(t *testing.T) {
	record := CandidateRecord{
		FieldTechStack: "Go",
		FieldEmail:     "jane@example.com",
		FieldName:      "jane doe",
	}

	fields := record.Fields()
	expected := []string{FieldEmail, FieldName, FieldTechStack}
	if len(fields) != len(expected) {
		t.Fatalf("Fields() = %v, expected %v", fields, expected)
	}
	for i, f := range expected {
		if fields[i] != f {
			t.Errorf("Fields()[%d] = %q, expected %q", i, fields[i], f)
		}
	}
}

func TestCandidateRecordIndentedJSON(t *testing.T) {
	record := CandidateRecord{FieldName: "jane doe"}

	serialized, err := record.IndentedJSON()
	if err != nil {
		t.Fatalf("IndentedJSON() error: %v", err)
	}
	if !strings.Contains(serialized, "\"name\": \"jane doe\"") {
		t.Errorf("IndentedJSON() = %q, expected an indented name field", serialized)
	}

	var roundTrip map[string]string
	if err := json.Unmarshal([]byte(serialized), &roundTrip); err != nil {
		t.Fatalf("IndentedJSON() produced invalid JSON: %v", err)
	}
	if roundTrip[FieldName] != "jane doe" {
		t.Errorf("round-tripped name = %q, expected %q", roundTrip[FieldName], "jane doe")
	}
}

func TestTurnResultJSONFieldNames(t *testing.T) {
	result := TurnResult{
		Message:           "hello",
		ConversationEnded: true,
		CandidateData:     CandidateRecord{FieldName: "jane doe"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	for _, key := range []string{"\"message\"", "\"conversationEnded\"", "\"candidateData\""} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled result missing %s: %s", key, data)
		}
	}
}
