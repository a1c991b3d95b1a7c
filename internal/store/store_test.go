package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"talentscout/internal/config"
	"talentscout/internal/errors"
	"talentscout/internal/types"
)

func newTestStore(t *testing.T) (*CandidateStore, string) {
	t.Helper()

	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	path := filepath.Join(t.TempDir(), "candidates.json")
	cfg := &config.StoreConfig{
		Path:        path,
		LockTimeout: 2 * time.Second,
	}

	fixed := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	s := New(cfg, logger, WithClock(func() time.Time { return fixed }))
	return s, path
}

func TestAppendCreatesFileWithTimestamp(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	record := types.CandidateRecord{
		types.FieldName:  "jane doe",
		types.FieldEmail: "jane@example.com",
	}
	if err := s.Append(ctx, record); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}

	var saved []map[string]string
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("store file is not a JSON array: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved %d records, expected 1", len(saved))
	}
	if saved[0][types.FieldName] != "jane doe" {
		t.Errorf("saved name = %q, expected %q", saved[0][types.FieldName], "jane doe")
	}
	if saved[0][types.FieldTimestamp] != "2026-03-15T10:30:00Z" {
		t.Errorf("saved timestamp = %q, expected the fixed clock value", saved[0][types.FieldTimestamp])
	}
}

func TestAppendDoesNotMutateInputRecord(t *testing.T) {
	s, _ := newTestStore(t)

	record := types.CandidateRecord{types.FieldName: "jane doe"}
	if err := s.Append(context.Background(), record); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if _, ok := record[types.FieldTimestamp]; ok {
		t.Errorf("Append() stamped the caller's record: %v", record)
	}
}

func TestAppendSkipsEmptyRecord(t *testing.T) {
	s, path := newTestStore(t)

	if err := s.Append(context.Background(), types.CandidateRecord{}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty record created a store file")
	}
}

func TestAppendAccumulatesRecords(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first candidate", "second candidate", "third candidate"} {
		record := types.CandidateRecord{types.FieldName: name}
		if err := s.Append(ctx, record); err != nil {
			t.Fatalf("Append(%q) error: %v", name, err)
		}
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("All() returned %d records, expected 3", len(records))
	}
	if records[0][types.FieldName] != "first candidate" {
		t.Errorf("first record name = %q, order not preserved", records[0][types.FieldName])
	}
	if records[2][types.FieldName] != "third candidate" {
		t.Errorf("last record name = %q, order not preserved", records[2][types.FieldName])
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, expected 3", count)
	}
}

func TestAppendRecoversFromCorruptFile(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	record := types.CandidateRecord{types.FieldName: "jane doe"}
	if err := s.Append(ctx, record); err != nil {
		t.Fatalf("Append() on corrupt file error: %v", err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("All() returned %d records after corrupt recovery, expected 1", len(records))
	}
}

func TestAllOnMissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	records, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All() on missing file error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("All() on missing file returned %d records, expected 0", len(records))
	}
}
