package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"talentscout/internal/config"
	"talentscout/internal/errors"
	"talentscout/internal/types"

	"github.com/gofrs/flock"
)

// CandidateStore persists completed candidate records to a JSON file.
// The file holds a single JSON array of records; concurrent writers are
// serialized through an advisory file lock held for the read-append-rewrite
// cycle.
type CandidateStore struct {
	path        string
	lockTimeout time.Duration
	logger      *errors.Logger
	now         func() time.Time
}

// Option configures a CandidateStore.
type Option func(*CandidateStore)

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *CandidateStore) {
		s.now = now
	}
}

// New creates a candidate store backed by the configured JSON file
func New(cfg *config.StoreConfig, logger *errors.Logger, opts ...Option) *CandidateStore {
	s := &CandidateStore{
		path:        cfg.Path,
		lockTimeout: cfg.LockTimeout,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append saves a completed candidate record. Records with no collected
// fields are skipped so abandoned conversations don't pollute the file.
// A timestamp field is stamped on every saved record.
func (s *CandidateStore) Append(ctx context.Context, record types.CandidateRecord) error {
	if len(record) == 0 {
		s.logger.Debug("Skipping empty candidate record")
		return nil
	}

	stamped := record.Clone()
	stamped[types.FieldTimestamp] = s.now().UTC().Format(time.RFC3339)

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	records = append(records, stamped)

	if err := s.writeAll(records); err != nil {
		return err
	}

	s.logger.Info("Candidate record saved",
		"path", s.path,
		"fields", len(stamped),
		"total_records", len(records))

	return nil
}

// All returns every persisted candidate record.
func (s *CandidateStore) All(ctx context.Context) ([]types.CandidateRecord, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.readAll()
}

// Count returns the number of persisted candidate records.
func (s *CandidateStore) Count(ctx context.Context) (int, error) {
	records, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// acquireLock takes the advisory file lock, waiting up to the configured
// lock timeout. The returned func releases the lock.
func (s *CandidateStore) acquireLock(ctx context.Context) (func(), error) {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	fileLock := flock.New(s.path + ".lock")
	locked, err := fileLock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to acquire lock on %s", s.path), err)
	}
	if !locked {
		return nil, errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Timed out waiting for lock on %s", s.path), nil)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("Failed to release store file lock", "path", s.path, "error", err)
		}
	}, nil
}

// readAll loads the current record array. A missing file yields an empty
// slice. A corrupt file is treated as empty rather than failing the save;
// the bad content is logged and will be overwritten on the next write.
func (s *CandidateStore) readAll() ([]types.CandidateRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.CandidateRecord{}, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to read store file %s", s.path), err)
	}

	if len(data) == 0 {
		return []types.CandidateRecord{}, nil
	}

	var records []types.CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Store file is corrupt, starting a fresh record array",
			"path", s.path, "error", err)
		return []types.CandidateRecord{}, nil
	}

	return records, nil
}

// writeAll rewrites the record array atomically via a temp file rename.
func (s *CandidateStore) writeAll(records []types.CandidateRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			"Failed to encode candidate records", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".candidates-*.tmp")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to create temp file in %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to write store file %s", s.path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to close store file %s", s.path), err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Failed to replace store file %s", s.path), err)
	}

	return nil
}
