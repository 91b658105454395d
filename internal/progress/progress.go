// Package progress persists per-section attempt records.
//
// Records live in a key-value backend under one key per test kind
// ("reading_progress", "listening_progress"). Each value is a JSON object
// mapping test IDs to section IDs to SectionProgress records.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/ieltsprep/internal/question"
)

// Key addresses one section record.
type Key struct {
	Kind      question.Kind
	TestID    string
	SectionID string
}

// StorageKey is the backend key holding every record of this kind.
func (k Key) StorageKey() string {
	return StorageKey(k.Kind)
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.TestID, k.SectionID)
}

// StorageKey returns the backend key for a test kind.
func StorageKey(kind question.Kind) string {
	return string(kind) + "_progress"
}

// SectionProgress is the persisted snapshot of one attempt at one section.
// Timestamps are Unix epoch milliseconds.
type SectionProgress struct {
	Answers          question.AnswerSet `json:"answers"`
	TimeSpentSeconds int                `json:"timeSpent" validate:"gte=0"`
	Completed        bool               `json:"completed"`
	StartTime        int64              `json:"startTime" validate:"gt=0"`
	LastSaved        int64              `json:"lastSaved" validate:"gtefield=StartTime"`
	AttemptID        string             `json:"attemptId,omitempty"`

	// ReplayCount is the number of times the recording was replayed.
	// Listening only.
	ReplayCount int `json:"audioPlayCount,omitempty" validate:"gte=0"`
}

// StartedAt returns StartTime as a time.Time.
func (p *SectionProgress) StartedAt() time.Time {
	return time.UnixMilli(p.StartTime)
}

// SavedAt returns LastSaved as a time.Time.
func (p *SectionProgress) SavedAt() time.Time {
	return time.UnixMilli(p.LastSaved)
}

// Fresh returns an empty, incomplete record started at now.
func Fresh(now time.Time) *SectionProgress {
	ms := now.UnixMilli()
	return &SectionProgress{
		Answers:   question.AnswerSet{},
		StartTime: ms,
		LastSaved: ms,
		AttemptID: NewAttemptID(),
	}
}

// NewAttemptID returns a random identifier for a new attempt.
func NewAttemptID() string {
	return uuid.New().String()
}

// Store loads and saves section records.
type Store interface {
	// Load returns the record for key, or nil when none exists or the stored
	// data is unreadable.
	Load(ctx context.Context, key Key) (*SectionProgress, error)

	// Save writes the record for key without touching other sections.
	Save(ctx context.Context, key Key, rec *SectionProgress) error
}

// Repository is a Store that can also list every record of one test.
type Repository interface {
	Store
	LoadTest(ctx context.Context, kind question.Kind, testID string) (map[string]*SectionProgress, error)
}

var _ Repository = (*KVStore)(nil)

// KV is the raw key-value backend beneath a KVStore.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var validate = validator.New()

// testTable is the value stored under one StorageKey, decoded one level
// deep: each test's sections stay raw until asked for, so a malformed test
// entry never hides or drops its siblings.
type testTable map[string]json.RawMessage

// KVStore implements Store on top of a KV backend.
type KVStore struct {
	kv     KV
	logger zerolog.Logger

	// mu serializes read-merge-write cycles.
	mu sync.Mutex
}

// NewKVStore returns a Store backed by kv.
func NewKVStore(kv KV, logger zerolog.Logger) *KVStore {
	return &KVStore{kv: kv, logger: logger}
}

// Close releases the backend.
func (s *KVStore) Close() error {
	return s.kv.Close()
}

// Load returns the record for key. Missing, malformed, or shape-invalid
// records yield nil with no error. Backend failures are returned as
// *StorageError.
func (s *KVStore) Load(ctx context.Context, key Key) (*SectionProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.readTable(ctx, key.Kind, "load")
	if err != nil {
		return nil, err
	}
	raw, ok := s.sections(table, key.Kind, key.TestID)[key.SectionID]
	if !ok {
		return nil, nil
	}
	return s.decodeRecord(key, raw), nil
}

// LoadTest returns every readable section record of a test, keyed by section ID.
func (s *KVStore) LoadTest(ctx context.Context, kind question.Kind, testID string) (map[string]*SectionProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.readTable(ctx, kind, "load")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*SectionProgress)
	for sectionID, raw := range s.sections(table, kind, testID) {
		key := Key{Kind: kind, TestID: testID, SectionID: sectionID}
		if rec := s.decodeRecord(key, raw); rec != nil {
			out[sectionID] = rec
		}
	}
	return out, nil
}

// Save validates rec and merges it into the stored table for its kind.
func (s *KVStore) Save(ctx context.Context, key Key, rec *SectionProgress) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}
	if rec.Answers == nil {
		rec.Answers = question.AnswerSet{}
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.readTable(ctx, key.Kind, "save")
	if err != nil {
		return err
	}
	sections := s.sections(table, key.Kind, key.TestID)
	sections[key.SectionID] = encoded
	test, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", key, err)
	}
	table[key.TestID] = test

	value, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode progress table: %w", err)
	}
	if err := s.kv.Set(ctx, key.StorageKey(), value); err != nil {
		return &StorageError{Op: "save", Key: key.StorageKey(), Err: err}
	}
	return nil
}

// readTable fetches and decodes the table for kind. A value that is not a
// JSON object is logged and replaced by an empty table. Backend failures
// are reported as a StorageError for op.
func (s *KVStore) readTable(ctx context.Context, kind question.Kind, op string) (testTable, error) {
	storageKey := StorageKey(kind)
	value, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		return nil, &StorageError{Op: op, Key: storageKey, Err: err}
	}
	table := make(testTable)
	if !ok || len(value) == 0 {
		return table, nil
	}
	if err := json.Unmarshal(value, &table); err != nil {
		s.logger.Warn().Err(err).Str("key", storageKey).Msg("discarding malformed progress table")
		return make(testTable), nil
	}
	return table, nil
}

// sections decodes the section map of one test. A missing or malformed
// test entry yields an empty map; other tests in table are untouched.
func (s *KVStore) sections(table testTable, kind question.Kind, testID string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	raw, ok := table[testID]
	if !ok {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		s.logger.Warn().Err(err).
			Str("kind", string(kind)).
			Str("test_id", testID).
			Msg("ignoring malformed progress test entry")
		return make(map[string]json.RawMessage)
	}
	return out
}

// decodeRecord parses one record, returning nil for malformed data.
func (s *KVStore) decodeRecord(key Key, raw json.RawMessage) *SectionProgress {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.warnMalformed(key, err)
		return nil
	}
	if answers, ok := fields["answers"]; !ok || string(answers) == "null" {
		s.warnMalformed(key, fmt.Errorf("missing answers"))
		return nil
	}
	var rec SectionProgress
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.warnMalformed(key, err)
		return nil
	}
	return &rec
}

func (s *KVStore) warnMalformed(key Key, err error) {
	s.logger.Warn().Err(err).
		Str("kind", string(key.Kind)).
		Str("test_id", key.TestID).
		Str("section_id", key.SectionID).
		Msg("ignoring malformed progress record")
}

// Reset overwrites the record for key with a fresh, empty attempt started
// at now and returns it.
func Reset(ctx context.Context, store Store, key Key, now time.Time) (*SectionProgress, error) {
	rec := Fresh(now)
	if err := store.Save(ctx, key, rec); err != nil {
		return nil, fmt.Errorf("reset %s: %w", key, err)
	}
	return rec, nil
}
