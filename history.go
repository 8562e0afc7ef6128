package numgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HistoryEntry is one committed generation
type HistoryEntry struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Min       int       `json:"min"`
	Max       int       `json:"max"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the entry invariants: a non-empty id, min < max and min <= number <= max
func (e *HistoryEntry) Validate() error {
	if e.ID == "" {
		return ErrInvalidParameters.WithDetails("empty entry id")
	}
	if e.Min >= e.Max {
		return ErrInvalidRange.WithDetails(fmt.Sprintf("entry %s: min=%d, max=%d", e.ID, e.Min, e.Max))
	}
	if e.Number < e.Min || e.Number > e.Max {
		return ErrInvalidParameters.WithDetails(fmt.Sprintf("entry %s: number %d outside [%d, %d]", e.ID, e.Number, e.Min, e.Max))
	}
	return nil
}

// HistoryConfig controls retention and the record name
type HistoryConfig struct {
	MaxEntries int    `mapstructure:"max_entries"`
	Key        string `mapstructure:"key"`
}

// DefaultHistoryConfig keeps the 50 newest entries under "numberHistory"
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		MaxEntries: MaxHistoryEntries,
		Key:        DefaultHistoryKey,
	}
}

// Validate checks the retention settings
func (c *HistoryConfig) Validate() error {
	if c.MaxEntries <= 0 {
		return ErrInvalidMaxEntries
	}
	if c.Key == "" {
		return ErrInvalidParameters.WithDetails("history key cannot be empty")
	}
	return nil
}

// HistoryStore owns the in-memory history list and mirrors it to a Storage after every
// mutation. The in-memory list is authoritative: persistence failures are logged and reported
// but never undo a mutation.
//
// A shared store re-reads the record before each mutation, so several processes writing the
// same record under a common lock do not overwrite each other.
type HistoryStore struct {
	storage  Storage
	config   *HistoryConfig
	logger   Logger
	notifier Notifier
	ids      *IDGenerator
	monitor  *PerformanceMonitor
	shared   bool

	// writeMu is held from snapshot to storage write, so records reach storage in mutation order
	writeMu sync.Mutex

	mu      sync.RWMutex
	entries []HistoryEntry

	persistFailures atomic.Int64
}

// NewHistoryStore creates an empty store; call Load to rehydrate it
func NewHistoryStore(storage Storage, config *HistoryConfig, logger Logger) *HistoryStore {
	if config == nil {
		config = DefaultHistoryConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &HistoryStore{
		storage:  storage,
		config:   config,
		logger:   logger,
		notifier: NopNotifier{},
		ids:      NewIDGenerator(1),
		entries:  []HistoryEntry{},
	}
}

// SetNotifier routes persistence warnings to n
func (s *HistoryStore) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

// SetShared makes every mutation start from the persisted record instead of the in-memory list
func (s *HistoryStore) SetShared(shared bool) { s.shared = shared }

// SetPerformanceMonitor records persistence failures on m
func (s *HistoryStore) SetPerformanceMonitor(m *PerformanceMonitor) { s.monitor = m }

// NewEntry builds a history entry for a committed roll
func (s *HistoryStore) NewEntry(result *Result) HistoryEntry {
	return HistoryEntry{
		ID:        s.ids.Next(),
		Number:    result.Value,
		Min:       result.Min,
		Max:       result.Max,
		Timestamp: result.CreatedAt.UTC(),
	}
}

// Load reads the persisted record and replaces the in-memory list with it. A missing or
// corrupt record yields an empty history; Load never fails.
func (s *HistoryStore) Load(ctx context.Context) []HistoryEntry {
	entries := s.read(ctx)

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return cloneEntries(entries)
}

func (s *HistoryStore) read(ctx context.Context) []HistoryEntry {
	entries, err := s.fetch(ctx)
	if err != nil {
		return []HistoryEntry{}
	}
	return entries
}

// fetch returns the persisted entries; a missing record is an empty history. Read and decode
// failures are logged, counted and returned.
func (s *HistoryStore) fetch(ctx context.Context) ([]HistoryEntry, error) {
	data, err := s.storage.Get(ctx, s.config.Key)
	if errors.Is(err, ErrRecordNotFound) {
		return []HistoryEntry{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load history record %s: %v", s.config.Key, err)
		s.recordLoadFailure()
		return nil, err
	}

	entries, err := decodeHistory(data, s.config.MaxEntries)
	if err != nil {
		s.logger.Error("Discarding corrupt history record %s (%d bytes): %v", s.config.Key, len(data), err)
		s.recordLoadFailure()
		return nil, err
	}

	s.logger.Debug("Loaded %d history entries from %s", len(entries), s.config.Key)
	return entries, nil
}

// refresh replaces the in-memory list with the persisted one on a shared store. An unreadable
// record keeps the in-memory list. Callers hold writeMu.
func (s *HistoryStore) refresh(ctx context.Context) {
	if !s.shared {
		return
	}

	entries, err := s.fetch(ctx)
	if errors.Is(err, ErrRecordCorrupted) {
		// the next write replaces the corrupt record
		entries, err = []HistoryEntry{}, nil
	}
	if err != nil {
		return
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Insert prepends entry, drops the oldest entries beyond the cap and persists the list
func (s *HistoryStore) Insert(ctx context.Context, entry HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.refresh(ctx)

	s.mu.Lock()
	next := make([]HistoryEntry, 0, min(len(s.entries)+1, s.config.MaxEntries))
	next = append(next, entry)
	for _, e := range s.entries {
		if len(next) == s.config.MaxEntries {
			break
		}
		if e.ID != entry.ID {
			next = append(next, e)
		}
	}
	s.entries = next
	snapshot := cloneEntries(next)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// Remove deletes the entry with the given id and persists the list. It reports whether an
// entry was removed; an unknown id leaves the list untouched.
func (s *HistoryStore) Remove(ctx context.Context, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.refresh(ctx)

	s.mu.Lock()
	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	next := make([]HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	s.entries = next
	snapshot := cloneEntries(next)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return true
}

// Clear empties the list and deletes the persisted record
func (s *HistoryStore) Clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.entries = []HistoryEntry{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.config.Key); err != nil {
		s.persistFailed("delete", err)
	}
}

// Entries returns a copy of the list, newest first
func (s *HistoryStore) Entries() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneEntries(s.entries)
}

// Len returns the number of entries
func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// PersistFailures returns how many writes were swallowed
func (s *HistoryStore) PersistFailures() int64 { return s.persistFailures.Load() }

func (s *HistoryStore) persist(ctx context.Context, entries []HistoryEntry) {
	data, err := encodeHistory(entries)
	if err != nil {
		s.persistFailed("encode", err)
		return
	}

	if err := s.storage.Set(ctx, s.config.Key, data); err != nil {
		s.persistFailed("save", err)
		return
	}

	s.logger.Debug("Persisted %d history entries to %s (%d bytes)", len(entries), s.config.Key, len(data))
}

func (s *HistoryStore) persistFailed(op string, err error) {
	s.persistFailures.Add(1)
	if s.monitor != nil {
		s.monitor.RecordPersistFailure()
	}

	s.logger.Error("History %s failed for %s, keeping in-memory state: %v", op, s.config.Key, err)
	s.notifier.Error("history could not be saved: " + UserMessage(err))
}

func (s *HistoryStore) recordLoadFailure() {
	if s.monitor != nil {
		s.monitor.RecordLoadFailure()
	}
}

// encodeHistory serializes entries as a JSON array
func encodeHistory(entries []HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []HistoryEntry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	if len(data) > MaxRecordSize {
		return nil, ErrRecordTooLarge.WithDetails(fmt.Sprintf("%d bytes exceeds %d bytes", len(data), MaxRecordSize))
	}
	return data, nil
}

// decodeHistory parses a persisted record. Entries breaking an invariant or repeating an id
// are dropped, and at most maxEntries are kept.
func decodeHistory(data []byte, maxEntries int) ([]HistoryEntry, error) {
	if len(data) == 0 {
		return nil, ErrRecordCorrupted.WithDetails("empty record")
	}
	if len(data) > MaxRecordSize {
		return nil, ErrRecordTooLarge.WithDetails(fmt.Sprintf("%d bytes exceeds %d bytes", len(data), MaxRecordSize))
	}

	var raw []HistoryEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrRecordCorrupted.WithCause(err)
	}

	entries := make([]HistoryEntry, 0, min(len(raw), maxEntries))
	seen := make(map[string]struct{}, len(raw))
	for _, e := range raw {
		if len(entries) == maxEntries {
			break
		}
		if e.Validate() != nil {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}

	return entries, nil
}

func cloneEntries(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
