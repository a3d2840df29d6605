package memory

import (
	"context"
	"sync"

	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// AuditStore is an in-memory append-only audit log. It is intended for use
// in tests and dev environments.
type AuditStore struct {
	mu      sync.Mutex
	entries []store.LogEntry
	nextID  int64
}

func NewAuditStore() *AuditStore {
	return &AuditStore{nextID: 1}
}

func (s *AuditStore) Append(_ context.Context, rec types.ExecutionRecord) (store.LogEntry, error) {
	e := store.Project(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, e)
	return e, nil
}

// Query returns matching entries newest first.
func (s *AuditStore) Query(_ context.Context, f store.Filter) ([]store.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.LogEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if f.Matches(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *AuditStore) Count(_ context.Context, status store.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == "" {
		return int64(len(s.entries)), nil
	}
	var n int64
	for _, e := range s.entries {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

// Entries returns a copy of all entries in append order. Test-only helper.
func (s *AuditStore) Entries() []store.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
