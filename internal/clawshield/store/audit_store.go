package store

import (
	"context"
	"strings"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// Status is the audit projection of a run outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusBlocked Status = "blocked"
)

// LogEntry is the persisted, queryable projection of an ExecutionRecord.
// Entries are never mutated or deleted; ids increase in completion order.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
}

// Filter narrows a Query. Search is a case-insensitive substring match
// against action and target; Status empty means all statuses. An empty
// result set is a valid outcome, not an error.
type Filter struct {
	Search string
	Status Status
}

// Matches reports whether the entry passes the filter.
func (f Filter) Matches(e LogEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Action), q) &&
			!strings.Contains(strings.ToLower(e.Target), q) {
			return false
		}
	}
	return true
}

// AuditStore persists completed pipeline runs as an append-only audit log.
// Append must assign ids consistent with completion order; Query returns
// entries newest first.
type AuditStore interface {
	Append(ctx context.Context, rec types.ExecutionRecord) (LogEntry, error)
	Query(ctx context.Context, f Filter) ([]LogEntry, error)
	Count(ctx context.Context, status Status) (int64, error)
}

// Project derives the audit fields from an execution record. Append
// implementations fill in the id.
func Project(rec types.ExecutionRecord) LogEntry {
	e := LogEntry{
		Timestamp: rec.Timestamp,
		Action:    rec.Intent.Action,
		Target:    rec.Intent.Target,
	}
	if rec.Status == types.RunSucceeded {
		e.Status = StatusSuccess
		e.Reason = "Authorized"
	} else {
		e.Status = StatusBlocked
		e.Reason = rec.Decision.Reason
		if e.Reason == "" {
			e.Reason = rec.Message
		}
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}
