package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/store/sqlite"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

func newTestAuditStore(t *testing.T) *sqlite.AuditStore {
	t.Helper()
	conn := openTestDB(t)
	writer := newTestWriter(t, conn)
	return sqlite.NewAuditStore(conn, writer)
}

func record(action, target string, status types.RunStatus, reason string) types.ExecutionRecord {
	rec := types.ExecutionRecord{
		Intent:    types.Intent{Action: action, Target: target},
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if status == types.RunSucceeded {
		rec.Decision = types.Decision{Status: types.DecisionApproved}
		rec.Message = "ok"
	} else {
		rec.Decision = types.Decision{Status: types.DecisionBlocked, Reason: reason}
		rec.Message = "Security Alert: Operation Blocked."
	}
	return rec
}

func TestAppend_AssignsCompletionOrderIDs(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	e1, err := s.Append(ctx, record("Read", "/project/src", types.RunSucceeded, ""))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	e2, err := s.Append(ctx, record("Delete", "/etc", types.RunBlocked, "default deny"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if e1.ID == 0 || e2.ID <= e1.ID {
		t.Errorf("expected increasing non-zero ids, got %d then %d", e1.ID, e2.ID)
	}
}

func TestQuery_NewestFirstAndRoundTrip(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	_, _ = s.Append(ctx, record("Read", "/project/src/a.go", types.RunSucceeded, ""))
	_, _ = s.Append(ctx, record("Execute", "rm -rf /tmp", types.RunBlocked, "Blocked by rule POL-002-2: rm -rf"))

	entries, err := s.Query(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	newest := entries[0]
	if newest.Action != "Execute" || newest.Target != "rm -rf /tmp" {
		t.Errorf("expected newest entry first, got %+v", newest)
	}
	if newest.Status != store.StatusBlocked {
		t.Errorf("expected blocked status, got %s", newest.Status)
	}
	if newest.Reason != "Blocked by rule POL-002-2: rm -rf" {
		t.Errorf("unexpected reason: %q", newest.Reason)
	}
	if newest.Timestamp.IsZero() {
		t.Error("expected timestamp to round-trip")
	}
}

func TestQuery_Filters(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	_, _ = s.Append(ctx, record("Read", "/project/src/main.go", types.RunSucceeded, ""))
	_, _ = s.Append(ctx, record("Write", "/project/config/app.yaml", types.RunBlocked, "Restricted: requires manual approval"))
	_, _ = s.Append(ctx, record("Execute", "npm install", types.RunSucceeded, ""))

	blocked, err := s.Query(ctx, store.Filter{Status: store.StatusBlocked})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Action != "Write" {
		t.Fatalf("expected the blocked Write entry, got %+v", blocked)
	}

	search, err := s.Query(ctx, store.Filter{Search: "PROJECT"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(search) != 2 {
		t.Errorf("expected 2 entries matching 'PROJECT', got %d", len(search))
	}

	both, err := s.Query(ctx, store.Filter{Search: "config", Status: store.StatusBlocked})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(both) != 1 || both[0].Target != "/project/config/app.yaml" {
		t.Fatalf("expected combined filter to match one entry, got %+v", both)
	}
}

func TestQuery_EmptyStore(t *testing.T) {
	s := newTestAuditStore(t)

	entries, err := s.Query(context.Background(), store.Filter{Search: "anything"})
	if err != nil {
		t.Fatalf("query on empty store: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty result set, got %d", len(entries))
	}
}

func TestCount_ByStatus(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	_, _ = s.Append(ctx, record("Read", "/a", types.RunSucceeded, ""))
	_, _ = s.Append(ctx, record("Delete", "/b", types.RunBlocked, "denied"))
	_, _ = s.Append(ctx, record("Delete", "/c", types.RunBlocked, "denied"))

	total, err := s.Count(ctx, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 total, got %d", total)
	}

	blocked, err := s.Count(ctx, store.StatusBlocked)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if blocked != 2 {
		t.Errorf("expected 2 blocked, got %d", blocked)
	}

	success, err := s.Count(ctx, store.StatusSuccess)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if success != 1 {
		t.Errorf("expected 1 success, got %d", success)
	}
}
