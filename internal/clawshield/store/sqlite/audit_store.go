package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/openclaw/clawshield/internal/db"

	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// AuditStore persists the audit log in SQLite. All appends go through the
// single-writer db.Worker, so entries are assigned ids in completion order
// even if multi-flight runs are allowed later.
type AuditStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAuditStore(db *sql.DB, writer *dbpkg.Worker) *AuditStore {
	return &AuditStore{db: db, writer: writer}
}

func (s *AuditStore) Append(ctx context.Context, rec types.ExecutionRecord) (store.LogEntry, error) {
	e := store.Project(rec)

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO audit_log(ts_ms, action, target, status, reason)
VALUES (?, ?, ?, ?, ?);
`,
			e.Timestamp.UTC().UnixMilli(), e.Action, e.Target, string(e.Status), e.Reason,
		)
		if err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("append audit entry id: %w", err)
		}
		e.ID = id
		return nil
	})
	if err != nil {
		return store.LogEntry{}, err
	}

	return e, nil
}

// Query returns matching entries newest first. Reads go straight to the
// connection; the log is append-only so no write coordination is needed.
func (s *AuditStore) Query(ctx context.Context, f store.Filter) ([]store.LogEntry, error) {
	q := `
SELECT id, ts_ms, action, target, status, reason
FROM audit_log
`
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Search != "" {
		where = append(where, `(instr(lower(action), lower(?)) > 0 OR instr(lower(target), lower(?)) > 0)`)
		args = append(args, f.Search, f.Search)
	}
	for i, w := range where {
		if i == 0 {
			q += "WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += "\nORDER BY id DESC;"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []store.LogEntry
	for rows.Next() {
		var (
			e    store.LogEntry
			tsMs int64
			st   string
		)
		if err := rows.Scan(&e.ID, &tsMs, &e.Action, &e.Target, &st, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp = time.UnixMilli(tsMs).UTC()
		e.Status = store.Status(st)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	return out, nil
}

func (s *AuditStore) Count(ctx context.Context, status store.Status) (int64, error) {
	var (
		n   int64
		err error
	)
	if status == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log;`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audit_log WHERE status = ?;`, string(status)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count audit log: %w", err)
	}
	return n, nil
}
