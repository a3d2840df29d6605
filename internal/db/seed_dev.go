package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a handful of synthetic audit rows so a fresh dev database
// has something to show on the logs and dashboard pages. Prod databases are
// never seeded; the stats baseline covers the launch-era history there.
func SeedDev(ctx context.Context, db *sql.DB) error {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log;`).Scan(&n); err != nil {
		return fmt.Errorf("seed dev: count: %w", err)
	}
	if n > 0 {
		return nil // already has history, leave it alone
	}

	now := time.Now().UTC()
	rows := []struct {
		ageMin int
		action string
		target string
		status string
		reason string
	}{
		{45, "Read", "/project/src/main.go", "success", "Authorized"},
		{32, "Write", "/project/src/routes.go", "success", "Authorized"},
		{18, "Execute", "rm -rf /project/temp", "blocked", "Blocked by rule POL-002-2: rm -rf"},
		{7, "Read", "/project/temp", "success", "Authorized"},
	}

	for _, r := range rows {
		ts := now.Add(-time.Duration(r.ageMin) * time.Minute).UnixMilli()
		if _, err := db.ExecContext(ctx, `
INSERT INTO audit_log(ts_ms, action, target, status, reason)
VALUES (?, ?, ?, ?, ?);
`, ts, r.action, r.target, r.status, r.reason); err != nil {
			return fmt.Errorf("seed dev: insert: %w", err)
		}
	}

	return nil
}
