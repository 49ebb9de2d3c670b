package store

import (
	"context"
	"database/sql"
	"time"
)

const (
	RunKindIngest   = "ingest"
	RunKindDispatch = "dispatch"
)

type RunLog struct {
	ID         int64     `json:"-"`
	Kind       string    `json:"kind"`
	ExecutedAt time.Time `json:"executedAt"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Saved      int       `json:"saved"`
	Skipped    int       `json:"skipped"`
}

func InsertRunLog(ctx context.Context, db *sql.DB, rl RunLog) error {
	if rl.ExecutedAt.IsZero() {
		rl.ExecutedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO run_logs (kind, executed_at, sent, failed, saved, skipped)
VALUES (?,?,?,?,?,?);`,
		rl.Kind, rl.ExecutedAt.UTC().Format(time.RFC3339),
		rl.Sent, rl.Failed, rl.Saved, rl.Skipped)
	return err
}

// LastRun returns the most recent log for kind, or nil when none exists.
func LastRun(ctx context.Context, db *sql.DB, kind string) (*RunLog, error) {
	var rl RunLog
	var at string
	err := db.QueryRowContext(ctx, `
SELECT id, kind, executed_at, sent, failed, saved, skipped
FROM run_logs
WHERE kind = ?
ORDER BY executed_at DESC, id DESC
LIMIT 1;`, kind).Scan(&rl.ID, &rl.Kind, &at, &rl.Sent, &rl.Failed, &rl.Saved, &rl.Skipped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rl.ExecutedAt, _ = time.Parse(time.RFC3339, at)
	return &rl, nil
}
