package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// timeLayout is fixed width so finished_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordResult stores res. Recording the same session again replaces its
// score, which happens when results are reloaded.
func (s *SQLiteStore) RecordResult(ctx context.Context, res treasurehunt.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (client_id, player, hunt_id, session, score, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session) DO UPDATE
		SET score = excluded.score, finished_at = excluded.finished_at
	`, res.ClientID, res.Player, res.HuntID, res.Session, res.Score, res.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, player string, limit int) ([]treasurehunt.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, player, hunt_id, session, score, finished_at
		FROM results
		WHERE player = ?
		ORDER BY finished_at DESC
		LIMIT ?
	`, player, limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []treasurehunt.Result
	for rows.Next() {
		var (
			res        treasurehunt.Result
			finishedAt string
		)
		if err := rows.Scan(&res.ID, &res.ClientID, &res.Player, &res.HuntID, &res.Session, &res.Score, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		res.FinishedAt, err = time.Parse(timeLayout, finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at %q: %w", finishedAt, err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
