package server

import (
	"context"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// ResultStore keeps the history of finished hunts.
type ResultStore interface {
	RecordResult(ctx context.Context, res treasurehunt.Result) error
	// ListResults returns the player's results, newest first.
	ListResults(ctx context.Context, player string, limit int) ([]treasurehunt.Result, error)
}
