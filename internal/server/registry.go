package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playperu/treasurehunt/internal/game"
)

// playerGame is the game of one browser.
type playerGame struct {
	clientID string
	ctrl     *game.Controller
	reporter *game.Reporter
	view     *view
	lastSeen atomic.Int64
}

func (g *playerGame) touch(now time.Time) { g.lastSeen.Store(now.UnixNano()) }

// GameFactory builds the game for a newly seen client.
type GameFactory func(clientID string) *playerGame

type Registry struct {
	newGame GameFactory
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	games map[string]*playerGame
}

func NewRegistry(newGame GameFactory, logger *slog.Logger) *Registry {
	return &Registry{
		newGame: newGame,
		logger:  logger,
		now:     time.Now,
		games:   make(map[string]*playerGame),
	}
}

// Get returns the client's game, creating it on first use.
func (r *Registry) Get(clientID string) *playerGame {
	r.mu.RLock()
	g, ok := r.games[clientID]
	r.mu.RUnlock()
	if ok {
		g.touch(r.now())
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if g, ok := r.games[clientID]; ok {
		g.touch(r.now())
		return g
	}

	g = r.newGame(clientID)
	g.touch(r.now())
	r.games[clientID] = g
	return g
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Prune forgets games not used for longer than idle and returns how many
// were dropped.
func (r *Registry) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, g := range r.games {
		if g.lastSeen.Load() < cutoff {
			delete(r.games, id)
			n++
		}
	}
	return n
}

// Run prunes idle games until ctx is done.
func (r *Registry) Run(ctx context.Context, idle time.Duration) {
	every := max(idle/4, time.Minute)
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Prune(idle); n > 0 {
				r.logger.Info("pruned idle clients", "count", n, "remaining", r.Len())
			}
		}
	}
}
