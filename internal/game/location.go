package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// GeoOptions are handed to the platform location service that acquires the
// player's position.
type GeoOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is how old a cached fix may be; zero demands a fresh one.
	MaximumAge time.Duration
}

// DefaultGeoOptions asks for a fresh, high-accuracy fix within ten seconds.
func DefaultGeoOptions() GeoOptions {
	return GeoOptions{HighAccuracy: true, Timeout: 10 * time.Second}
}

type SessionSource interface {
	Session() (string, bool)
}

type LocationAPI interface {
	Location(ctx context.Context, session string, lat, lon float64) error
}

// Reporter pushes player positions for the active session. It never touches
// the question/answer cycle; failures are only reported.
type Reporter struct {
	api      LocationAPI
	sessions SessionSource
	notifier Notifier
	logger   *slog.Logger
}

func NewReporter(api LocationAPI, sessions SessionSource, notifier Notifier, logger *slog.Logger) *Reporter {
	return &Reporter{api: api, sessions: sessions, notifier: notifier, logger: logger}
}

func (r *Reporter) ReportLocation(ctx context.Context, lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		r.notifier.Notify("The location cannot be updated: coordinates are out of range.", true)
		return fmt.Errorf("%w: coordinates %v,%v out of range", ErrInvalidInput, lat, lon)
	}

	// Fixes arrive in the background; a missing session is not shown to the
	// player.
	session, ok := r.sessions.Session()
	if !ok {
		r.logger.Debug("location report without an active game")
		return ErrNoActiveSession
	}

	if err := r.api.Location(ctx, session, lat, lon); err != nil {
		r.logger.Error("reporting location failed", "session", session, "error", err)
		r.notifier.Notify(describe("There are problems with updating your location", err), true)
		return fmt.Errorf("reporting location: %w", err)
	}
	r.logger.Debug("location reported", "session", session)
	return nil
}

// AcquisitionFailed reports that the platform could not produce a fix
// (permission denied, timeout, unsupported).
func (r *Reporter) AcquisitionFailed(reason string) {
	r.logger.Warn("location acquisition failed", "reason", reason)
	r.notifier.Notify("Your location is unavailable: "+reason, true)
}
