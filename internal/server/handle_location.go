package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/treasurehunt/internal/game"
)

var errMissingCoordinates = fmt.Errorf("%w: latitude and longitude are required", game.ErrInvalidInput)

// LocationFix is a position reading from the browser, or the reason none
// could be taken.
type LocationFix struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// LocationAck answers each fix sent over the location socket.
type LocationAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func reportFix(ctx context.Context, g *playerGame, fix LocationFix) error {
	if fix.Error != "" {
		g.reporter.AcquisitionFailed(fix.Error)
		return nil
	}
	if fix.Latitude == nil || fix.Longitude == nil {
		return errMissingCoordinates
	}
	return g.reporter.ReportLocation(ctx, *fix.Latitude, *fix.Longitude)
}

func handleLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fix LocationFix
		if err := readJSON(r, &fix); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g := gameFrom(r)
		writePlay(w, g, reportFix(detach(r), g, fix))
	}
}

// handleWSLocation streams fixes from a watching browser. Every fix is
// acknowledged; a failed report does not close the socket.
func handleWSLocation(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		for {
			var fix LocationFix
			if err := wsjson.Read(ctx, conn, &fix); err != nil {
				logger.Debug("location socket read ended", "client_id", g.clientID, "error", err)
				return
			}

			ack := LocationAck{OK: true}
			if err := reportFix(ctx, g, fix); err != nil {
				ack = LocationAck{Error: err.Error()}
			}
			if err := wsjson.Write(ctx, conn, ack); err != nil {
				logger.Debug("location socket write failed", "client_id", g.clientID, "error", err)
				return
			}
		}
	}
}
