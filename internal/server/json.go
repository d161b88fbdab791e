package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playperu/treasurehunt/internal/game"
	"github.com/playperu/treasurehunt/internal/thapi"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writePlay answers a gameplay request with the client's current view and,
// when err is set, the status it maps to.
func writePlay(w http.ResponseWriter, g *playerGame, err error) {
	snap := g.ctrl.Snapshot()
	resp := PlayResponse{View: g.view.Snapshot(), HuntID: snap.HuntID, Player: snap.Player}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var domainErr *thapi.DomainError
	switch {
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, game.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNoActiveSession),
		errors.Is(err, game.ErrNotAwaitingAnswer),
		errors.Is(err, game.ErrNotCompleted),
		errors.Is(err, game.ErrRequestInFlight):
		return http.StatusConflict
	case errors.As(err, &domainErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
