package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/playperu/treasurehunt/internal/game"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type HistoryItem struct {
	HuntID     string    `json:"huntId"`
	HuntName   string    `json:"huntName,omitempty"`
	Session    string    `json:"session"`
	Score      float64   `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

type HistoryResponse struct {
	Player  string        `json:"player"`
	Results []HistoryItem `json:"results"`
}

func handleHistory(results ResultStore, hunts game.HuntLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := playerName(r)
		if player == "" {
			writeError(w, http.StatusBadRequest, "player name not set")
			return
		}

		limit := defaultHistoryLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		list, err := results.ListResults(r.Context(), player, limit)
		if err != nil {
			logger.Error("listing results failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Names are a nicety; the history is still useful without them.
		names := make(map[string]string)
		if all, err := hunts.List(r.Context()); err != nil {
			logger.Warn("resolving hunt names failed", "error", err)
		} else {
			for _, h := range all {
				names[h.UUID] = h.Name
			}
		}

		resp := HistoryResponse{Player: player, Results: make([]HistoryItem, 0, len(list))}
		for _, res := range list {
			resp.Results = append(resp.Results, HistoryItem{
				HuntID:     res.HuntID,
				HuntName:   names[res.HuntID],
				Session:    res.Session,
				Score:      res.Score,
				FinishedAt: res.FinishedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
