package server

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxPlayerNameLen = 64

type PlayerRequest struct {
	Name string `json:"name"`
}

type PlayerResponse struct {
	Name string `json:"name"`
}

func handleGetPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PlayerResponse{Name: playerName(r)})
	}
}

func handleSetPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if utf8.RuneCountInString(name) > maxPlayerNameLen {
			writeError(w, http.StatusBadRequest, "name is too long")
			return
		}

		setPlayerName(w, name)
		writeJSON(w, http.StatusOK, PlayerResponse{Name: name})
	}
}
