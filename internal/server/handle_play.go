package server

import (
	"context"
	"net/http"

	"github.com/playperu/treasurehunt/internal/game"
)

// PlayResponse is returned by every gameplay route.
type PlayResponse struct {
	View ViewState `json:"view"`
	// HuntID and Player describe the attempt in progress, if any.
	HuntID string `json:"huntId,omitempty"`
	Player string `json:"player,omitempty"`
	Error  string `json:"error,omitempty"`
}

type StartRequest struct {
	HuntID string `json:"huntId"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

// GeoConfigResponse mirrors the browser's PositionOptions. Durations are in
// milliseconds.
type GeoConfigResponse struct {
	EnableHighAccuracy bool  `json:"enableHighAccuracy"`
	Timeout            int64 `json:"timeout"`
	MaximumAge         int64 `json:"maximumAge"`
}

// detach keeps an operation running when the browser goes away mid-chain.
// Each upstream call is still bounded by the HTTP client timeout.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func handleHunts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		writePlay(w, g, g.ctrl.ListHunts(r.Context()))
	}
}

func handlePlayState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePlay(w, gameFrom(r), nil)
	}
}

func handleStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g := gameFrom(r)
		writePlay(w, g, g.ctrl.Start(detach(r), playerName(r), req.HuntID))
	}
}

func handleQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		writePlay(w, g, g.ctrl.FetchQuestion(detach(r)))
	}
}

func handleAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g := gameFrom(r)
		writePlay(w, g, g.ctrl.Answer(detach(r), req.Answer))
	}
}

func handleSkip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		writePlay(w, g, g.ctrl.Skip(detach(r)))
	}
}

func handleResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		writePlay(w, g, g.ctrl.LoadResults(detach(r)))
	}
}

func handleGeoConfig(opts game.GeoOptions) http.HandlerFunc {
	resp := GeoConfigResponse{
		EnableHighAccuracy: opts.HighAccuracy,
		Timeout:            opts.Timeout.Milliseconds(),
		MaximumAge:         opts.MaximumAge.Milliseconds(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}
