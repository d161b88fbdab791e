package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps, clients *Registry, broker *Broker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Treasure Hunt API", "/openapi.json", "/docs"))

	// Everything below belongs to the browser identified by its client cookie.
	r.Group(func(r chi.Router) {
		r.Use(clientMiddleware(clients))

		r.Get("/api/hunts", handleHunts())
		r.Get("/api/player", handleGetPlayer())
		r.Post("/api/player", handleSetPlayer())
		if deps.Results != nil {
			r.Get("/api/history", handleHistory(deps.Results, deps.Hunts, logger))
		}
		r.Get("/ws/location", handleWSLocation(logger))

		r.Route("/api/play", func(r chi.Router) {
			r.Get("/state", handlePlayState())
			r.Get("/config", handleGeoConfig(deps.Geo))
			r.Get("/events", handleEvents(broker))
			r.Post("/start", handleStart())
			r.Post("/question", handleQuestion())
			r.Post("/answer", handleAnswer())
			r.Post("/skip", handleSkip())
			r.Post("/results", handleResults())
			r.Post("/location", handleLocation())
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
