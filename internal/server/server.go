package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/treasurehunt/internal/game"
)

// UpstreamAPI is the treasure-hunt API as the games use it.
type UpstreamAPI interface {
	game.API
	game.LocationAPI
}

type Deps struct {
	API     UpstreamAPI
	Hunts   game.HuntLister
	Results ResultStore
	// Observer is told about hunt outcomes of every client; may be nil.
	Observer         game.Observer
	Geo              game.GeoOptions
	LeaderboardLimit int
	// ClientIdleTTL drops a browser's game after that long without requests.
	// Zero keeps games forever.
	ClientIdleTTL time.Duration
	SPADir        string
}

type Server struct {
	srv     *http.Server
	logger  *slog.Logger
	clients *Registry
	idleTTL time.Duration
}

// New builds the server. mount registers routes owned by the caller, such as
// health and metrics.
func New(addr string, logger *slog.Logger, deps Deps, mount func(r chi.Router)) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	broker := NewBroker()
	clients := NewRegistry(newGameFactory(logger, deps, broker), logger)

	if mount != nil {
		mount(r)
	}
	addRoutes(r, logger, deps, clients, broker)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:  logger,
		clients: clients,
		idleTTL: deps.ClientIdleTTL,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	if s.idleTTL > 0 {
		go s.clients.Run(ctx, s.idleTTL)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newGameFactory(logger *slog.Logger, deps Deps, broker *Broker) GameFactory {
	presenter := game.NewPresenter(logger)

	return func(clientID string) *playerGame {
		l := logger.With("client_id", clientID)
		v := newView(clientID, broker)

		opts := game.Options{
			ClientID:         clientID,
			LeaderboardLimit: deps.LeaderboardLimit,
			Observer:         deps.Observer,
		}
		if deps.Results != nil {
			opts.Recorder = deps.Results
		}

		ctrl := game.NewController(deps.API, deps.Hunts, v, presenter, l, opts)
		v.phase = ctrl.State

		return &playerGame{
			clientID: clientID,
			ctrl:     ctrl,
			reporter: game.NewReporter(deps.API, ctrl, v, l),
			view:     v,
		}
	}
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
