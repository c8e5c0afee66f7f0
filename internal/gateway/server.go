// Package gateway is the HTTP backend the astrin clients talk to. It proxies
// and reshapes the public space-data feeds, answers chat messages through a
// hosted language model and stores chat history.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/config"
	"astrin/internal/remote"
)

// Banner is the body of GET /.
const Banner = "Astrin Cosmic API with Together AI + NASA is live! 🚀🌌"

// HistoryStore persists chat messages.
type HistoryStore interface {
	SaveMessages(ctx context.Context, messages []chat.Message) (int, error)
	ListMessages(ctx context.Context, limit int) ([]chat.Message, error)
}

// Server wires the routes to their dependencies.
type Server struct {
	cfg       config.ServerConfig
	history   HistoryStore
	completer Completer
	upstream  *remote.Client
	logger    *zap.Logger
	router    chi.Router
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithUpstream replaces the client used for the public feeds.
func WithUpstream(rc *remote.Client) Option {
	return func(s *Server) { s.upstream = rc }
}

func New(cfg config.ServerConfig, history HistoryStore, completer Completer, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		history:   history,
		completer: completer,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.upstream == nil {
		s.upstream = remote.New("", remote.WithLogger(s.logger))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/neo", s.handleNearEarthObjects)
		r.Get("/apod", s.handlePictureOfDay)
		r.Get("/mars-weather", s.handleMarsWeather)
		r.Get("/iss", s.handleStationPosition)
		r.Get("/spacex-launches", s.handleLaunches)

		r.Post("/chat", s.handleChat)
		r.Post("/chat/history", s.handleSaveHistory)
		r.Get("/chat/history", s.handleListHistory)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": Banner})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("gateway stopped")
	return nil
}
