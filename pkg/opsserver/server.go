package opsserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/ppp/pkg/logger"
)

type readinessCheck struct {
	name string
	fn   func(context.Context) error
}

type config struct {
	addr            string
	readTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	gatherer        prometheus.Gatherer
	checks          []readinessCheck
}

// Server serves the ops endpoints.
type Server struct {
	cfg  *config
	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := &config{
		addr:            "127.0.0.1:9090",
		readTimeout:     10 * time.Second,
		shutdownTimeout: 5 * time.Second,
		logger:          logger.Discard(),
		gatherer:        prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{cfg: cfg}
}

// Handler returns the ops endpoint router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.gatherer, promhttp.HandlerOpts{}))
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/readyz", s.ready)
	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for _, c := range s.cfg.checks {
		if err := c.fn(ctx); err != nil {
			s.cfg.logger.WarnContext(ctx, "readiness check failed", logger.Component(c.name), logger.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

// Addr returns the bound address once Run is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens and serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readTimeout,
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	s.srv = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.cfg.logger.InfoContext(ctx, "ops server listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(ErrShutdown, err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrStart, err)
	}
}
