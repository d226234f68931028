// Package web serves the single-page chat UI over HTTP.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/geminichat/internal/chat"
)

const (
	// DefaultAddr is the loopback address the UI binds to by default
	DefaultAddr = "127.0.0.1:8080"

	shutdownTimeout = 30 * time.Second
)

// SessionFactory creates the chat session for a new browser
type SessionFactory func() *chat.Session

// Option configures the server
type Option func(*Server)

// WithAddr sets the listen address
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets the request and lifecycle logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDarkMode sets the theme new browser sessions start with
func WithDarkMode(dark bool) Option {
	return func(s *Server) {
		s.sessions.dark = dark
	}
}

// Server is the chat web UI
type Server struct {
	addr     string
	logger   zerolog.Logger
	sessions *sessionStore
	router   chi.Router
}

// NewServer builds the router; newSession is called once per browser
func NewServer(newSession SessionFactory, opts ...Option) *Server {
	s := &Server{
		addr:     DefaultAddr,
		logger:   zerolog.Nop(),
		sessions: newSessionStore(newSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/", s.index)
	r.Post("/ask", s.ask)
	r.Post("/edit/cancel", s.cancelEdit)
	r.Post("/edit/{index}", s.beginEdit)
	r.Post("/theme", s.toggleTheme)
	r.Post("/new", s.newChat)
	r.Get("/export.md", s.exportMarkdown)
	r.Get("/export.json", s.exportJSON)
	return r
}

// Handler returns the HTTP handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("web UI listening")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		s.logger.Info().Msg("shutting down web UI")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown error")
			return err
		}
		return nil
	})

	return eg.Wait()
}

// requestLogger logs one line per request through zerolog
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
