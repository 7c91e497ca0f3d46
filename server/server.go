package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"go-industrial/library"
	"go-industrial/logger"
	"go-industrial/sequencer"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Server exposes rendering and playback over HTTP
type Server struct {
	engine    *sequencer.Engine
	history   *library.Library // optional
	exportDir string
	version   string
}

// Option configures a Server
type Option func(*Server)

// WithHistory records saved renders in lib
func WithHistory(lib *library.Library) Option {
	return func(s *Server) { s.history = lib }
}

// WithExportDir sets where renders with "save" set are written
func WithExportDir(dir string) Option {
	return func(s *Server) { s.exportDir = dir }
}

// New creates a server around a running engine
func New(engine *sequencer.Engine, version string, opts ...Option) *Server {
	s := &Server{engine: engine, version: version}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	}))
	router.Use(RequestTracking())

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.GET("/presets", s.presets)
		api.POST("/render", s.render)
		api.GET("/history", s.listHistory)

		api.GET("/playback", s.playback)
		api.POST("/playback/:action", s.transport)
	}

	return router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": addr, "version": s.version})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("HTTP server shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}
