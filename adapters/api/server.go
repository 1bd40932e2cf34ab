package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"xlmongo/app"
	"xlmongo/domain/pivot"
	"xlmongo/internal/errors"
)

// Importer runs one spreadsheet import
type Importer interface {
	Import(ctx context.Context, req app.ImportRequest) (*app.ImportReport, error)
}

// Exporter runs one collection export
type Exporter interface {
	Export(ctx context.Context, req app.ExportRequest) (*app.ExportReport, error)
}

// Options holds the defaults a request falls back to
type Options struct {
	ImportDatabase   string
	ImportCollection string
	ExportDatabase   string
	ExportCollection string
	Pivot            pivot.Spec
	MaxUploadMB      int
	// TempDir receives uploads and generated workbooks; empty means os.TempDir
	TempDir string
}

// Server exposes imports and exports over HTTP. Runs are serialised: a request
// arriving while another run is in progress is rejected, not queued.
type Server struct {
	router   *chi.Mux
	importer Importer
	exporter Exporter
	options  Options
	logger   *zap.Logger

	runMu sync.Mutex
}

// NewServer creates a server and registers its routes
func NewServer(importer Importer, exporter Exporter, options Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.MaxUploadMB <= 0 {
		options.MaxUploadMB = 32
	}

	s := &Server{
		router:   chi.NewRouter(),
		importer: importer,
		exporter: exporter,
		options:  options,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/imports", s.handleImport)
		r.Post("/exports", s.handleExport)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then waits up to
// shutdownTimeout for in-flight requests
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// tryRun acquires the run lock or reports that another run holds it
func (s *Server) tryRun() (func(), error) {
	if !s.runMu.TryLock() {
		return nil, errors.New(errors.CodeBusy, "another import or export is in progress")
	}
	return s.runMu.Unlock, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
