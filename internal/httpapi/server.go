package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ingest"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/report"
)

// Server exposes the classification pipeline over a REST API
type Server struct {
	service         *core.ClassifierService
	repo            core.EmailRepository
	ingestor        *ingest.Ingestor
	reporter        *report.Reporter
	logger          *zap.Logger
	listenAddress   string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewServer creates a new API server
func NewServer(
	service *core.ClassifierService,
	repo core.EmailRepository,
	ingestor *ingest.Ingestor,
	reporter *report.Reporter,
	logger *zap.Logger,
	listenAddress string,
	shutdownTimeout time.Duration,
) *Server {
	return &Server{
		service:         service,
		repo:            repo,
		ingestor:        ingestor,
		reporter:        reporter,
		logger:          logger,
		listenAddress:   listenAddress,
		shutdownTimeout: shutdownTimeout,
	}
}

// Routes builds the request router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/emails", func(r chi.Router) {
		r.Post("/", s.createEmail)
		r.Get("/", s.listEmails)
		r.Post("/bulk_upload", s.bulkUpload)
		r.Get("/{id}", s.getEmail)
		r.Post("/{id}/reclassify", s.reclassify)
	})
	r.Get("/reports/label-distribution", s.labelDistribution)
	r.Get("/reports/spam-trend", s.spamTrend)
	r.Get("/exports/csv", s.exportCSV)

	return r
}

// Start begins serving requests in the background
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddress,
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP API listening", zap.String("address", s.listenAddress))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop drains in-flight requests and shuts the server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request through the structured logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
