// Package api provides the HTTP API server for the analytics engine.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tradecoach/internal/logging"
	"tradecoach/internal/mentor"
	"tradecoach/internal/models"
	"tradecoach/internal/report"
	"tradecoach/internal/scoring"
)

// Service interfaces for dependency injection and testing

// MentorService runs pattern detection and feedback generation.
type MentorService interface {
	Analyze(ctx context.Context) (*mentor.AnalysisResult, error)
}

// ScoringService runs the daily scoring pass.
type ScoringService interface {
	ComputeDaily(ctx context.Context) (*scoring.DailyResult, error)
}

// ChallengeService manages the challenge lifecycle.
type ChallengeService interface {
	Active(ctx context.Context) ([]models.Challenge, error)
	Refresh(ctx context.Context) ([]models.Challenge, error)
}

// ReportService builds reports, behavior summaries, and trader profiles.
type ReportService interface {
	Generate(ctx context.Context) (*models.MonthlyReport, error)
	Behavior(ctx context.Context) (*report.BehaviorSummary, error)
	Profile(ctx context.Context) (*report.TraderProfile, error)
}

// ReadStore is the subset of the data store the API reads directly.
type ReadStore interface {
	GetDailyScores(ctx context.Context, days int) ([]models.DailyScore, error)
	GetBadges(ctx context.Context) ([]models.Badge, error)
	GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error)
	DismissTrigger(ctx context.Context, id string) error
	SaveChecklist(ctx context.Context, checklist *models.Checklist) error
	GetChecklists(ctx context.Context, days int) ([]models.Checklist, error)
	GetLatestReport(ctx context.Context) (*models.MonthlyReport, error)
	GetReportHistory(ctx context.Context, limit int) ([]models.MonthlyReport, error)
	GetChallengeHistory(ctx context.Context, limit int) ([]models.Challenge, error)
}

// Config holds server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	mentor     MentorService
	scoring    ScoringService
	challenges ChallengeService
	reports    ReportService
	store      ReadStore
	log        zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(
	cfg Config,
	mentorSvc MentorService,
	scoringSvc ScoringService,
	challengeSvc ChallengeService,
	reportSvc ReportService,
	st ReadStore,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		mentor:     mentorSvc,
		scoring:    scoringSvc,
		challenges: challengeSvc,
		reports:    reportSvc,
		store:      st,
		log:        logging.WithComponent(logger, "api"),
	}

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Mentor endpoints
	api.HandleFunc("/mentor/analyze", s.handleMentorAnalyze).Methods("POST")
	api.HandleFunc("/mentor/history", s.handleMentorHistory).Methods("GET")
	api.HandleFunc("/mentor/triggers/{id}/dismiss", s.handleDismissTrigger).Methods("POST")

	// Evaluation endpoints
	api.HandleFunc("/evaluation/compute", s.handleCompute).Methods("POST")
	api.HandleFunc("/evaluation/scores", s.handleScores).Methods("GET")
	api.HandleFunc("/evaluation/badges", s.handleBadges).Methods("GET")
	api.HandleFunc("/evaluation/report", s.handleLatestReport).Methods("GET")
	api.HandleFunc("/evaluation/report/history", s.handleReportHistory).Methods("GET")
	api.HandleFunc("/evaluation/report/generate", s.handleGenerateReport).Methods("POST")
	api.HandleFunc("/evaluation/profile", s.handleProfile).Methods("GET")
	api.HandleFunc("/evaluation/behavior-summary", s.handleBehaviorSummary).Methods("GET")

	// Challenge endpoints
	api.HandleFunc("/challenges", s.handleActiveChallenges).Methods("GET")
	api.HandleFunc("/challenges/refresh", s.handleRefreshChallenges).Methods("POST")
	api.HandleFunc("/challenges/history", s.handleChallengeHistory).Methods("GET")

	// Checklist endpoints
	api.HandleFunc("/checklists", s.handleSaveChecklist).Methods("POST")
	api.HandleFunc("/checklists/stats", s.handleChecklistStats).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tradecoach",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
