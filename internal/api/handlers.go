package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tradecoach/internal/models"
	"tradecoach/internal/report"
	"tradecoach/internal/scoring"
)

// queryInt reads an integer query parameter with bounds and a default.
func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return def
	}
	return v
}

// handleMentorAnalyze handles POST /api/mentor/analyze.
func (s *Server) handleMentorAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := s.mentor.Analyze(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		s.log.Error().Err(err).Msg("mentor analysis failed")
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleMentorHistory handles GET /api/mentor/history?days=N.
func (s *Server) handleMentorHistory(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", scoring.WindowDays, 1, 365)
	triggers, err := s.store.GetTriggers(r.Context(), days)
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	if triggers == nil {
		triggers = []models.MentorTrigger{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"triggers": triggers, "days": days})
}

// handleDismissTrigger handles POST /api/mentor/triggers/{id}/dismiss.
func (s *Server) handleDismissTrigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DismissTrigger(r.Context(), id); err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "dismissed"})
}

// handleCompute handles POST /api/evaluation/compute.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	result, err := s.scoring.ComputeDaily(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		s.log.Error().Err(err).Msg("daily scoring pass failed")
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleScores handles GET /api/evaluation/scores?days=N.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", scoring.WindowDays, 1, 365)
	scores, err := s.store.GetDailyScores(r.Context(), days)
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	if scores == nil {
		scores = []models.DailyScore{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"scores": scores, "days": days})
}

// handleBadges handles GET /api/evaluation/badges.
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.store.GetBadges(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

// handleLatestReport handles GET /api/evaluation/report.
func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := s.store.GetLatestReport(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, rpt)
}

// handleReportHistory handles GET /api/evaluation/report/history?limit=N.
func (s *Server) handleReportHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 12, 1, 100)
	reports, err := s.store.GetReportHistory(r.Context(), limit)
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	if reports == nil {
		reports = []models.MonthlyReport{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// handleGenerateReport handles POST /api/evaluation/report/generate.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := s.reports.Generate(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		s.log.Error().Err(err).Msg("report generation failed")
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusCreated, rpt)
}

// handleProfile handles GET /api/evaluation/profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.reports.Profile(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// handleBehaviorSummary handles GET /api/evaluation/behavior-summary.
func (s *Server) handleBehaviorSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Behavior(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleActiveChallenges handles GET /api/challenges.
func (s *Server) handleActiveChallenges(w http.ResponseWriter, r *http.Request) {
	active, err := s.challenges.Active(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": active})
}

// handleRefreshChallenges handles POST /api/challenges/refresh.
func (s *Server) handleRefreshChallenges(w http.ResponseWriter, r *http.Request) {
	active, err := s.challenges.Refresh(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		s.log.Error().Err(err).Msg("challenge refresh failed")
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": active})
}

// handleChallengeHistory handles GET /api/challenges/history?limit=N.
func (s *Server) handleChallengeHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 1, 200)
	history, err := s.store.GetChallengeHistory(r.Context(), limit)
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	if history == nil {
		history = []models.Challenge{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": history})
}

// checklistRequest is the POST body for recording a pre-trade checklist.
type checklistRequest struct {
	Symbol        string `json:"symbol"`
	TransactionID string `json:"transactionId"`
	CheckedTrend  bool   `json:"checkedTrend"`
	CheckedVolume bool   `json:"checkedVolume"`
	CheckedNews   bool   `json:"checkedNews"`
	SetStopLoss   bool   `json:"setStopLoss"`
	SetTarget     bool   `json:"setTarget"`
	Skipped       bool   `json:"skipped"`
}

// handleSaveChecklist handles POST /api/checklists.
func (s *Server) handleSaveChecklist(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "symbol is required")
		return
	}

	completed := 0
	for _, checked := range []bool{req.CheckedTrend, req.CheckedVolume, req.CheckedNews, req.SetStopLoss, req.SetTarget} {
		if checked {
			completed++
		}
	}

	checklist := models.Checklist{
		ID:             "cl-" + uuid.NewString(),
		TransactionID:  req.TransactionID,
		Symbol:         req.Symbol,
		CheckedTrend:   req.CheckedTrend,
		CheckedVolume:  req.CheckedVolume,
		CheckedNews:    req.CheckedNews,
		SetStopLoss:    req.SetStopLoss,
		SetTarget:      req.SetTarget,
		Skipped:        req.Skipped,
		CompletedCount: completed,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.SaveChecklist(r.Context(), &checklist); err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusCreated, checklist)
}

// handleChecklistStats handles GET /api/checklists/stats?days=N.
func (s *Server) handleChecklistStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", scoring.WindowDays, 1, 365)
	checklists, err := s.store.GetChecklists(r.Context(), days)
	if err != nil {
		status, code, msg := mapError(err)
		respondError(w, status, code, msg)
		return
	}
	respondJSON(w, http.StatusOK, report.ComputeChecklistStats(checklists))
}
