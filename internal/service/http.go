package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cooksheet/cooksheet/internal/insights"
	"github.com/cooksheet/cooksheet/internal/rules"
	"github.com/cooksheet/cooksheet/internal/schema"
	"github.com/cooksheet/cooksheet/internal/state"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// Server is the JSON HTTP surface over the supersede runner.
type Server struct {
	runner *Runner
	store  *state.Store
	logger *slog.Logger
}

// NewServer creates the HTTP surface. store may be nil; GET /passes then
// returns an empty history.
func NewServer(runner *Runner, store *state.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{runner: runner, store: store, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/validate", s.handleValidate)
	r.Get("/passes", s.handlePasses)
	return r
}

// validateRequest is the POST /validate body: the three entity tables as
// ordered record arrays plus the rule set.
type validateRequest struct {
	Clients []map[string]any `json:"clients"`
	Workers []map[string]any `json:"workers"`
	Tasks   []map[string]any `json:"tasks"`
	Rules   []map[string]any `json:"rules"`
}

// validateResponse mirrors the shape downstream consumers expect: the
// report plus advisory insight fields.
type validateResponse struct {
	Report       *validate.Report   `json:"report"`
	QualityScore float64            `json:"data_quality_score"`
	Readiness    insights.Readiness `json:"readiness_status"`
	AutoFixes    []insights.AutoFix `json:"auto_fixes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ruleSet, err := rules.FromRecords(req.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := &validate.Snapshot{
		Clients: toRecords(req.Clients),
		Workers: toRecords(req.Workers),
		Tasks:   toRecords(req.Tasks),
		Rules:   ruleSet,
	}

	report, err := s.runner.Submit(r.Context(), snap, state.TriggerHTTP)
	if errors.Is(err, ErrSuperseded) {
		writeError(w, http.StatusConflict, "superseded by a newer snapshot")
		return
	}
	if err != nil {
		s.logger.Error("validation pass failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Report:       report,
		QualityScore: insights.QualityScore(report),
		Readiness:    insights.AssessReadiness(report),
		AutoFixes:    insights.AutoFixes(report),
	})
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	passes := []*state.Pass{}
	if s.store != nil {
		var err error
		passes, err = s.store.ListPasses(limit)
		if err != nil {
			s.logger.Error("failed to list passes", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list passes")
			return
		}
		if passes == nil {
			passes = []*state.Pass{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"passes": passes})
}

func toRecords(raw []map[string]any) []schema.Record {
	out := make([]schema.Record, len(raw))
	for i, m := range raw {
		out[i] = schema.Record(m)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
