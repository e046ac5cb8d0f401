// Package api provides the HTTP server exposing the analysis engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"material-lca/internal/engine"
	"material-lca/internal/policy"
	"material-lca/pkg/api"
	lcaerrors "material-lca/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	Port           string
	RequestTimeout time.Duration
	MaxRequestSize int64
	PoliciesDir    string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		RequestTimeout: 60 * time.Second,
		MaxRequestSize: 1 << 20,
		PoliciesDir:    "policies",
	}
}

// Server is the HTTP API server.
type Server struct {
	engine    *engine.Engine
	evaluator *policy.Evaluator
	config    *Config
	log       zerolog.Logger
	startTime time.Time
	version   string
}

func NewServer(eng *engine.Engine, config *Config, log zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		engine:    eng,
		evaluator: policy.NewEvaluator(config.PoliciesDir),
		config:    config,
		log:       log,
		startTime: time.Now(),
		version:   "0.1.0",
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/gaps", s.handleGaps)
		r.Post("/predict", s.handlePredict)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/performance/{name}", s.handlePerformance)
		r.Get("/statistics", s.handleStatistics)
	})

	return r
}

// Start runs the server until the listener fails.
func (s *Server) Start() error {
	s.log.Info().
		Str("port", s.config.Port).
		Str("version", s.version).
		Str("policies_dir", s.config.PoliciesDir).
		Msg("starting analysis API server")
	return http.ListenAndServe(":"+s.config.Port, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "material-lca",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"version": s.version,
		"service": "material-lca",
	})
}

// AnalyzeRequest is the request body for analysis and gap endpoints.
type AnalyzeRequest struct {
	AnalysisType string         `json:"analysis_type"`
	Process      map[string]any `json:"process"`
}

// AnalyzeResponse pairs the analysis result with the policy verdict.
type AnalyzeResponse struct {
	Result  *api.AnalysisResult `json:"result"`
	Policy  *policy.Result      `json:"policy,omitempty"`
	Success bool                `json:"success"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, analysisType, ok := s.decodeProcess(w, r)
	if !ok {
		return
	}

	result, err := s.engine.Analyze(r.Context(), req.Process, analysisType)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}

	verdict, err := s.evaluator.Evaluate(r.Context(), result)
	if err != nil {
		// Policy evaluation is advisory; a broken policy never fails a run.
		s.log.Warn().Err(err).Msg("policy evaluation failed")
		verdict = nil
	}

	s.respond(w, http.StatusOK, AnalyzeResponse{Result: result, Policy: verdict, Success: true})
}

func (s *Server) handleGaps(w http.ResponseWriter, r *http.Request) {
	req, analysisType, ok := s.decodeProcess(w, r)
	if !ok {
		return
	}

	gapList, err := s.engine.DetectGaps(r.Context(), req.Process, analysisType)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"gaps":    gapList,
		"success": true,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, analysisType, ok := s.decodeProcess(w, r)
	if !ok {
		return
	}

	gapList, filled, err := s.engine.Predict(r.Context(), req.Process, analysisType)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"gaps":       gapList,
		"parameters": filled,
		"success":    true,
	})
}

// FeedbackRequest submits a confirmed actual for a predicted parameter.
type FeedbackRequest struct {
	Parameter  string     `json:"parameter"`
	Predicted  float64    `json:"predicted"`
	Actual     float64    `json:"actual"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Parameter == "" {
		s.respondError(w, http.StatusBadRequest, "parameter is required")
		return
	}
	at := time.Now().UTC()
	if req.ObservedAt != nil {
		at = *req.ObservedAt
	}

	perf, err := s.engine.RecordFeedback(r.Context(), req.Parameter, req.Predicted, req.Actual, at)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"performance": perf,
		"success":     true,
	})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	perf, err := s.engine.GetPerformance(r.Context(), name)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respond(w, http.StatusOK, perf)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.engine.GapStatistics())
}

func (s *Server) decodeProcess(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, api.AnalysisType, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return req, "", false
	}
	if len(req.Process) == 0 {
		s.respondError(w, http.StatusBadRequest, "process is required")
		return req, "", false
	}

	analysisType := api.AnalysisType(req.AnalysisType)
	if req.AnalysisType == "" {
		analysisType = api.AnalysisFull
	}
	if !analysisType.Valid() {
		s.respondError(w, http.StatusBadRequest, "unknown analysis_type: "+req.AnalysisType)
		return req, "", false
	}
	return req, analysisType, true
}

// respondEngineError maps engine error types onto HTTP statuses.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	var verr *lcaerrors.ValidationError
	if errors.As(err, &verr) {
		s.respond(w, http.StatusUnprocessableEntity, map[string]any{
			"success":    false,
			"error":      "validation failed",
			"violations": verr.Violations,
		})
		return
	}
	var inconsistent *lcaerrors.InconsistentFeedback
	if errors.As(err, &inconsistent) {
		s.respond(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   inconsistent.Error(),
		})
		return
	}
	var notFound *lcaerrors.NotFound
	if errors.As(err, &notFound) {
		s.respondError(w, http.StatusNotFound, notFound.Error())
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
