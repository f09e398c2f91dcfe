package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/service"
)

const (
	maxBodyBytes     = 1 << 20 // articles are text; 1 MiB is generous
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

type evaluateRequest struct {
	Content         string `json:"content"`
	Topic           string `json:"topic"`
	WordCountTarget int    `json:"word_count_target"`
	RetryCount      int    `json:"retry_count"`
}

type validateRequest struct {
	Content string `json:"content"`
}

type quickCheckRequest struct {
	Content         string `json:"content"`
	WordCountTarget int    `json:"word_count_target"`
}

type createArticleRequest struct {
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords,omitempty"`
	WordCountTarget int      `json:"word_count_target"`
	ForcePublish    bool     `json:"force_publish,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.WordCountTarget <= 0 {
		respondError(w, http.StatusBadRequest, "word_count_target must be positive")
		return
	}

	combined := s.evaluator.EvaluateCombined(r.Context(), req.Content, req.WordCountTarget, req.Topic, req.RetryCount)
	respondJSON(w, http.StatusOK, combined)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	respondJSON(w, http.StatusOK, s.evaluator.Validate(req.Content))
}

func (s *Server) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	var req quickCheckRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.WordCountTarget <= 0 {
		respondError(w, http.StatusBadRequest, "word_count_target must be positive")
		return
	}

	respondJSON(w, http.StatusOK, s.evaluator.QuickCheck(req.Content, req.WordCountTarget))
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if !s.decode(w, r, &req) {
		return
	}

	genReq := domain.GenerationRequest{
		Topic:           req.Topic,
		Keywords:        req.Keywords,
		WordCountTarget: req.WordCountTarget,
	}
	result, err := s.workflow.Run(r.Context(), genReq, service.RunOptions{ForcePublish: req.ForcePublish})
	if err != nil {
		s.respondForError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	var (
		runs []domain.ArticleRun
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.RunStatus(raw)
		if !status.IsValid() {
			respondError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(raw))
			return
		}
		runs, err = s.runs.ListByStatus(r.Context(), status, limit)
	} else {
		runs, err = s.runs.List(r.Context(), limit)
	}
	if err != nil {
		s.respondForError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.workflow == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	health := s.workflow.Health(r.Context())
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) respondForError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyTopic),
		errors.Is(err, domain.ErrTopicTooLong),
		errors.Is(err, domain.ErrInvalidWordTarget):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
