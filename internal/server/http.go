package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/repository"
)

const headerRunID = "X-Run-ID"

type HTTPConfig struct {
	CORSOrigins    []string
	MaxUploadBytes int64
}

type HTTPServer struct {
	router *chi.Mux
	svc    *ContractService
	cfg    HTTPConfig
	logger *slog.Logger
}

func NewHTTPServer(svc *ContractService, cfg HTTPConfig, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	s := &HTTPServer{router: chi.NewRouter(), svc: svc, cfg: cfg, logger: logger}
	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{headerRunID},
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/extract/page1", s.handleExtractPage1)
		r.Post("/extract/merge2", s.handleMergePage2)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/xlsx", s.handleRunXLSX)
	})
}

func (s *HTTPServer) Router() http.Handler {
	return s.router
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", s.cfg.MaxUploadBytes))
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "failed to read body")
		return nil, false
	}
	if !json.Valid(body) {
		respondError(w, http.StatusBadRequest, "body is not valid JSON")
		return nil, false
	}
	return body, true
}

func (s *HTTPServer) handleExtractPage1(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	res := s.svc.ExtractPage1(r.Context(), document.Decode(body), sourceName(r, "page1"), repository.ContentHash(body))
	if res.RunID != nil {
		w.Header().Set(headerRunID, res.RunID.String())
	}
	respondJSON(w, http.StatusOK, res.Record)
}

type mergeRequest struct {
	Record json.RawMessage `json:"record"`
	Page2  json.RawMessage `json:"page2"`
}

func (s *HTTPServer) handleMergePage2(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var req mergeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "body must be {\"record\": …, \"page2\": …}")
		return
	}
	v := common.NewValidator().
		Field("record", rawOrNil(req.Record), common.Required).
		Field("page2", rawOrNil(req.Page2), common.Required)
	if v.HasErrors() {
		respondAppError(w, v.Error())
		return
	}
	rec, err := export.UnmarshalRecord(req.Record)
	if err != nil {
		respondAppError(w, err)
		return
	}
	res := s.svc.MergePage2(r.Context(), rec, document.Decode(req.Page2), sourceName(r, "page2"), repository.ContentHash(req.Record, req.Page2))
	if res.RunID != nil {
		w.Header().Set(headerRunID, res.RunID.String())
	}
	respondJSON(w, http.StatusOK, res.Record)
}

func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.RunFilter{
		PaymentMethod: q.Get("method"),
		Status:        constants.RunStatus(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if filter.PaymentMethod != "" {
		v := common.NewValidator().Field("method", filter.PaymentMethod, common.OneOf(constants.PaymentMethodsAsStringSlice()...))
		if v.HasErrors() {
			respondAppError(w, v.Error())
			return
		}
	}

	runs, err := s.svc.ListRuns(r.Context(), filter)
	if err != nil {
		respondAppError(w, err)
		return
	}
	for _, run := range runs {
		run.Record = nil
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": runs,
		"count": len(runs),
	})
}

func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runIDParam(w, r)
	if !ok {
		return
	}
	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *HTTPServer) handleRunXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := runIDParam(w, r)
	if !ok {
		return
	}
	b, run, err := s.svc.RunXLSX(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	name := "contract"
	if run.ContractNumber != nil {
		name = *run.ContractNumber
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFileName(name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func runIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	v := common.NewValidator().Field("id", raw, common.UUID)
	if v.HasErrors() {
		respondAppError(w, v.Error())
		return uuid.Nil, false
	}
	id, _ := uuid.Parse(raw)
	return id, true
}

func sourceName(r *http.Request, fallback string) string {
	if v := r.URL.Query().Get("source"); v != "" {
		return v
	}
	return fallback
}

func rawOrNil(b json.RawMessage) any {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return string(b)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondAppError(w http.ResponseWriter, err error) {
	respondError(w, common.HTTPStatus(err), err.Error())
}
