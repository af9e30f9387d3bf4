package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/domain"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
	logpkg "github.com/kailas-cloud/talentsearch/internal/logger"
	healthuc "github.com/kailas-cloud/talentsearch/internal/usecase/health"
)

// UserScopeHeader carries the tenant every search is restricted to.
const UserScopeHeader = "X-User-Scope"

// Event names of the stream endpoint.
const (
	EventStage    = "stage"
	EventComplete = "complete"
)

// Searcher runs the progressive pipeline.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) iter.Seq[stage.Result]
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexUnavailable,
			http.StatusServiceUnavailable, ErrorResponseCodeIndexUnavailable),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Get("/v1/search/stream", s.SearchStream)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search: it runs every stage and returns them together.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(request.Params{
		Query:     body.Query,
		Limit:     derefInt(body.Limit),
		UserScope: r.Header.Get(UserScopeHeader),
		Location:  derefString(body.Location),
		MinYears:  body.MinYears,
		MaxYears:  body.MaxYears,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Stages: make([]StageResponse, 0, stage.Total)}
	for res := range s.search.Search(r.Context(), &req) {
		resp.SearchID = res.SearchID
		resp.Stages = append(resp.Stages, stageToResponse(&res))
	}
	if r.Context().Err() != nil {
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SearchStream handles GET /v1/search/stream: one "stage" event per refinement,
// then "complete". A client disconnect cancels the pipeline.
func (s *Server) SearchStream(w http.ResponseWriter, r *http.Request) {
	params, err := bindStreamParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	req, err := request.New(request.Params{
		Query:     params.Query,
		Limit:     derefInt(params.Limit),
		UserScope: r.Header.Get(UserScopeHeader),
		Location:  derefString(params.Location),
		MinYears:  params.MinYears,
		MaxYears:  params.MaxYears,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrorResponseCodeStreamingUnsupported, err.Error())
		return
	}

	log := s.requestLogger(r)
	var (
		searchID string
		sent     int
	)
	for res := range s.search.Search(r.Context(), &req) {
		searchID = res.SearchID
		if err := sse.WriteEvent(EventStage, stageToResponse(&res)); err != nil {
			log.Debug("stream client gone", zap.String("search_id", searchID), zap.Error(err))
			return
		}
		sent++
	}
	if r.Context().Err() != nil {
		log.Debug("stream cancelled by client", zap.String("search_id", searchID), zap.Int("stages", sent))
		return
	}

	if err := sse.WriteEvent(EventComplete, CompleteEvent{SearchID: searchID, Stages: sent}); err != nil {
		log.Debug("stream client gone", zap.String("search_id", searchID), zap.Error(err))
	}
}

// bindStreamParams decodes the stream query string the way generated
// oapi-codegen wrappers do.
func bindStreamParams(r *http.Request) (SearchStreamParams, error) {
	var params SearchStreamParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "query", q, &params.Query); err != nil {
		return params, fmt.Errorf("invalid format for parameter query: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		return params, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "location", q, &params.Location); err != nil {
		return params, fmt.Errorf("invalid format for parameter location: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_years", q, &params.MinYears); err != nil {
		return params, fmt.Errorf("invalid format for parameter min_years: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "max_years", q, &params.MaxYears); err != nil {
		return params, fmt.Errorf("invalid format for parameter max_years: %w", err)
	}
	return params, nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// validationHandler exposes the full message: it names only the offending parameter.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// requestLogger prefers the per-request logger set by the wide-event middleware.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l, ok := logpkg.Lookup(r.Context()); ok {
		return l
	}
	return s.logger
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
