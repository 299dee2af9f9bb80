package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docdex-ai/docdex/internal/domain"
	"github.com/docdex-ai/docdex/internal/domain/search/mode"
	"github.com/docdex-ai/docdex/internal/domain/search/query"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
	"github.com/docdex-ai/docdex/internal/logger"
	"github.com/docdex-ai/docdex/internal/repository/history"
	"github.com/docdex-ai/docdex/internal/repository/memstore"
	"github.com/docdex-ai/docdex/internal/usecase/analytics"
	"github.com/docdex-ai/docdex/internal/usecase/health"
	"github.com/docdex-ai/docdex/internal/usecase/search"
	"github.com/docdex-ai/docdex/internal/version"
)

// Non-standard nginx status reported when the caller abandoned the request.
const statusClientClosedRequest = 499

const defaultHistoryLimit = 20

// Embedder turns query text into an embedding vector. Optional: when absent,
// vector and hybrid searches must carry a precomputed embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Defaults are request-level fallbacks applied before query validation.
type Defaults struct {
	TopN      int
	Threshold float64
}

// Server wires the HTTP surface to the search engine.
type Server struct {
	search    *search.Service
	analytics *analytics.Service
	store     *memstore.Store
	health    *health.Service
	history   *history.Store
	embedder  Embedder
	defaults  Defaults
	logger    *zap.Logger
}

// NewServer creates the HTTP handler set. history and embedder may be nil.
func NewServer(
	searchSvc *search.Service,
	analyticsSvc *analytics.Service,
	store *memstore.Store,
	healthSvc *health.Service,
	historyStore *history.Store,
	embedder Embedder,
	defaults Defaults,
	log *zap.Logger,
) *Server {
	return &Server{
		search:    searchSvc,
		analytics: analyticsSvc,
		store:     store,
		health:    healthSvc,
		history:   historyStore,
		embedder:  embedder,
		defaults:  defaults,
		logger:    log,
	}
}

// RegisterRoutes mounts all endpoints on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/analyze", s.Analyze)
		r.Post("/chunks", s.IngestChunks)
		r.Post("/invalidate", s.Invalidate)
		r.Get("/history", s.History)
	})
}

// Search executes a search query and returns the requested page.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	page, q, err := s.runSearch(r.Context(), &req)
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	resp := SearchResponse{
		Results:      resultsToDTO(page.Results),
		TotalMatched: page.TotalMatched,
		HasMore:      page.HasMore,
	}
	if req.IncludeAnalytics {
		report := s.analytics.Analyze(page, q)
		resp.Analytics = &report
	}

	s.recordHistory(r.Context(), q, page)
	s.writeJSON(w, r, http.StatusOK, resp)
}

// Analyze executes a search query and returns statistics over the visible
// page instead of the results themselves.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	page, q, err := s.runSearch(r.Context(), &req)
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, s.analytics.Analyze(page, q))
}

// IngestChunks upserts document chunks into the store. Chunks for a document
// already present replace that document's chunks wholesale.
func (s *Server) IngestChunks(w http.ResponseWriter, r *http.Request) {
	var req ChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if len(req.Chunks) == 0 {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "chunks must not be empty")
		return
	}
	for i, c := range req.Chunks {
		if c.DocumentID == "" {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest,
				"chunk "+strconv.Itoa(i)+": document_id is required")
			return
		}
	}

	s.store.Put(chunksFromDTO(req.Chunks))
	s.search.Invalidate()

	s.writeJSON(w, r, http.StatusOK, ChunksResponse{
		Ingested: len(req.Chunks),
		Version:  s.store.CurrentVersion(),
	})
}

// Invalidate drops all cached pages so later searches recompute.
func (s *Server) Invalidate(w http.ResponseWriter, r *http.Request) {
	s.search.Invalidate()
	s.writeJSON(w, r, http.StatusOK, InvalidateResponse{Status: "ok"})
}

// History returns the most recent recorded searches.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, r, http.StatusNotFound, codeBadRequest, "history is not configured")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history fetch failed", zap.Error(err))
		s.writeError(w, r, http.StatusServiceUnavailable, codeInternal, "history unavailable")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	s.writeJSON(w, r, http.StatusOK, HistoryResponse{Entries: entries})
}

// HealthCheck reports engine and dependency health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, status, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Chunks:  report.Chunks,
		Version: version.Version,
	})
}

// Metrics exposes Prometheus metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// runSearch builds a validated query from the request, embedding the text
// first when the mode needs a vector and none was supplied.
func (s *Server) runSearch(ctx context.Context, req *SearchRequest) (result.Page, *query.Query, error) {
	m := mode.Mode(req.Mode)
	if m == "" {
		m = mode.Hybrid
	}

	embedding := req.Embedding
	if len(embedding) == 0 && m.UsesVector() && s.embedder != nil && req.Text != "" {
		var err error
		embedding, err = s.embedder.Embed(ctx, req.Text)
		if err != nil {
			return result.Page{}, nil, err
		}
	}

	topN := req.TopN
	if topN == 0 {
		topN = s.defaults.TopN
	}
	threshold := req.Threshold
	if threshold == nil && s.defaults.Threshold != 0 {
		t := s.defaults.Threshold
		threshold = &t
	}

	q, err := query.New(req.Text, embedding, m, topN, threshold, req.Scope, req.Page)
	if err != nil {
		return result.Page{}, nil, err
	}

	page, err := s.search.Search(ctx, &q)
	if err != nil {
		return result.Page{}, nil, err
	}
	return page, &q, nil
}

// recordHistory appends the search to the history list. Failures are logged
// and never surface to the caller.
func (s *Server) recordHistory(ctx context.Context, q *query.Query, page result.Page) {
	if s.history == nil {
		return
	}
	err := s.history.Append(ctx, history.Entry{
		Query:        q.Text(),
		Mode:         string(q.Mode()),
		Scope:        q.Scope(),
		ResultCount:  len(page.Results),
		TotalMatched: page.TotalMatched,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("history append failed", zap.Error(err))
	}
}

// writeSearchError maps engine errors to HTTP statuses.
func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		s.writeError(w, r, http.StatusBadRequest, codeInvalidQuery, err.Error())
	case errors.Is(err, domain.ErrDimensionMismatch):
		s.writeError(w, r, http.StatusBadRequest, codeDimensionMismatch, err.Error())
	case errors.Is(err, domain.ErrCancelled):
		s.writeError(w, r, statusClientClosedRequest, codeCancelled, "search cancelled")
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		s.writeError(w, r, http.StatusBadGateway, codeEmbeddingError, "embedding provider error")
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.writeError(w, r, http.StatusServiceUnavailable, codeInternal, "chunk store unavailable")
	default:
		s.logger.Error("search failed", zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, r, status, ErrorResponse{Code: code, Message: message})
}
