// Package chi provides the HTTP transport for the relevance API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain"
	"github.com/studylens/fuserank/internal/domain/candidate"
	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
	domitem "github.com/studylens/fuserank/internal/domain/item"
	"github.com/studylens/fuserank/internal/domain/similarity"
	fusionuc "github.com/studylens/fuserank/internal/usecase/fusion"
	healthuc "github.com/studylens/fuserank/internal/usecase/health"
	itemuc "github.com/studylens/fuserank/internal/usecase/item"
	recommenduc "github.com/studylens/fuserank/internal/usecase/recommend"
	retrievaluc "github.com/studylens/fuserank/internal/usecase/retrieval"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the fusion, retrieval and recommendation services over JSON.
type Server struct {
	fusion        *fusionuc.Service
	retrieval     *retrievaluc.Service
	items         *itemuc.Service
	recommend     *recommenduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	fusion *fusionuc.Service,
	retrieval *retrievaluc.Service,
	items *itemuc.Service,
	recommend *recommenduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		fusion:    fusion,
		retrieval: retrieval,
		items:     items,
		recommend: recommend,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimMismatch),
		sentinelHandler(domain.ErrNonFiniteVector, http.StatusBadRequest, codeInvalidVector),
		sentinelHandler(domain.ErrUnknownFusionMethod, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnknownMetric, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/fuse", s.Fuse)
		r.Post("/similarity", s.Similarity)
		r.Post("/search", s.Search)
		r.Get("/users/{userID}/recommendations", s.Recommendations)

		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Get("/", s.GetCollection)
			r.Put("/items/{id}", s.UpsertItem)
			r.Get("/items/{id}", s.GetItem)
			r.Delete("/items/{id}", s.DeleteItem)
		})
	})
}

// Fuse handles POST /api/v1/fuse: fuse pre-computed modality vectors.
func (s *Server) Fuse(w http.ResponseWriter, r *http.Request) {
	var req fuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg := s.fusion.Defaults()
	if req.Method != "" {
		method, err := domfusion.ParseMethod(req.Method)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		cfg.Method = method
	}
	if req.TextWeight != nil {
		cfg.TextWeight = *req.TextWeight
	}
	if req.ImageWeight != nil {
		cfg.ImageWeight = *req.ImageWeight
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res := s.fusion.Fuse(req.Text, req.Images, cfg)

	writeJSON(w, http.StatusOK, fuseResponse{
		Hybrid:  res.Hybrid,
		Text:    res.Text,
		Image:   res.Image,
		Method:  string(res.Method),
		Success: res.Success,
		Error:   res.Error,
	})
}

// Similarity handles POST /api/v1/similarity: score two vectors.
func (s *Server) Similarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	metric := similarity.Cosine
	if req.Metric != "" {
		m, err := similarity.ParseMetric(req.Metric)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		metric = m
	}

	writeJSON(w, http.StatusOK, similarityResponse{
		Score:  similarity.Score(req.A, req.B, metric),
		Metric: string(metric),
	})
}

// Search handles POST /api/v1/search: retrieve ranked context for a query.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" && len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query or images required")
		return
	}

	results, confidence, err := s.retrieval.Search(
		r.Context(), req.UserID, req.Query, req.Images, req.TopK, req.MinScore,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:    rankedToDTO(results),
		Confidence: confidence,
		Total:      len(results),
	})
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user id is required")
		return
	}

	items, err := s.recommend.Recommend(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationsResponse{
		UserID: userID,
		Items:  rankedToDTO(items),
	})
}

// GetCollection handles GET /api/v1/collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	count, err := s.items.Count(r.Context(), collection)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collectionResponse{
		Collection: collection,
		ItemCount:  count,
	})
}

// UpsertItem handles PUT /api/v1/collections/{collection}/items/{id}.
func (s *Server) UpsertItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" && len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "content or images required")
		return
	}

	it := domitem.New(id, req.Content, req.Tags, req.Numerics)
	created, err := s.items.Ingest(r.Context(), collection, &it, req.Images)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location",
			fmt.Sprintf("/api/v1/collections/%s/items/%s", collection, id))
	}
	writeJSON(w, status, itemToDTO(&it))
}

// GetItem handles GET /api/v1/collections/{collection}/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	it, err := s.items.Get(r.Context(), collection, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToDTO(&it))
}

// DeleteItem handles DELETE /api/v1/collections/{collection}/items/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if err := s.items.Delete(r.Context(), collection, id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func rankedToDTO(results []candidate.Ranked) []rankedItem {
	items := make([]rankedItem, len(results))
	for i := range results {
		r := &results[i]
		items[i] = rankedItem{
			ID:         r.ID(),
			Content:    r.Content(),
			Source:     r.Source(),
			Similarity: r.Similarity(),
			Tags:       r.Tags(),
			Numerics:   r.Numerics(),
		}
	}
	return items
}

func itemToDTO(it *domitem.Item) itemResponse {
	return itemResponse{
		ID:       it.ID(),
		Content:  it.Content(),
		Tags:     it.Tags(),
		Numerics: it.Numerics(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrNotFound,
		domain.ErrDimensionMismatch,
		domain.ErrNonFiniteVector,
		domain.ErrUnknownFusionMethod,
		domain.ErrUnknownMetric,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
