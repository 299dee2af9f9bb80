package chi

import (
	domanalytics "github.com/docdex-ai/docdex/internal/domain/analytics"
	"github.com/docdex-ai/docdex/internal/domain/chunk"
	"github.com/docdex-ai/docdex/internal/domain/search/result"
	"github.com/docdex-ai/docdex/internal/repository/history"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeInvalidQuery      = "invalid_query"
	codeDimensionMismatch = "dimension_mismatch"
	codeCancelled         = "cancelled"
	codeEmbeddingError    = "embedding_provider_error"
	codeInternal          = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Text             string    `json:"text,omitempty"`
	Embedding        []float32 `json:"embedding,omitempty"`
	Mode             string    `json:"mode,omitempty"`
	TopN             int       `json:"top_n,omitempty"`
	Threshold        *float64  `json:"threshold,omitempty"`
	Scope            []string  `json:"scope,omitempty"`
	Page             int       `json:"page,omitempty"`
	IncludeAnalytics bool      `json:"include_analytics,omitempty"`
}

// ScoredResult is one search hit in a response.
type ScoredResult struct {
	DocumentID   string            `json:"document_id"`
	Page         int               `json:"page"`
	Text         string            `json:"text"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	VectorScore  *float64          `json:"vector_score,omitempty"`
	KeywordScore *float64          `json:"keyword_score,omitempty"`
	FusedScore   float64           `json:"fused_score"`
}

// SearchResponse is the POST /v1/search response body.
type SearchResponse struct {
	Results      []ScoredResult       `json:"results"`
	TotalMatched int                  `json:"total_matched"`
	HasMore      bool                 `json:"has_more"`
	Analytics    *domanalytics.Report `json:"analytics,omitempty"`
}

// ChunkUpsert is one chunk in a POST /v1/chunks body.
type ChunkUpsert struct {
	DocumentID string            `json:"document_id"`
	Page       int               `json:"page"`
	Text       string            `json:"text"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ChunksRequest is the POST /v1/chunks body.
type ChunksRequest struct {
	Chunks []ChunkUpsert `json:"chunks"`
}

// ChunksResponse is the POST /v1/chunks response body.
type ChunksResponse struct {
	Ingested int    `json:"ingested"`
	Version  uint64 `json:"version"`
}

// InvalidateResponse is the POST /v1/invalidate response body.
type InvalidateResponse struct {
	Status string `json:"status"`
}

// HistoryResponse is the GET /v1/history response body.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// HealthResponse is the GET /healthz response body.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Chunks  int               `json:"chunks"`
	Version string            `json:"version"`
}

func resultsToDTO(results []result.Result) []ScoredResult {
	out := make([]ScoredResult, len(results))
	for i := range results {
		c := results[i].Chunk()
		dto := ScoredResult{
			DocumentID: c.DocumentID(),
			Page:       c.Page(),
			Text:       c.Text(),
			Metadata:   c.Metadata(),
			FusedScore: results[i].FusedScore(),
		}
		if s, ok := results[i].VectorScore(); ok {
			dto.VectorScore = &s
		}
		if s, ok := results[i].KeywordScore(); ok {
			dto.KeywordScore = &s
		}
		out[i] = dto
	}
	return out
}

func chunksFromDTO(items []ChunkUpsert) []chunk.Chunk {
	out := make([]chunk.Chunk, len(items))
	for i, item := range items {
		out[i] = chunk.New(item.DocumentID, item.Page, item.Text, item.Embedding, item.Metadata)
	}
	return out
}
