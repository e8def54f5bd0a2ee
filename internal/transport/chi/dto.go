package chi

// Wire DTOs for the hand-rolled JSON API.

// errorCode enumerates machine-readable API error codes.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeItemNotFound     errorCode = "item_not_found"
	codeNotFound         errorCode = "not_found"
	codeDimMismatch      errorCode = "dimension_mismatch"
	codeInvalidVector    errorCode = "invalid_vector"
	codeRateLimited      errorCode = "rate_limited"
	codeProviderError    errorCode = "embedding_provider_error"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type fuseRequest struct {
	Text        []float32   `json:"text"`
	Images      [][]float32 `json:"images,omitempty"`
	Method      string      `json:"method,omitempty"`
	TextWeight  *float64    `json:"text_weight,omitempty"`
	ImageWeight *float64    `json:"image_weight,omitempty"`
}

type fuseResponse struct {
	Hybrid  []float32 `json:"hybrid"`
	Text    []float32 `json:"text"`
	Image   []float32 `json:"image"`
	Method  string    `json:"method"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

type similarityRequest struct {
	A      []float32 `json:"a"`
	B      []float32 `json:"b"`
	Metric string    `json:"metric,omitempty"`
}

type similarityResponse struct {
	Score  float64 `json:"score"`
	Metric string  `json:"metric"`
}

type searchRequest struct {
	UserID   string   `json:"user_id,omitempty"`
	Query    string   `json:"query"`
	Images   []string `json:"images,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
	MinScore float64  `json:"min_score,omitempty"`
}

type rankedItem struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	Source     string             `json:"source"`
	Similarity float64            `json:"similarity"`
	Tags       map[string]string  `json:"tags,omitempty"`
	Numerics   map[string]float64 `json:"numerics,omitempty"`
}

type searchResponse struct {
	Results    []rankedItem `json:"results"`
	Confidence float64      `json:"confidence"`
	Total      int          `json:"total"`
}

type ingestRequest struct {
	Content  string             `json:"content"`
	Images   []string           `json:"images,omitempty"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

type itemResponse struct {
	ID       string             `json:"id"`
	Content  string             `json:"content"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

type collectionResponse struct {
	Collection string `json:"collection"`
	ItemCount  int    `json:"item_count"`
}

type recommendationsResponse struct {
	UserID string       `json:"user_id"`
	Items  []rankedItem `json:"items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
