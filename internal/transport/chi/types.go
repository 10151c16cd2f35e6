package chi

import "time"

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeNotIndexed    ErrorCode = "not_indexed"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeConfiguration ErrorCode = "invalid_configuration"
	ErrorCodeLoadFailed    ErrorCode = "artifact_load_failed"
	ErrorCodePolicyChannel ErrorCode = "policy_channel_error"
	ErrorCodeQuotaExceeded ErrorCode = "policy_quota_exceeded"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question   string            `json:"question"`
	Background map[string]string `json:"background,omitempty"`
}

// RankedArticle is one scored article.
type RankedArticle struct {
	DocIndex     int     `json:"doc_index"`
	ArticleTitle string  `json:"article_title"`
	Similarity   float64 `json:"similarity"`
}

// AskResponse is the body of a successful POST /v1/ask.
type AskResponse struct {
	Answer   string            `json:"answer"`
	Released bool              `json:"released"`
	Vendor   string            `json:"vendor"`
	Selected RankedArticle     `json:"selected"`
	Criteria map[string]string `json:"criteria"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Query string          `json:"query"`
	Items []RankedArticle `json:"items"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

// ReloadResponse is the body of POST /v1/index/reload.
type ReloadResponse struct {
	Documents     int       `json:"documents"`
	Vocabulary    int       `json:"vocabulary"`
	Fingerprint   string    `json:"fingerprint"`
	FormatVersion uint16    `json:"format_version"`
	BuiltAt       time.Time `json:"built_at"`
	PublishedAt   time.Time `json:"published_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Index   *IndexStatus      `json:"index,omitempty"`
	Version string            `json:"version"`
}

// IndexStatus describes the published index in a health response.
type IndexStatus struct {
	Articles    int    `json:"articles"`
	Vocabulary  int    `json:"vocabulary"`
	Fingerprint string `json:"fingerprint"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Channel       string       `json:"channel"`
	TokensUsed    int64        `json:"tokens_used"`
	Budget        BudgetStatus `json:"budget"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
}

// BudgetStatus is the token budget part of UsageResponse.
// TokensLimit 0 and TokensRemaining -1 mean unlimited.
type BudgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	Utilization     float64    `json:"utilization"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}
