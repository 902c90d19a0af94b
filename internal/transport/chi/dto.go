package chi

import "time"

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeUnauthorized            ErrorCode = "unauthorized"
	CodeNotFound                ErrorCode = "not_found"
	CodeMethodNotAllowed        ErrorCode = "method_not_allowed"
	CodeQuestionRequired        ErrorCode = "question_required"
	CodeInvalidQuery            ErrorCode = "invalid_query"
	CodeNotConfigured           ErrorCode = "not_configured"
	CodeSearchProviderError     ErrorCode = "search_provider_error"
	CodeCompletionProviderError ErrorCode = "completion_provider_error"
	CodeCompletionQuotaExceeded ErrorCode = "completion_quota_exceeded"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response. The page reads Error.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code,omitempty"`
}

// AskRequest is the body of POST /api/rag.
type AskRequest struct {
	Question string `json:"question"`
}

// Source is one cited item in an answer.
type Source struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Text   string `json:"text"`
	Region string `json:"region"`
	Type   string `json:"type"`
	URL    string `json:"url,omitempty"`
}

// AskResponse is the body of a successful POST /api/rag.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// StatusResponse is the body of GET /api/rag.
type StatusResponse struct {
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Strategy      string  `json:"strategy"`
	DocumentCount *int    `json:"documentCount,omitempty"`
	LastUpdated   *string `json:"lastUpdated,omitempty"`
}

// Passage is one scored retrieval hit in a preview.
type Passage struct {
	Source
	Score float64 `json:"score"`
}

// PassagesResponse is the body of GET /api/rag/search.
type PassagesResponse struct {
	Query    string    `json:"query"`
	Strategy string    `json:"strategy"`
	Passages []Passage `json:"passages"`
}

// UsageMetrics is the consumption part of a usage report.
type UsageMetrics struct {
	CompletionRequests int `json:"completion_requests"`
	Tokens             int `json:"tokens"`
}

// BudgetStatus is the budget part of a usage report.
type BudgetStatus struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensUsed      int        `json:"tokens_used"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// UsageResponse is the body of GET /api/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Model         string       `json:"model,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}
