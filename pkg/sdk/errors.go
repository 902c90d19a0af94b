package foodrag

import "github.com/kailas-cloud/foodrag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrQuestionRequired        = domain.ErrQuestionRequired
	ErrNotConfigured           = domain.ErrNotConfigured
	ErrSearchProviderError     = domain.ErrSearchProviderError
	ErrCompletionProviderError = domain.ErrCompletionProviderError
	ErrCompletionQuotaExceeded = domain.ErrCompletionQuotaExceeded
	ErrInvalidCorpus           = domain.ErrInvalidCorpus
	ErrInvalidQuery            = domain.ErrInvalidQuery
)

// PublicMessage returns the message an end user should see for err.
func PublicMessage(err error) string {
	return domain.PublicMessage(err)
}
