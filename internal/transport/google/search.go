package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/metrics"
)

const (
	providerName = "google"
	displayName  = "Google Search"
	// maxResults is the Custom Search API page size limit.
	maxResults = 10
)

const missingCredentials = "Google Search API credentials are not configured. " +
	"Please set GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_ENGINE_ID environment variables."

// Config holds the Custom Search JSON API settings.
type Config struct {
	APIKey   string
	EngineID string
	// BaseURL overrides the API endpoint (tests, proxies). Empty uses the default.
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Searcher queries the Google Custom Search JSON API.
type Searcher struct {
	svc      *customsearch.Service
	svcErr   error
	apiKey   string
	engineID string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSearcher creates a searcher sharing one API client (and connection pool)
// across calls. Missing credentials and client setup failures are reported per call.
func NewSearcher(cfg *Config) *Searcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Searcher{
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
	if s.apiKey == "" || s.engineID == "" {
		return s
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	s.svc, s.svcErr = customsearch.NewService(context.Background(), opts...)
	if s.svcErr != nil {
		logger.Error("Failed to create custom search client", zap.Error(s.svcErr))
	}
	return s
}

// Search returns up to k results for query. k is clamped to 1..10.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if s.apiKey == "" || s.engineID == "" {
		return nil, domain.NewConfigError(missingCredentials)
	}
	if s.svcErr != nil {
		return nil, fmt.Errorf("create custom search service: %w", s.svcErr)
	}
	k = max(1, min(k, maxResults))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.svc.Cse.List().Q(query).Cx(s.engineID).Num(int64(k)).Context(ctx).Do()
	if err != nil {
		metrics.WebSearchRequestsTotal.WithLabelValues(providerName, "error").Inc()
		s.logger.Debug("Custom search call failed",
			zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, parseAPIError(err)
	}
	metrics.WebSearchRequestsTotal.WithLabelValues(providerName, "success").Inc()

	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if len(results) == k {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

func parseAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(domain.ErrSearchProviderError, displayName, apiErr.Code, apiErr.Message)
	}
	return domain.WrapProviderError(domain.ErrSearchProviderError, displayName, err)
}
