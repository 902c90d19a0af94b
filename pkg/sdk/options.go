package foodrag

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpus     []Document
	corpusFile string

	webSearch      bool
	searchKey      string
	searchEngineID string
	searchBaseURL  string

	completionKey     string
	completionBaseURL string
	model             string
	topK              int

	driver   string // "valkey" or "redis"
	addrs    []string
	password string
	cacheTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpus replaces the embedded food corpus with the given documents.
func WithCorpus(docs ...Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpus = append(c.corpus, docs...)
	})
}

// WithCorpusFile loads the corpus from a JSON file ({version, updated, documents}).
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusFile = path
	})
}

// WithWebSearch retrieves passages from the Custom Search JSON API instead of a corpus.
// Empty credentials are accepted; Ask then fails with ErrNotConfigured.
func WithWebSearch(apiKey, engineID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.webSearch = true
		c.searchKey = apiKey
		c.searchEngineID = engineID
	})
}

// WithWebSearchEndpoint overrides the search API base URL (tests, proxies).
func WithWebSearchEndpoint(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchBaseURL = baseURL
	})
}

// WithCompletion sets the OpenAI-compatible completion credentials.
// An empty baseURL means Groq.
func WithCompletion(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.completionKey = apiKey
		c.completionBaseURL = baseURL
	})
}

// WithModel sets the chat completion model.
// Default: llama-3.1-8b-instant.
func WithModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
	})
}

// WithTopK sets how many passages ground an answer.
// Default: 3.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithValkey caches answers in a Valkey instance.
func WithValkey(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
		c.cacheTTL = ttl
	})
}

// WithRedis caches answers in a Redis instance.
func WithRedis(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
