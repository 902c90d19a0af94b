package foodrag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/db"
	dbRedis "github.com/kailas-cloud/foodrag/internal/db/redis"
	"github.com/kailas-cloud/foodrag/internal/domain"
	domanswer "github.com/kailas-cloud/foodrag/internal/domain/answer"
	"github.com/kailas-cloud/foodrag/internal/domain/document"
	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	"github.com/kailas-cloud/foodrag/internal/metrics"
	"github.com/kailas-cloud/foodrag/internal/repository/answercache"
	"github.com/kailas-cloud/foodrag/internal/repository/corpus"
	"github.com/kailas-cloud/foodrag/internal/transport/google"
	openaiCompl "github.com/kailas-cloud/foodrag/internal/transport/openai"
	completionuc "github.com/kailas-cloud/foodrag/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/foodrag/internal/usecase/health"
	raguc "github.com/kailas-cloud/foodrag/internal/usecase/rag"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 24 * time.Hour
	sdkProvider             = "sdk"
)

// Internal interfaces, swapped for mocks in tests.
type ragUseCase interface {
	Ask(ctx context.Context, question string) (domanswer.Answer, error)
	Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error)
	Labels() domanswer.Labels
	Status() raguc.Status
}

// Client is the foodrag SDK entry point.
type Client struct {
	store     db.Store
	ragSvc    ragUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. Without corpus options it uses the embedded food corpus.
// The provided context is used for the readiness check of the answer cache.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.webSearch && (len(cfg.corpus) > 0 || cfg.corpusFile != "") {
		return nil, errors.New("foodrag: WithWebSearch cannot be combined with WithCorpus or WithCorpusFile")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	retriever, info, err := buildRetriever(cfg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("foodrag: database not ready: %w", err)
		}
	}

	return wireClient(store, retriever, info, cfg, obs), nil
}

func buildRetriever(cfg *clientConfig) (raguc.Retriever, raguc.CorpusInfo, error) {
	if cfg.webSearch {
		searcher := google.NewSearcher(&google.Config{
			APIKey:   cfg.searchKey,
			EngineID: cfg.searchEngineID,
			BaseURL:  cfg.searchBaseURL,
			Logger:   zap.NewNop(),
		})
		return retrieval.NewWeb(searcher), nil, nil
	}

	store, err := loadCorpus(cfg)
	if err != nil {
		return nil, nil, err
	}
	return retrieval.New(store, retrieval.ScoringTags), store, nil
}

func loadCorpus(cfg *clientConfig) (*corpus.Store, error) {
	if len(cfg.corpus) == 0 {
		s, err := corpus.Load(cfg.corpusFile)
		if err != nil {
			return nil, fmt.Errorf("foodrag: load corpus: %w", err)
		}
		return s, nil
	}

	docs := make([]document.Document, 0, len(cfg.corpus))
	for _, d := range cfg.corpus {
		doc, err := document.New(d.ID, d.Text, d.Region, d.Type)
		if err != nil {
			return nil, fmt.Errorf("foodrag: %w: %w", ErrInvalidCorpus, err)
		}
		docs = append(docs, doc)
	}
	s, err := corpus.New("custom", time.Now().UTC(), docs)
	if err != nil {
		return nil, fmt.Errorf("foodrag: %w", err)
	}
	return s, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Driver:   cfg.driver,
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("foodrag: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("foodrag: unknown driver %q", cfg.driver)
	}
}

func wireClient(
	store db.Store, retriever raguc.Retriever, info raguc.CorpusInfo, cfg *clientConfig, obs *observer,
) *Client {
	base := openaiCompl.NewCompleter(&openaiCompl.Config{
		APIKey:   cfg.completionKey,
		BaseURL:  cfg.completionBaseURL,
		Model:    cfg.model,
		Provider: sdkProvider,
		Logger:   zap.NewNop(),
	})

	var completer domain.Completer = base
	if store != nil {
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		completer = answercache.New(base, store, base.Model(), ttl, metrics.AnswerCacheTotal, zap.NewNop())
	}
	completer = completionuc.NewInstrumentedCompleter(completer, sdkProvider, base.Model(), nil)

	// nil interface, not a typed nil pointer, when no store is configured
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:     store,
		ragSvc:    raguc.New(retriever, completer, info, cfg.topK),
		healthSvc: healthuc.New(pinger, base),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ask answers a food question. An empty question fails with ErrQuestionRequired
// before any retrieval or completion call.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	a, err := c.ragSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	labeled := a.LabeledSources()
	sources := make([]Source, len(labeled))
	for i, s := range labeled {
		sources[i] = sourceFromDomain(s)
	}
	return Answer{Text: a.Text(), Sources: sources}, nil
}

// Retrieve returns the top k passages for query without calling the completion
// provider. k <= 0 uses the configured top-k.
func (c *Client) Retrieve(ctx context.Context, query string, k int) (out []Passage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err) }()

	ps, err := c.ragSvc.Retrieve(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	labels := c.ragSvc.Labels()
	out = make([]Passage, len(ps))
	for i := range ps {
		p := &ps[i]
		src := domanswer.Source{
			ID: p.ID(), Name: p.Name(), Text: p.Text(), URL: p.URL(),
			Region: p.Region(), Type: p.Type(),
		}
		if src.Region == "" {
			src.Region = labels.Region
		}
		if src.Type == "" {
			src.Type = labels.Type
		}
		out[i] = Passage{Source: sourceFromDomain(src), Score: p.Score()}
	}
	return out, nil
}

// Status describes the configured retrieval strategy and corpus.
func (c *Client) Status() Status {
	st := c.ragSvc.Status()
	return Status{
		Message:       st.Message,
		Strategy:      st.Strategy,
		DocumentCount: st.DocumentCount,
		LastUpdated:   st.LastUpdated,
	}
}

func sourceFromDomain(s domanswer.Source) Source {
	return Source{
		ID:     s.ID,
		Name:   s.Name,
		Text:   s.Text,
		URL:    s.URL,
		Region: s.Region,
		Type:   s.Type,
	}
}
