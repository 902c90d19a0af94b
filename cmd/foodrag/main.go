package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/config"
	"github.com/kailas-cloud/foodrag/internal/db"
	dbRedis "github.com/kailas-cloud/foodrag/internal/db/redis"
	"github.com/kailas-cloud/foodrag/internal/domain"
	logpkg "github.com/kailas-cloud/foodrag/internal/logger"
	"github.com/kailas-cloud/foodrag/internal/metrics"
	"github.com/kailas-cloud/foodrag/internal/repository/answercache"
	budgetrepo "github.com/kailas-cloud/foodrag/internal/repository/budget"
	"github.com/kailas-cloud/foodrag/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/foodrag/internal/transport/chi"
	"github.com/kailas-cloud/foodrag/internal/transport/google"
	openaiCompl "github.com/kailas-cloud/foodrag/internal/transport/openai"
	completionuc "github.com/kailas-cloud/foodrag/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/foodrag/internal/usecase/health"
	raguc "github.com/kailas-cloud/foodrag/internal/usecase/rag"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/foodrag/internal/usecase/usage"
	"github.com/kailas-cloud/foodrag/internal/version"
)

// providerInfo names a completion provider in client-visible errors.
type providerInfo struct {
	displayName string
	keyEnv      string
	baseURL     string
}

var providers = map[string]providerInfo{
	"groq":   {displayName: "Groq", keyEnv: "GROQ_API_KEY", baseURL: openaiCompl.DefaultBaseURL},
	"openai": {displayName: "OpenAI", keyEnv: "OPENAI_API_KEY", baseURL: "https://api.openai.com/v1"},
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting foodrag server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("strategy", cfg.Retrieval.Strategy),
		zap.String("completion_provider", cfg.Completion.Provider),
		zap.Bool("database", cfg.Database.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterRetrievalMetrics()

	ctx := context.Background()

	store, closeStore := openStore(ctx, cfg.Database, logger)
	defer closeStore()

	retriever, corpusInfo := buildRetriever(cfg.Retrieval, logger)

	base := newBaseCompleter(cfg.Completion, logger)
	budget := buildBudget(ctx, cfg.Completion, store, logger)

	// Pass nil interfaces (not typed nil pointers) when budget is not configured.
	var budgetChecker completionuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	completer := buildCompleter(base, cfg, store, budgetChecker, logger)

	ragSvc := raguc.New(retriever, completer, corpusInfo, cfg.Retrieval.TopK)
	usageSvc := usageuc.New(budgetReader, base.Model())

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, base)

	server := chiTransport.NewServer(ragSvc, usageSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects the optional key-value store. Without addrs it returns nil.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, func()) {
	if !cfg.Enabled() {
		logger.Info("No database configured, answer cache and budget persistence disabled")
		return nil, func() {}
	}

	s, err := dbRedis.NewStore(dbRedis.Config{
		Driver:   cfg.Driver,
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.String("driver", cfg.Driver), zap.Error(err))
	}

	if err := s.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		s.Close()
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("driver", s.Driver()), zap.Strings("addrs", cfg.Addrs))

	return s, s.Close
}

// buildRetriever selects the retrieval strategy. corpusInfo is nil for web search.
func buildRetriever(cfg config.RetrievalConfig, logger *zap.Logger) (raguc.Retriever, raguc.CorpusInfo) {
	if cfg.Strategy == retrieval.StrategyWebSearch {
		searcher := google.NewSearcher(&google.Config{
			APIKey:   cfg.WebSearch.APIKey,
			EngineID: cfg.WebSearch.EngineID,
			BaseURL:  cfg.WebSearch.BaseURL,
			Timeout:  time.Duration(cfg.WebSearch.TimeoutSec) * time.Second,
			Logger:   logger,
		})
		logger.Info("Using web search retrieval")
		return retrieval.NewWeb(searcher), nil
	}

	docs, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.String("path", cfg.Corpus.Path), zap.Error(err))
	}
	logger.Info("Corpus loaded",
		zap.Int("documents", docs.Count()),
		zap.String("version", docs.Version()),
		zap.String("scoring", cfg.Corpus.Scoring),
	)
	return retrieval.New(docs, retrieval.Scoring(cfg.Corpus.Scoring)), docs
}

func newBaseCompleter(cfg config.CompletionConfig, logger *zap.Logger) *openaiCompl.Completer {
	info := providers[cfg.Provider]
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = info.baseURL
	}
	return openaiCompl.NewCompleter(&openaiCompl.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		Provider:    cfg.Provider,
		DisplayName: info.displayName,
		KeyEnv:      info.keyEnv,
		Logger:      logger,
	})
}

// buildBudget returns nil when no limit is configured.
func buildBudget(
	ctx context.Context, cfg config.CompletionConfig, store db.Store, logger *zap.Logger,
) *completionuc.BudgetTracker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}

	action := completionuc.BudgetActionWarn
	if b.Action == "reject" {
		action = completionuc.BudgetActionReject
	}
	tracker := completionuc.NewBudgetTracker(cfg.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
	if store != nil {
		tracker.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	logger.Info("Completion budget enabled",
		zap.Int64("daily_limit", b.DailyTokenLimit),
		zap.Int64("monthly_limit", b.MonthlyTokenLimit),
		zap.String("action", string(action)),
	)
	return tracker
}

// buildCompleter assembles the decorator chain: OpenAI-compatible -> Cached -> Instrumented.
func buildCompleter(
	base *openaiCompl.Completer,
	cfg config.Config,
	store db.Store,
	budget completionuc.BudgetChecker,
	logger *zap.Logger,
) domain.Completer {
	var completer domain.Completer = base

	if cfg.Cache.Enabled && store != nil {
		completer = answercache.New(
			base, store, base.Model(),
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.AnswerCacheTotal, logger,
		)
		logger.Info("Answer cache enabled", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}

	return completionuc.NewInstrumentedCompleter(completer, cfg.Completion.Provider, base.Model(), budget)
}
