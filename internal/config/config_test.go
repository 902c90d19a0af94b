package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `completion.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Completion.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"strategy", func(c *Config) { c.Retrieval.Strategy = "vector" }, "retrieval.strategy"},
		{"scoring", func(c *Config) { c.Retrieval.Corpus.Scoring = "both" }, "retrieval.corpus.scoring"},
		{"top_k", func(c *Config) { c.Retrieval.TopK = 11 }, "retrieval.top_k"},
		{"provider", func(c *Config) { c.Completion.Provider = "anthropic" }, "completion.provider"},
		{"temperature", func(c *Config) { c.Completion.Temperature = 3 }, "completion.temperature"},
		{"driver", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"cache without db", func(c *Config) { c.Cache.Enabled = true }, "cache.enabled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error about %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidate_MissingCredentialsAreFine(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.Strategy = "websearch"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("missing credentials must not fail validation: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Retrieval.Strategy != "corpus" {
		t.Errorf("expected Strategy=corpus, got %q", cfg.Retrieval.Strategy)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Corpus.Scoring != "tags" {
		t.Errorf("expected Scoring=tags, got %q", cfg.Retrieval.Corpus.Scoring)
	}
	if cfg.Completion.Provider != "groq" {
		t.Errorf("expected Provider=groq, got %q", cfg.Completion.Provider)
	}
	if cfg.Completion.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %v", cfg.Completion.Temperature)
	}
	if cfg.Completion.MaxTokens != 500 {
		t.Errorf("expected MaxTokens=500, got %d", cfg.Completion.MaxTokens)
	}
	if cfg.Cache.TTLSec != 86400 {
		t.Errorf("expected TTLSec=86400, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Retrieval:  RetrievalConfig{Strategy: "websearch", TopK: 5, Corpus: CorpusConfig{Scoring: "enriched"}},
		Completion: CompletionConfig{Model: "llama-3.3-70b-versatile", MaxTokens: 1000},
		Database:   DatabaseConfig{Driver: "valkey", ReadinessTimeout: 15},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Retrieval.Strategy != "websearch" || cfg.Retrieval.TopK != 5 {
		t.Errorf("retrieval overridden: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.Corpus.Scoring != "enriched" {
		t.Errorf("expected Scoring=enriched, got %q", cfg.Retrieval.Corpus.Scoring)
	}
	if cfg.Completion.MaxTokens != 1000 {
		t.Errorf("expected MaxTokens=1000, got %d", cfg.Completion.MaxTokens)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOODRAG_TEST_SET", "value")

	tests := []struct {
		in, want string
	}{
		{"a: ${FOODRAG_TEST_SET}", "a: value"},
		{"a: ${FOODRAG_TEST_SET:-fallback}", "a: value"},
		{"a: ${FOODRAG_TEST_UNSET:-fallback}", "a: fallback"},
		{"a: ${FOODRAG_TEST_UNSET}", "a: "},
		{"a: [${FOODRAG_TEST_UNSET:-}]", "a: []"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")

	data := []byte(`
http:
  port: 3000
retrieval:
  strategy: websearch
completion:
  api_key: ${GROQ_API_KEY}
database:
  addrs: [${REDIS_ADDR_FOR_TEST_UNSET:-}]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Completion.APIKey != "gsk-test" {
		t.Errorf("expected expanded api key, got %q", cfg.Completion.APIKey)
	}
	if cfg.Retrieval.Strategy != "websearch" {
		t.Errorf("expected websearch, got %q", cfg.Retrieval.Strategy)
	}
	if cfg.Database.Enabled() {
		t.Error("expected database disabled without addrs")
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("RETRIEVAL_STRATEGY", "")
	t.Setenv("CORPUS_SCORING", "")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.HTTP.Port)
	}
	if cfg.Retrieval.Strategy != "corpus" {
		t.Errorf("expected corpus strategy, got %q", cfg.Retrieval.Strategy)
	}
	if cfg.Completion.APIKey != "" {
		t.Errorf("expected empty api key, got %q", cfg.Completion.APIKey)
	}
	if len(cfg.Auth.APIKeys) != 0 {
		t.Errorf("expected auth disabled, got %v", cfg.Auth.APIKeys)
	}
}
