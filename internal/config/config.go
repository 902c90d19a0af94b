package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the foodrag server configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Auth       AuthConfig       `yaml:"auth"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Completion CompletionConfig `yaml:"completion"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RetrievalConfig selects and configures the retrieval strategy.
type RetrievalConfig struct {
	Strategy  string          `yaml:"strategy"` // corpus (default), websearch
	TopK      int             `yaml:"top_k"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	WebSearch WebSearchConfig `yaml:"websearch"`
}

// CorpusConfig holds static corpus settings.
type CorpusConfig struct {
	Path    string `yaml:"path"`    // empty = embedded corpus
	Scoring string `yaml:"scoring"` // tags (default), enriched
}

// WebSearchConfig holds Custom Search JSON API settings. Credentials may be empty.
type WebSearchConfig struct {
	APIKey     string `yaml:"api_key"`
	EngineID   string `yaml:"engine_id"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CompletionConfig holds completion provider settings. APIKey may be empty.
type CompletionConfig struct {
	Provider    string       `yaml:"provider"` // groq (default), openai
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Temperature float32      `yaml:"temperature"`
	MaxTokens   int          `yaml:"max_tokens"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// CacheConfig holds answer cache settings. Requires a database.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// DatabaseConfig holds key-value store connection settings. No addrs disables the store.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis (default), valkey
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a key-value store is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it and applies defaults.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Retrieval.Strategy == "" {
		c.Retrieval.Strategy = "corpus"
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 3
	}
	if c.Retrieval.Corpus.Scoring == "" {
		c.Retrieval.Corpus.Scoring = "tags"
	}
	if c.Retrieval.WebSearch.TimeoutSec <= 0 {
		c.Retrieval.WebSearch.TimeoutSec = 10
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = "groq"
	}
	if c.Completion.Temperature == 0 {
		c.Completion.Temperature = 0.7
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 500
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness. Provider credentials are
// not checked here; their absence is reported by the operation that needs them.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Retrieval.Strategy {
	case "corpus", "websearch":
	default:
		return fmt.Errorf("retrieval.strategy must be \"corpus\" or \"websearch\", got %q", c.Retrieval.Strategy)
	}
	if c.Retrieval.TopK > 10 {
		return fmt.Errorf("retrieval.top_k must be at most 10, got %d", c.Retrieval.TopK)
	}
	switch c.Retrieval.Corpus.Scoring {
	case "tags", "enriched":
	default:
		return fmt.Errorf("retrieval.corpus.scoring must be \"tags\" or \"enriched\", got %q", c.Retrieval.Corpus.Scoring)
	}
	switch c.Completion.Provider {
	case "groq", "openai":
	default:
		return fmt.Errorf("completion.provider must be \"groq\" or \"openai\", got %q", c.Completion.Provider)
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("completion.temperature must be between 0 and 2, got %v", c.Completion.Temperature)
	}
	switch c.Completion.Budget.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf(
			"completion.budget.action must be \"warn\" or \"reject\", got %q",
			c.Completion.Budget.Action,
		)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if c.Cache.Enabled && !c.Database.Enabled() {
		return fmt.Errorf("cache.enabled requires database.addrs")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
