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

// Config holds the docdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
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

// DatabaseConfig holds the optional Redis connection for search history.
// When addrs is empty, history persistence is disabled.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HistorySize      int      `yaml:"history_size"`
}

// SearchConfig holds rank fusion and pagination settings.
// Fusion weighting is configuration, not a hidden constant: vector_weight and
// keyword_weight must sum to 1 and default to 0.5/0.5.
type SearchConfig struct {
	VectorWeight     float64 `yaml:"vector_weight"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	Normalization    string  `yaml:"normalization"` // minmax, none (default: minmax)
	DefaultThreshold float64 `yaml:"default_threshold"`
	DefaultTopN      int     `yaml:"default_top_n"`
}

// CacheConfig holds search cache eviction settings.
// Eviction bounds memory only; correctness comes from version-keyed fingerprints.
type CacheConfig struct {
	TTLSec     int `yaml:"ttl_sec"`
	MaxEntries int `yaml:"max_entries"`
}

// ScoringConfig holds the scoring worker pool settings.
type ScoringConfig struct {
	PoolSize int `yaml:"pool_size"` // 0 = runtime.NumCPU()
}

// EmbeddingConfig holds the optional query-embedding provider used by the
// server to vectorize text-only requests. Library callers supply embeddings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.HistorySize <= 0 {
		c.Database.HistorySize = 100
	}
	if c.Search.VectorWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.VectorWeight = 0.5
		c.Search.KeywordWeight = 0.5
	}
	if c.Search.Normalization == "" {
		c.Search.Normalization = "minmax"
	}
	if c.Search.DefaultTopN <= 0 {
		c.Search.DefaultTopN = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 900
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1024
	}
	if c.Scoring.PoolSize <= 0 {
		c.Scoring.PoolSize = runtime.NumCPU()
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.VectorWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	if sum := c.Search.VectorWeight + c.Search.KeywordWeight; !closeTo(sum, 1) {
		return fmt.Errorf("search.vector_weight + search.keyword_weight must equal 1, got %g", sum)
	}
	switch c.Search.Normalization {
	case "minmax", "none":
		// ok
	default:
		return fmt.Errorf(
			"search.normalization must be \"minmax\" or \"none\", got %q",
			c.Search.Normalization,
		)
	}
	if c.Search.DefaultThreshold < -1 || c.Search.DefaultThreshold > 1 {
		return fmt.Errorf("search.default_threshold must be between -1 and 1, got %g", c.Search.DefaultThreshold)
	}
	return nil
}

func closeTo(a, b float64) bool {
	const eps = 1e-9
	return a-b < eps && b-a < eps
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
