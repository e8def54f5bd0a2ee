package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	domfusion "github.com/studylens/fuserank/internal/domain/fusion"
)

// Config holds the fuserank API configuration.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	Database       DatabaseConfig       `yaml:"database"`
	Embedding      EmbeddingConfig      `yaml:"embedding"`
	Auth           AuthConfig           `yaml:"auth"`
	Index          IndexConfig          `yaml:"index"`
	Fusion         FusionConfig         `yaml:"fusion"`
	Ranking        RankingConfig        `yaml:"ranking"`
	Retrieval      RetrievalConfig      `yaml:"retrieval"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Logging        LoggingConfig        `yaml:"logging"`
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW index build settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// FusionConfig holds the default fusion parameters.
type FusionConfig struct {
	Method      string  `yaml:"method"` // concatenation, weighted_average, dynamic_attention
	TextWeight  float64 `yaml:"text_weight"`
	ImageWeight float64 `yaml:"image_weight"`
	ImageDim    int     `yaml:"image_dim"`
}

// RankingConfig holds aggregation defaults.
type RankingConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// RetrievalConfig holds the collections searched per query and recent-query
// tracking settings.
type RetrievalConfig struct {
	Collections  []string `yaml:"collections"`
	RecentTTLSec int      `yaml:"recent_ttl_sec"`
}

// RecommendationConfig holds recommendation composition settings.
type RecommendationConfig struct {
	PerSourceLimit int `yaml:"per_source_limit"`
	FinalLimit     int `yaml:"final_limit"`
	CacheTTLSec    int `yaml:"cache_ttl_sec"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers   map[string]ProviderConfig   `yaml:"providers"`
	Vectorizers map[string]VectorizerConfig `yaml:"vectorizers"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings. The "text" and "image"
// vectorizers are the ones the fusion pipeline uses.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
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
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Fusion.Method == "" {
		c.Fusion.Method = string(domfusion.WeightedAverage)
	}
	if c.Fusion.TextWeight == 0 && c.Fusion.ImageWeight == 0 {
		c.Fusion.TextWeight = 0.7
		c.Fusion.ImageWeight = 0.3
	}
	if c.Fusion.ImageDim <= 0 {
		c.Fusion.ImageDim = 512
	}
	if c.Ranking.TopK <= 0 {
		c.Ranking.TopK = 10
	}
	if c.Retrieval.RecentTTLSec <= 0 {
		c.Retrieval.RecentTTLSec = 86400
	}
	if c.Recommendation.PerSourceLimit <= 0 {
		c.Recommendation.PerSourceLimit = 20
	}
	if c.Recommendation.FinalLimit <= 0 {
		c.Recommendation.FinalLimit = 10
	}
	if c.Recommendation.CacheTTLSec <= 0 {
		c.Recommendation.CacheTTLSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if err := c.FusionDefaults().Validate(); err != nil {
		return fmt.Errorf("fusion: %w", err)
	}
	if c.Ranking.MinScore < 0 || c.Ranking.MinScore > 1 {
		return fmt.Errorf("ranking.min_score must be in [0, 1], got %g", c.Ranking.MinScore)
	}
	for name, v := range c.Embedding.Vectorizers {
		if v.Provider == "" {
			return fmt.Errorf("embedding.vectorizers.%s.provider is required", name)
		}
		if _, ok := c.Embedding.Providers[v.Provider]; !ok {
			return fmt.Errorf("embedding.vectorizers.%s references unknown provider %q", name, v.Provider)
		}
	}
	return nil
}

// FusionDefaults converts the fusion section into domain config.
func (c *Config) FusionDefaults() domfusion.Config {
	return domfusion.Config{
		Method:      domfusion.Method(c.Fusion.Method),
		TextWeight:  c.Fusion.TextWeight,
		ImageWeight: c.Fusion.ImageWeight,
		ImageDim:    c.Fusion.ImageDim,
	}
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
