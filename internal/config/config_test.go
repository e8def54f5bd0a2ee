package config

import (
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_FusionWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Fusion.TextWeight = 0.8
	cfg.Fusion.ImageWeight = 0.8

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestValidate_UnknownFusionMethod(t *testing.T) {
	cfg := validConfig()
	cfg.Fusion.Method = "averaging"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown fusion method")
	}
}

func TestValidate_MinScoreRange(t *testing.T) {
	cfg := validConfig()
	cfg.Ranking.MinScore = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min_score outside [0, 1]")
	}
}

func TestValidate_VectorizerProviderReference(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding = EmbeddingConfig{
		Providers: map[string]ProviderConfig{
			"nebius": {APIKey: "test-key"},
		},
		Vectorizers: map[string]VectorizerConfig{
			"text": {Provider: "openai", Model: "text-embedding-3-small"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for vectorizer referencing unknown provider")
	}

	expected := `embedding.vectorizers.text references unknown provider "openai"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Fusion.Method != "weighted_average" {
		t.Errorf("expected Method=weighted_average, got %q", cfg.Fusion.Method)
	}
	if cfg.Fusion.TextWeight != 0.7 || cfg.Fusion.ImageWeight != 0.3 {
		t.Errorf("expected weights 0.7/0.3, got %g/%g", cfg.Fusion.TextWeight, cfg.Fusion.ImageWeight)
	}
	if cfg.Fusion.ImageDim != 512 {
		t.Errorf("expected ImageDim=512, got %d", cfg.Fusion.ImageDim)
	}
	if cfg.Ranking.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Ranking.TopK)
	}
	if cfg.Retrieval.RecentTTLSec != 86400 {
		t.Errorf("expected RecentTTLSec=86400, got %d", cfg.Retrieval.RecentTTLSec)
	}
	if cfg.Recommendation.PerSourceLimit != 20 {
		t.Errorf("expected PerSourceLimit=20, got %d", cfg.Recommendation.PerSourceLimit)
	}
	if cfg.Recommendation.FinalLimit != 10 {
		t.Errorf("expected FinalLimit=10, got %d", cfg.Recommendation.FinalLimit)
	}
	if cfg.Recommendation.CacheTTLSec != 300 {
		t.Errorf("expected CacheTTLSec=300, got %d", cfg.Recommendation.CacheTTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Index:    IndexConfig{HNSWM: 16, HNSWEFConstruct: 200},
		Fusion:   FusionConfig{Method: "concatenation", TextWeight: 0.5, ImageWeight: 0.5, ImageDim: 768},
		Ranking:  RankingConfig{TopK: 25},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Fusion.Method != "concatenation" {
		t.Errorf("expected Method=concatenation, got %q", cfg.Fusion.Method)
	}
	if cfg.Fusion.TextWeight != 0.5 {
		t.Errorf("expected TextWeight=0.5, got %g", cfg.Fusion.TextWeight)
	}
	if cfg.Ranking.TopK != 25 {
		t.Errorf("expected TopK=25, got %d", cfg.Ranking.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FUSERANK_TEST_KEY", "secret")

	in := []byte("api_key: ${FUSERANK_TEST_KEY}\nurl: ${FUSERANK_TEST_URL:-http://localhost}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nurl: http://localhost\n" {
		t.Errorf("unexpected expansion:\n%s", out)
	}
}
