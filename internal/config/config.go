// Package config loads the core's configuration from defaults, a YAML
// file, and SENTINEL_* environment overrides, in that order of increasing
// precedence — the same three-tier layering the teacher's config package
// uses for its own settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration recognised by the core.
type Config struct {
	ChunkSize           int              `yaml:"chunk_size"`
	ChunkOverlap        int              `yaml:"chunk_overlap"`
	MinChunkSize        int              `yaml:"min_chunk_size"`
	MaxResultsPerSearch int              `yaml:"max_results_per_search"`
	EmbeddingDimension  int              `yaml:"embedding_dimension"`
	PersistDirectory    string           `yaml:"persist_directory"`
	UseExpansion        bool             `yaml:"use_expansion"`
	UseReranking        bool             `yaml:"use_reranking"`
	Embeddings          EmbeddingsConfig `yaml:"embeddings"`
	LogLevel            string           `yaml:"log_level"`
}

// EmbeddingsConfig configures the embedding/reranker model runtime.
type EmbeddingsConfig struct {
	Model       string `yaml:"model"`
	RerankModel string `yaml:"rerank_model"`
	OllamaHost  string `yaml:"ollama_host"`
	BatchSize   int    `yaml:"batch_size"`
}

// NewConfig returns Config populated with the core's documented defaults.
func NewConfig() *Config {
	return &Config{
		ChunkSize:           600,
		ChunkOverlap:        80,
		MinChunkSize:        50,
		MaxResultsPerSearch: 10,
		EmbeddingDimension:  384,
		PersistDirectory:    defaultPersistDirectory(),
		UseExpansion:        true,
		UseReranking:        true,
		Embeddings: EmbeddingsConfig{
			Model:      "qwen3-embedding:0.6b",
			RerankModel: "qwen3-reranker:0.6b",
			OllamaHost: "http://localhost:11434",
			BatchSize:  32,
		},
		LogLevel: "info",
	}
}

func defaultPersistDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sentinel")
	}
	return filepath.Join(home, ".sentinel")
}

// Load builds a Config from defaults, an optional sentinel.yaml in dir, and
// SENTINEL_* environment overrides, then validates the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{"sentinel.yaml", "sentinel.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.loadYAML(path)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges other's non-zero fields into c.
func (c *Config) mergeWith(other *Config) {
	if other.ChunkSize != 0 {
		c.ChunkSize = other.ChunkSize
	}
	if other.ChunkOverlap != 0 {
		c.ChunkOverlap = other.ChunkOverlap
	}
	if other.MinChunkSize != 0 {
		c.MinChunkSize = other.MinChunkSize
	}
	if other.MaxResultsPerSearch != 0 {
		c.MaxResultsPerSearch = other.MaxResultsPerSearch
	}
	if other.EmbeddingDimension != 0 {
		c.EmbeddingDimension = other.EmbeddingDimension
	}
	if other.PersistDirectory != "" {
		c.PersistDirectory = other.PersistDirectory
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.RerankModel != "" {
		c.Embeddings.RerankModel = other.Embeddings.RerankModel
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies SENTINEL_* environment variable overrides, the
// highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SENTINEL_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkSize = n
		}
	}
	if v := os.Getenv("SENTINEL_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkOverlap = n
		}
	}
	if v := os.Getenv("SENTINEL_MAX_RESULTS_PER_SEARCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxResultsPerSearch = n
		}
	}
	if v := os.Getenv("SENTINEL_EMBEDDING_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EmbeddingDimension = n
		}
	}
	if v := os.Getenv("SENTINEL_PERSIST_DIRECTORY"); v != "" {
		c.PersistDirectory = v
	}
	if v := os.Getenv("SENTINEL_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("SENTINEL_EMBEDDING_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("SENTINEL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks every bound the core documents for its configuration.
func (c *Config) Validate() error {
	if c.ChunkSize < 100 || c.ChunkSize > 2000 {
		return fmt.Errorf("chunk_size must be between 100 and 2000, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap > 300 {
		return fmt.Errorf("chunk_overlap must be between 0 and 300, got %d", c.ChunkOverlap)
	}
	if c.MaxResultsPerSearch < 1 || c.MaxResultsPerSearch > 50 {
		return fmt.Errorf("max_results_per_search must be between 1 and 50, got %d", c.MaxResultsPerSearch)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding_dimension must be positive, got %d", c.EmbeddingDimension)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
