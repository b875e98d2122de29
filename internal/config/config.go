// Package config loads and validates the application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the top-level application configuration.
type Config struct {
	DataDir   string          `json:"data_dir,omitempty"`
	Sources   SourcesConfig   `json:"sources,omitempty"`
	Vector    VectorConfig    `json:"vector,omitempty"`
	Embedding EmbeddingConfig `json:"embedding,omitempty"`
	Chunking  ChunkingConfig  `json:"chunking,omitempty"`
	Retrieval RetrievalConfig `json:"retrieval,omitempty"`
	AI        AIConfig        `json:"ai"`
}

// SourcesConfig points at the document-source manifest and its sync cadence.
type SourcesConfig struct {
	ManifestPath string `json:"manifest_path,omitempty"`
	Schedule     string `json:"schedule,omitempty"` // cron expression, default "@every 72h"
}

// VectorConfig holds vector store settings.
type VectorConfig struct {
	Dir        string `json:"dir,omitempty"`        // directory for index files (derived from data_dir if empty)
	Collection string `json:"collection,omitempty"` // default "legal_documents"
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider string       `json:"provider,omitempty"` // "hash" (default) or "openai"
	Dims     int          `json:"dims,omitempty"`
	OpenAI   OpenAIConfig `json:"openai,omitempty"`
}

// OpenAIConfig holds OpenAI embedding credentials.
type OpenAIConfig struct {
	APIKey string `json:"api_key,omitempty"` // supports ${ENV_VAR} expansion
	Model  string `json:"model,omitempty"`
}

// ChunkingConfig tunes the sentence chunker.
type ChunkingConfig struct {
	MinSize      int     `json:"min_size,omitempty"`
	MaxSize      int     `json:"max_size,omitempty"`
	OverlapRatio float64 `json:"overlap_ratio,omitempty"`
}

// RetrievalConfig tunes the retrieve and augment steps.
type RetrievalConfig struct {
	TopK             int     `json:"top_k,omitempty"`
	ScoreThreshold   float64 `json:"score_threshold,omitempty"`
	MaxContextLength int     `json:"max_context_length,omitempty"`
}

// AIConfig holds the chat provider settings.
type AIConfig struct {
	Provider string `json:"provider,omitempty"` // "gemini" (default) or "mock"
	APIKey   string `json:"api_key,omitempty"`  // supports ${ENV_VAR} expansion
	Model    string `json:"model,omitempty"`
}

// Default returns a configuration with working defaults. The AI API key is
// left to the GEMINI_API_KEY environment variable.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Sources: SourcesConfig{
			ManifestPath: "sources.yaml",
			Schedule:     "@every 72h",
		},
		Vector: VectorConfig{
			Collection: "legal_documents",
		},
		Embedding: EmbeddingConfig{
			Provider: "hash",
			Dims:     384,
		},
		Chunking: ChunkingConfig{
			MinSize:      200,
			MaxSize:      500,
			OverlapRatio: 0.1,
		},
		Retrieval: RetrievalConfig{
			TopK:             3,
			ScoreThreshold:   0.3,
			MaxContextLength: 2000,
		},
		AI: AIConfig{
			Provider: "gemini",
			APIKey:   "${GEMINI_API_KEY}",
			Model:    "gemini-2.0-flash",
		},
	}
}

// Load reads a config file, creating a default one when the path does not
// exist yet. Environment variables in secret fields are expanded after
// parsing.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		fmt.Printf("Created default configuration at %s\n", path)
		cfg.expandEnvVars()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// VectorDir resolves the index directory, falling back to <data_dir>/vector.
func (c *Config) VectorDir() string {
	if c.Vector.Dir != "" {
		return c.Vector.Dir
	}
	return filepath.Join(c.DataDir, "vector")
}

// SessionsDBPath is the sqlite file holding chat sessions.
func (c *Config) SessionsDBPath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// SyncStatePath is the JSON file tracking ingested source hashes.
func (c *Config) SyncStatePath() string {
	return filepath.Join(c.DataDir, "sync-state.json")
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Sources.Schedule == "" {
		c.Sources.Schedule = def.Sources.Schedule
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = def.Vector.Collection
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Chunking.MinSize == 0 {
		c.Chunking.MinSize = def.Chunking.MinSize
	}
	if c.Chunking.MaxSize == 0 {
		c.Chunking.MaxSize = def.Chunking.MaxSize
	}
	if c.Chunking.OverlapRatio == 0 {
		c.Chunking.OverlapRatio = def.Chunking.OverlapRatio
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = def.Retrieval.TopK
	}
	if c.Retrieval.ScoreThreshold == 0 {
		c.Retrieval.ScoreThreshold = def.Retrieval.ScoreThreshold
	}
	if c.Retrieval.MaxContextLength == 0 {
		c.Retrieval.MaxContextLength = def.Retrieval.MaxContextLength
	}
	if c.AI.Provider == "" {
		c.AI.Provider = def.AI.Provider
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = def.AI.APIKey
	}
}

// expandEnvVars expands ${ENV_VAR} placeholders in secret fields.
func (c *Config) expandEnvVars() {
	c.DataDir = os.ExpandEnv(c.DataDir)
	c.AI.APIKey = os.ExpandEnv(c.AI.APIKey)
	c.Embedding.OpenAI.APIKey = os.ExpandEnv(c.Embedding.OpenAI.APIKey)
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "hash", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	switch c.AI.Provider {
	case "gemini", "mock":
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	if c.Chunking.MaxSize < c.Chunking.MinSize {
		return fmt.Errorf("chunking max_size %d is smaller than min_size %d",
			c.Chunking.MaxSize, c.Chunking.MinSize)
	}
	if c.Chunking.OverlapRatio < 0 || c.Chunking.OverlapRatio >= 1 {
		return fmt.Errorf("chunking overlap_ratio %v must be in [0, 1)", c.Chunking.OverlapRatio)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive")
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("retrieval score_threshold %v must be in [0, 1]", c.Retrieval.ScoreThreshold)
	}
	if strings.TrimSpace(c.Vector.Collection) == "" {
		return fmt.Errorf("vector collection must not be empty")
	}
	return nil
}
