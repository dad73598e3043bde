package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for docchat.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxUploadSizeMB int64  `yaml:"max_upload_size_mb"`
}

// ChunkConfig holds text segmentation configuration.
type ChunkConfig struct {
	Size    int `yaml:"size"`    // target chunk size in characters
	Overlap int `yaml:"overlap"` // characters carried across boundaries
}

// RetrieveConfig holds context assembly configuration.
type RetrieveConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// EmbeddingConfig holds embedding provider configuration. Provider "" or
// "none" disables embeddings; the system then always uses flat retrieval.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "google", "ollama", "mock", ""
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
}

// ChatConfig holds chat completion configuration.
type ChatConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// StorageConfig holds durable storage configuration. An empty path means
// cache-only mode: documents live only in process memory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadSizeMB: 10,
		},
		Chunk: ChunkConfig{
			Size:    600,
			Overlap: 100,
		},
		Retrieve: RetrieveConfig{
			TopK:            12,
			MaxContextChars: 6000,
		},
		Embedding: EmbeddingConfig{
			Provider:  "",
			Model:     "text-embedding-004",
			APIKeyEnv: "GOOGLE_GENERATIVE_AI_API_KEY",
			BatchSize: 100,
		},
		Chat: ChatConfig{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Storage: StorageConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Verbose: false,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for docchat.yaml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadSizeMB << 20
}
