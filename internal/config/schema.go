package config

import "github.com/biaslens/biaslens/internal/inference"

// Config holds biaslens configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer" yaml:"analyzer"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text", "json"
}

// AnalyzerConfig holds analysis defaults. Per-request values override the
// threshold; mode selects which backend /analyze uses.
type AnalyzerConfig struct {
	Mode                string  `mapstructure:"mode" yaml:"mode"` // "classifier", "generative"
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	Workers             int     `mapstructure:"workers" yaml:"workers"`
}

// ClassifierConfig holds classifier sidecar container configuration.
type ClassifierConfig struct {
	// Managed controls whether the server starts and stops the sidecar
	// container itself. When false, URL must point at a running instance.
	Managed       bool   `mapstructure:"managed" yaml:"managed"`
	Image         string `mapstructure:"image" yaml:"image"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Port          string `mapstructure:"port" yaml:"port"`
	ModelPath     string `mapstructure:"model_path" yaml:"model_path"`
	URL           string `mapstructure:"url" yaml:"url"`
}

// LLMConfig configures the generative backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // "openrouter", "openai"
	Model    string `mapstructure:"model" yaml:"model"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Analyzer: AnalyzerConfig{
			Mode:                "classifier",
			ConfidenceThreshold: 0.5,
			Workers:             4,
		},
		Classifier: ClassifierConfig{
			Managed:       true,
			Image:         inference.DefaultImage,
			ContainerName: inference.DefaultContainerName,
			Port:          inference.DefaultPort,
		},
		LLM: LLMConfig{
			Provider: "openrouter",
			Model:    "anthropic/claude-sonnet-4",
			APIKey:   "${OPENROUTER_API_KEY}",
		},
		Store: StoreConfig{},
	}
}
