// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the client without
	// a timeout, so only the request context bounds a call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-supervisor/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LLMConfig holds settings for the chat-completion client.
type LLMConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the OpenAI-compatible API root; "/chat/completions" is appended.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the routed model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the Hugging Face router token (HF_TOKEN). An empty key is
	// not fatal: every completion reports the missing credential instead.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Temperature is the sampling temperature (default 0.4).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the response length (default 512).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig holds settings for the scholarly web search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the SerpAPI search URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Engine selects the SerpAPI engine (default "google_scholar").
	Engine string `json:"engine" yaml:"engine" mapstructure:"engine"`

	// APIKey is the SerpAPI key (SERPAPI_KEY).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxResults is the result-count hint sent to the provider and the cap
	// applied to the mapped results (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// CacheConfig holds settings for the research cache database.
type CacheConfig struct {
	// DataDir is the directory holding the database file (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// DBFile is the database file name inside DataDir (default "memory.db").
	DBFile string `json:"db_file" yaml:"db_file" mapstructure:"db_file"`
}

// Path returns the database file location.
func (c CacheConfig) Path() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigins lists the CORS origins (default ["*"]).
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to zap's console-friendly development config.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups the configuration of every component.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	LLM    LLMConfig    `json:"llm" yaml:"llm" mapstructure:"llm"`
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Cache  CacheConfig  `json:"cache" yaml:"cache" mapstructure:"cache"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":5000",
			AllowOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			HTTPConfig:  HTTPConfig{UserAgent: "research-supervisor/0.1"},
			BaseURL:     "https://router.huggingface.co/v1",
			Model:       "meta-llama/Llama-3.1-8B-Instruct:novita",
			Temperature: 0.4,
			MaxTokens:   512,
		},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{UserAgent: "research-supervisor/0.1"},
			Endpoint:   "https://serpapi.com/search",
			Engine:     "google_scholar",
			MaxResults: 5,
		},
		Cache: CacheConfig{
			DataDir: "data",
			DBFile:  "memory.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
