package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// WebSourceConfig describes an HTML search page scraped by the web backend.
// The selectors are CSS selectors evaluated with goquery.
type WebSourceConfig struct {
	// URLTemplate is the search URL; "{query}" is replaced by the escaped query.
	URLTemplate string `json:"url_template" yaml:"url_template" mapstructure:"url_template"`

	// ResultSelector selects one element per result card.
	ResultSelector string `json:"result_selector" yaml:"result_selector" mapstructure:"result_selector"`

	// LinkSelector selects the anchor inside a card that carries the result URL (optional).
	LinkSelector string `json:"link_selector,omitempty" yaml:"link_selector,omitempty" mapstructure:"link_selector"`

	// MinCardLength skips cards whose text is shorter than this (default 10).
	MinCardLength int `json:"min_card_length" yaml:"min_card_length" mapstructure:"min_card_length"`
}

// SearchConfig holds settings for the reference search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the maximum number of references kept (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv" mapstructure:"enable_arxiv"`

	// EnableOpenAlex controls whether the OpenAlex backend is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex" mapstructure:"enable_openalex"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`

	// Web configures the HTML scraping backend; it is disabled when URLTemplate is empty.
	Web WebSourceConfig `json:"web" yaml:"web" mapstructure:"web"`

	// QuerySuffix lists extra terms appended to every generated query.
	QuerySuffix []string `json:"query_suffix,omitempty" yaml:"query_suffix,omitempty" mapstructure:"query_suffix"`

	// InterBackendDelay is the delay between starting consecutive backends.
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay" mapstructure:"inter_backend_delay"`

	// RecencyBiasWindow is the time window for boosting recent references (0 disables).
	RecencyBiasWindow time.Duration `json:"recency_bias_window" yaml:"recency_bias_window" mapstructure:"recency_bias_window"`

	// CacheSize is the number of queries kept in the in-process cache (default 100).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`

	// ReferencesFile is where the reference listing for the prompt is written.
	ReferencesFile string `json:"references_file" yaml:"references_file" mapstructure:"references_file"`
}

// AIConfig holds settings for the OpenAI-compatible chat completion service.
type AIConfig struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryDelay is the base backoff delay between attempts (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`

	// Timeout bounds a single completion request (default 5m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens caps the completion length (0 uses the server default).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Stream requests a streamed completion and concatenates the deltas.
	Stream bool `json:"stream" yaml:"stream" mapstructure:"stream"`
}

// GenerationConfig holds settings for the paper generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// MaxWorkers bounds concurrent inputs in batch mode (default 4).
	MaxWorkers int `json:"max_workers" yaml:"max_workers" mapstructure:"max_workers"`

	// OutputDir overrides where papers are written; empty writes next to the input.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" mapstructure:"output_dir"`
}

// ProfileOverrides extends or replaces the built-in phrase lists of one
// language profile. Patterns are regular expressions; phrases are literal.
type ProfileOverrides struct {
	// Disclaimers are extra AI-disclaimer patterns.
	Disclaimers []string `json:"disclaimers,omitempty" yaml:"disclaimers,omitempty" mapstructure:"disclaimers"`

	// Transitions are extra transition patterns (English) or phrases (Chinese).
	Transitions []string `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`

	// Headers replaces the section header list when non-empty.
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
}

// FormatConfig holds settings for the text formatter.
type FormatConfig struct {
	// StrictHeaderCollapse only treats standalone header lines as duplicate
	// references sections (default true).
	StrictHeaderCollapse bool `json:"strict_header_collapse" yaml:"strict_header_collapse" mapstructure:"strict_header_collapse"`

	English ProfileOverrides `json:"english" yaml:"english" mapstructure:"english"`
	Chinese ProfileOverrides `json:"chinese" yaml:"chinese" mapstructure:"chinese"`
}

// Overrides returns the profile overrides configured for lang.
func (c FormatConfig) Overrides(lang Language) ProfileOverrides {
	if lang == Chinese {
		return c.Chinese
	}
	return c.English
}

// StoreConfig holds settings for the generation history database.
type StoreConfig struct {
	// Dir is the directory holding paper-engine.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Disabled turns history and the persistent search cache off.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`

	// SearchCacheTTL is how long stored search results are reused (default 24h).
	SearchCacheTTL time.Duration `json:"search_cache_ttl" yaml:"search_cache_ttl" mapstructure:"search_cache_ttl"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	LogLevel   string           `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Format     FormatConfig     `json:"format" yaml:"format" mapstructure:"format"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment value overrides a setting.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LogLevel: "info",
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "paper-engine/0.1",
				MaxRetries: 3,
			},
			MaxResults:        20,
			EnableArxiv:       true,
			EnableOpenAlex:    true,
			Web:               WebSourceConfig{MinCardLength: 10},
			InterBackendDelay: time.Second,
			CacheSize:         100,
			ReferencesFile:    "output/references.txt",
		},
		Generation: GenerationConfig{
			AIConfig: AIConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				MaxRetries:  3,
				RetryDelay:  time.Second,
				Timeout:     5 * time.Minute,
				Temperature: 0.7,
				Stream:      true,
			},
			MaxWorkers: 4,
		},
		Format: FormatConfig{
			StrictHeaderCollapse: true,
		},
		Store: StoreConfig{
			Dir:            "data",
			SearchCacheTTL: 24 * time.Hour,
		},
	}
}

// Validate checks the settings every command depends on. Generation-only
// requirements such as the API key are checked by ValidateGeneration.
func (c PipelineConfig) Validate() error {
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %v", c.Search.Timeout)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be at least 1, got %d", c.Search.MaxResults)
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("search.max_retries must not be negative, got %d", c.Search.MaxRetries)
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must not be negative, got %d", c.Generation.MaxRetries)
	}
	if c.Generation.MaxWorkers < 1 {
		return fmt.Errorf("generation.max_workers must be at least 1, got %d", c.Generation.MaxWorkers)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive, got %v", c.Generation.Timeout)
	}
	return nil
}

// ValidateGeneration checks Validate plus the settings needed to call the model.
func (c PipelineConfig) ValidateGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required: set it in the config file, OPENAI_API_KEY, or .secrets/openai-api-key")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	return nil
}
