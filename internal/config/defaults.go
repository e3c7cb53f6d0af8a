package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	// Provider selects the model backend: "openai" or "gemini".
	Provider string `json:"provider"`
	// Model is the model identifier passed to the provider.
	Model string `json:"model"`
	// Temperature is the sampling temperature for generation.
	Temperature float64 `json:"temperature"`
	// MaxIterations caps reason/act cycles per analysis run.
	MaxIterations int `json:"max_iterations"`
	// ActConcurrency caps tool executions running in parallel.
	ActConcurrency int `json:"act_concurrency"`
	// LogFile is the path for debug logs. Empty disables file logging.
	LogFile string `json:"log_file"`

	Tools  ToolsConfig  `json:"tools"`
	Report ReportConfig `json:"report"`
	Image  ImageConfig  `json:"image"`
}

type ToolsConfig struct {
	// WebSearchEnabled registers the web search tool with the model.
	WebSearchEnabled bool `json:"web_search_enabled"`
	// SearchMaxResults caps results returned per search call.
	SearchMaxResults int `json:"search_max_results"`
	// SearchTimeoutSeconds bounds a single search HTTP request.
	SearchTimeoutSeconds int `json:"search_timeout_seconds"`
	// SearchMinIntervalMs is the minimum gap between search requests.
	SearchMinIntervalMs int `json:"search_min_interval_ms"`
}

type ReportConfig struct {
	// IncludeToolResults appends raw tool output sections to the report.
	IncludeToolResults bool `json:"include_tool_results"`
}

type ImageConfig struct {
	// MaxBytes rejects image files larger than this before upload.
	MaxBytes int64 `json:"max_bytes"` // Default: 20 * 1024 * 1024 (20MB)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		MaxIterations:  8,
		ActConcurrency: 4,
		LogFile:        "",
		Tools: ToolsConfig{
			WebSearchEnabled:     true,
			SearchMaxResults:     5,
			SearchTimeoutSeconds: 10,
			SearchMinIntervalMs:  1000,
		},
		Report: ReportConfig{
			IncludeToolResults: false,
		},
		Image: ImageConfig{
			MaxBytes: 20 * 1024 * 1024,
		},
	}
}
