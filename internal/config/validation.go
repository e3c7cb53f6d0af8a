package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	switch c.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, `provider must be "openai" or "gemini"`)
	}
	if c.Model == "" {
		errs = append(errs, "model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, "temperature must be between 0 and 2")
	}
	if c.MaxIterations < 1 {
		errs = append(errs, "max_iterations must be >= 1")
	}
	if c.ActConcurrency < 1 {
		errs = append(errs, "act_concurrency must be >= 1")
	}

	// Tools validation
	if c.Tools.SearchMaxResults < 1 {
		errs = append(errs, "tools.search_max_results must be >= 1")
	}
	if c.Tools.SearchTimeoutSeconds < 1 {
		errs = append(errs, "tools.search_timeout_seconds must be >= 1")
	}
	if c.Tools.SearchMinIntervalMs < 0 {
		errs = append(errs, "tools.search_min_interval_ms must be >= 0")
	}

	// Image validation
	if c.Image.MaxBytes < 1 {
		errs = append(errs, "image.max_bytes must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
