package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks if a configuration is usable
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateDurations(cfg); err != nil {
		return err
	}

	return nil
}

// validateDurations rejects negative timeouts, which yaml happily parses
func validateDurations(cfg *Config) error {
	durations := map[string]*Duration{
		"discovery.timeout": cfg.Discovery.Timeout,
		"build.timeout":     cfg.Build.Timeout,
		"watch.debounce":    cfg.Watch.Debounce,
	}

	for name, d := range durations {
		if d != nil && d.Duration < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d.Duration)
		}
	}

	return nil
}
