package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// Path existence is checked separately by the pre-flight stage; this only
// validates shape and value domains.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateTarget(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateProcessing(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateTarget() ValidationErrors {
	var errors ValidationErrors

	if c.Target.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "target.url",
			Message: "url is required",
		})
	}

	validProviders := map[string]bool{"local": true, "remote": true, "": true}
	if !validProviders[c.Target.AssetProvider] {
		errors = append(errors, ValidationError{
			Field:   "target.asset_provider",
			Message: "asset_provider must be 'local' or 'remote'",
		})
	}

	if c.Target.AssetProvider == "local" && c.Target.UploadsDir == "" {
		errors = append(errors, ValidationError{
			Field:   "target.uploads_dir",
			Message: "uploads_dir is required when asset_provider is 'local'",
		})
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Processing.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	if c.Processing.RetryCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.retry_count",
			Message: "retry_count cannot be negative",
		})
	}

	if c.Processing.RetryDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.retry_delay",
			Message: "retry_delay cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
