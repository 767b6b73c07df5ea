package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "state.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateInput(&cfg.Input)...)
	errs = append(errs, validateTranspile(&cfg.Transpile)...)
	errs = append(errs, validateState(&cfg.State)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Output.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "output.dir",
			Message: "output directory is required",
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateInput validates input configuration.
func validateInput(cfg *InputConfig) []FieldError {
	var errs []FieldError

	if cfg.VariablesFile == "" {
		errs = append(errs, FieldError{
			Field:   "input.variables_file",
			Message: "variables file is required",
		})
	}

	for i, pattern := range append(append([]string(nil), cfg.RuleGlobs...), cfg.VerificationGlobs...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("input.globs[%d]", i),
				Message: fmt.Sprintf("invalid glob %q: %v", pattern, err),
			})
		}
	}

	if cfg.Git.Enabled {
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "input.git.repository",
				Message: "git repository is required when git is enabled",
			})
		}
		if cfg.Git.Branch == "" {
			errs = append(errs, FieldError{
				Field:   "input.git.branch",
				Message: "git branch is required when git is enabled",
			})
		}
		if cfg.Git.Clone.Depth < 0 {
			errs = append(errs, FieldError{
				Field:   "input.git.clone.depth",
				Message: "clone depth must be non-negative",
			})
		}

		switch cfg.Git.Auth.Type {
		case "none", "":
		case "token":
			if cfg.Git.Auth.Token == "" {
				errs = append(errs, FieldError{
					Field:   "input.git.auth.token",
					Message: "token is required when auth type is 'token'",
				})
			}
		case "ssh":
			if cfg.Git.Auth.SSHKeyPath == "" {
				errs = append(errs, FieldError{
					Field:   "input.git.auth.ssh_key_path",
					Message: "SSH key path is required when auth type is 'ssh'",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "input.git.auth.type",
				Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'ssh'", cfg.Git.Auth.Type),
			})
		}
	}

	return errs
}

// validateTranspile validates translation settings.
func validateTranspile(cfg *TranspileConfig) []FieldError {
	var errs []FieldError

	if cfg.Application == "" {
		errs = append(errs, FieldError{
			Field:   "transpile.application",
			Message: "application is required",
		})
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, FieldError{
			Field:   "transpile.max_depth",
			Message: "max depth must be positive",
		})
	}
	if cfg.MaxClones < 0 {
		errs = append(errs, FieldError{
			Field:   "transpile.max_clones",
			Message: "max clones must be positive",
		})
	}
	for name, target := range cfg.Functions {
		if target == "" {
			errs = append(errs, FieldError{
				Field:   "transpile.functions." + name,
				Message: "python function name is required",
			})
		}
	}

	return errs
}

// validateState validates state store configuration.
func validateState(cfg *StateConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"file": true, "sqlite": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "state.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'file' or 'sqlite'", cfg.Backend),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "state.path",
			Message: "state path is required",
		})
	}
	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if cfg.Backend == "sqlite" && !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "state.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}

	return errs
}

// validateWatch validates watch configuration.
func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "watch.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
