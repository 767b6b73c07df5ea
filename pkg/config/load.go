package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention MTRANSPILE_SECTION_FIELD (e.g., MTRANSPILE_OUTPUT_DIR).
// An empty path starts from the defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format MTRANSPILE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Input overrides
	envString("MTRANSPILE_INPUT_DIR", &cfg.Input.Dir)
	envString("MTRANSPILE_INPUT_VARIABLES_FILE", &cfg.Input.VariablesFile)
	envString("MTRANSPILE_INPUT_CONSTANTS_FILE", &cfg.Input.ConstantsFile)
	envString("MTRANSPILE_INPUT_DEPENDENCIES_FILE", &cfg.Input.DependenciesFile)
	envBool("MTRANSPILE_INPUT_GIT_ENABLED", &cfg.Input.Git.Enabled)
	envString("MTRANSPILE_INPUT_GIT_REPOSITORY", &cfg.Input.Git.Repository)
	envString("MTRANSPILE_INPUT_GIT_BRANCH", &cfg.Input.Git.Branch)
	envString("MTRANSPILE_INPUT_GIT_PATH", &cfg.Input.Git.Path)
	envString("MTRANSPILE_INPUT_GIT_AUTH_TYPE", &cfg.Input.Git.Auth.Type)
	envString("MTRANSPILE_INPUT_GIT_AUTH_TOKEN", &cfg.Input.Git.Auth.Token)

	// Output overrides
	envString("MTRANSPILE_OUTPUT_DIR", &cfg.Output.Dir)

	// Transpile overrides
	envString("MTRANSPILE_TRANSPILE_APPLICATION", &cfg.Transpile.Application)
	envInt("MTRANSPILE_TRANSPILE_MAX_DEPTH", &cfg.Transpile.MaxDepth)
	envInt("MTRANSPILE_TRANSPILE_MAX_CLONES", &cfg.Transpile.MaxClones)
	envBool("MTRANSPILE_TRANSPILE_STRICT", &cfg.Transpile.Strict)
	envBool("MTRANSPILE_TRANSPILE_SKIP_VERIFICATIONS", &cfg.Transpile.SkipVerifications)

	// State overrides
	envString("MTRANSPILE_STATE_BACKEND", &cfg.State.Backend)
	envString("MTRANSPILE_STATE_PATH", &cfg.State.Path)
	envString("MTRANSPILE_STATE_DRIVER", &cfg.State.Driver)

	// Watch overrides
	envDuration("MTRANSPILE_WATCH_DEBOUNCE", &cfg.Watch.Debounce)
	envString("MTRANSPILE_WATCH_SCHEDULE", &cfg.Watch.Schedule)
	envString("MTRANSPILE_WATCH_METRICS_ADDRESS", &cfg.Watch.MetricsAddress)

	// Telemetry overrides
	envString("MTRANSPILE_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("MTRANSPILE_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("MTRANSPILE_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("MTRANSPILE_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv("MTRANSPILE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
