package config

import "time"

// Default values for configuration fields.
const (
	// Input defaults
	DefaultVariablesFile   = "tgvH.json"
	DefaultGitBranch       = "main"
	DefaultGitAuthType     = "none"
	DefaultGitCloneDepth   = 1
	DefaultGitLocalPath    = ".mtranspile/ast"
	DefaultGitTimeout      = 2 * time.Minute
	DefaultOutputDir       = "generated"
	DefaultApplication     = "batch"
	DefaultMaxDepth        = 512
	DefaultMaxClones       = 100000
	DefaultStateBackend    = "file"
	DefaultStateFilePath   = "state.json"
	DefaultStateSQLitePath = "state.db"
	DefaultStateDriver     = "sqlite"

	// Watch defaults
	DefaultWatchDebounce = 500 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "warn"
	DefaultLoggingFormat      = "text"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "mtranspile"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "mtranspile"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultRuleGlobs select the rule files.
var DefaultRuleGlobs = []string{"chap-*.json", "res-ser*.json"}

// DefaultVerificationGlobs select the verification files.
var DefaultVerificationGlobs = []string{"coc*.json", "coi*.json"}

// Default returns a configuration holding only default values.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Input defaults
	if cfg.Input.VariablesFile == "" {
		cfg.Input.VariablesFile = DefaultVariablesFile
	}
	if len(cfg.Input.RuleGlobs) == 0 {
		cfg.Input.RuleGlobs = append([]string(nil), DefaultRuleGlobs...)
	}
	if len(cfg.Input.VerificationGlobs) == 0 {
		cfg.Input.VerificationGlobs = append([]string(nil), DefaultVerificationGlobs...)
	}

	// Git defaults
	if cfg.Input.Git.Branch == "" {
		cfg.Input.Git.Branch = DefaultGitBranch
	}
	if cfg.Input.Git.Auth.Type == "" {
		cfg.Input.Git.Auth.Type = DefaultGitAuthType
	}
	if cfg.Input.Git.Clone.Depth == 0 {
		cfg.Input.Git.Clone.Depth = DefaultGitCloneDepth
	}
	if cfg.Input.Git.Clone.LocalPath == "" {
		cfg.Input.Git.Clone.LocalPath = DefaultGitLocalPath
	}
	if cfg.Input.Git.Timeout == 0 {
		cfg.Input.Git.Timeout = DefaultGitTimeout
	}

	// Output defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}

	// Transpile defaults
	if cfg.Transpile.Application == "" {
		cfg.Transpile.Application = DefaultApplication
	}
	if cfg.Transpile.MaxDepth == 0 {
		cfg.Transpile.MaxDepth = DefaultMaxDepth
	}
	if cfg.Transpile.MaxClones == 0 {
		cfg.Transpile.MaxClones = DefaultMaxClones
	}

	// State defaults
	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultStateBackend
	}
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStateFilePath
		if cfg.State.Backend == "sqlite" {
			cfg.State.Path = DefaultStateSQLitePath
		}
	}
	if cfg.State.Driver == "" {
		cfg.State.Driver = DefaultStateDriver
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
