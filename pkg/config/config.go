package config

import "time"

// Config is the root configuration structure for mtranspile.
// It contains the sections for AST input, generated output, translation,
// state persistence, watch mode and telemetry.
type Config struct {
	// Input contains the location of the JSON AST files and of the
	// auxiliary variable, constant and dependency files.
	Input InputConfig `yaml:"input"`

	// Output contains the location of the generated Python sources.
	Output OutputConfig `yaml:"output"`

	// Transpile contains translation settings.
	Transpile TranspileConfig `yaml:"transpile"`

	// State contains the save/reload store configuration.
	State StateConfig `yaml:"state"`

	// Watch contains the rebuild triggers of the watch command.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// InputConfig describes where the JSON AST comes from.
type InputConfig struct {
	// Dir is the directory holding the JSON AST files.
	// Usually given as the command argument.
	Dir string `yaml:"dir"`

	// VariablesFile is the variable definitions file, relative to Dir.
	// Default: "tgvH.json"
	VariablesFile string `yaml:"variables_file"`

	// ConstantsFile is an optional JSON object mapping constant names to
	// values, relative to Dir.
	ConstantsFile string `yaml:"constants_file"`

	// DependenciesFile is an optional JSON object mapping formula names to
	// precomputed dependency lists, relative to Dir.
	DependenciesFile string `yaml:"dependencies_file"`

	// RuleGlobs select the rule files.
	// Default: ["chap-*.json", "res-ser*.json"]
	RuleGlobs []string `yaml:"rule_globs"`

	// VerificationGlobs select the verification files.
	// Default: ["coc*.json", "coi*.json"]
	VerificationGlobs []string `yaml:"verification_globs"`

	// Git fetches the AST directory from a repository.
	Git GitConfig `yaml:"git"`
}

// GitConfig configures fetching the AST files from a Git repository.
type GitConfig struct {
	// Enabled determines if the AST directory is cloned from Repository.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	Repository string `yaml:"repository"`

	// Branch to check out.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the JSON AST files.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`

	// Timeout bounds the clone or pull.
	// Default: 2m
	Timeout time.Duration `yaml:"timeout"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: ".mtranspile/ast"
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// OutputConfig describes where the generated sources go.
type OutputConfig struct {
	// Dir receives constants.py, variables_definitions.py, formulas.py and
	// verifications.py.
	// Default: "generated"
	Dir string `yaml:"dir"`
}

// TranspileConfig contains translation settings.
type TranspileConfig struct {
	// Application selects the rules and verifications to translate.
	// Default: "batch"
	Application string `yaml:"application"`

	// Functions extends or overrides the M to Python function table.
	Functions map[string]string `yaml:"functions"`

	// MaxDepth caps AST nesting.
	// Default: 512
	MaxDepth int `yaml:"max_depth"`

	// MaxClones caps the clones one loop unrolls into, the product of
	// its loop variable domains.
	// Default: 100000
	MaxClones int `yaml:"max_clones"`

	// Strict turns duplicate formula definitions into errors.
	// Default: false
	Strict bool `yaml:"strict"`

	// SkipVerifications leaves verification files out of the build.
	// Default: false
	SkipVerifications bool `yaml:"skip_verifications"`
}

// StateConfig configures the save/reload store.
type StateConfig struct {
	// Backend: "file" or "sqlite".
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path of the JSON state file or of the SQLite database.
	// Default: "state.json" for file, "state.db" for sqlite
	Path string `yaml:"path"`

	// Driver is the database/sql driver of the sqlite backend:
	// "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce coalesces bursts of file events into one rebuild.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is an optional cron expression triggering rebuilds.
	// Example: "*/15 * * * *"
	Schedule string `yaml:"schedule"`

	// MetricsAddress serves Prometheus metrics while watching.
	// Empty disables the endpoint.
	MetricsAddress string `yaml:"metrics_address"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "mtranspile"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether build phases are traced.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SampleRatio is the fraction of builds to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "mtranspile"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
