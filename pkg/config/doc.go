// Package config provides configuration management for mtranspile.
//
// This package loads and validates configuration from an optional YAML file
// with environment variable overrides. Command line flags are applied on top
// by the CLI.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("mtranspile.yaml")
//
//  2. From a YAML file (or nothing) with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("mtranspile.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MTRANSPILE_SECTION_FIELD:
//
//   - MTRANSPILE_OUTPUT_DIR overrides output.dir
//   - MTRANSPILE_TRANSPILE_APPLICATION overrides transpile.application
//   - MTRANSPILE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Validation
//
// Validation errors include field paths:
//
//	configuration validation failed with 2 errors:
//	  - state.backend: invalid backend "redis": must be 'file' or 'sqlite'
//	  - watch.schedule: invalid cron expression "every day": ...
//
// # Example Configuration
//
//	input:
//	  variables_file: "tgvH.json"
//	  constants_file: "constants.json"
//	output:
//	  dir: "generated"
//	transpile:
//	  application: "batch"
//	  functions:
//	    arr: "round_half_up"
//	state:
//	  backend: "sqlite"
//	  path: "state.db"
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
