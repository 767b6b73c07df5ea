// Package logging builds the structured loggers used across mtranspile.
//
// # Overview
//
// The logging package configures Go's standard log/slog package:
//   - JSON, text, and console formats
//   - Configurable log levels (debug, info, warn, error)
//   - Run and file fields taken from the context
//   - Redaction of Git credentials (tokens, passphrases, URL userinfo)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "build finished", "formulas", 1234)
package logging
