package cli

import (
	"context"
	"errors"
	"fmt"

	"calculette-hq/mtranspile/pkg/config"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitTranslation = 3
	ExitCycle       = 4
	ExitInterrupted = 130
)

// ConfigError represents an error in configuration or command arguments.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cfgErr *ConfigError
	var validationErr config.ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &validationErr) {
		return ExitConfig
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	if mlangErrors.Is(err, mlangErrors.ErrorTypeDependencyCycle) {
		return ExitCycle
	}

	var mlangErr *mlangErrors.Error
	if errors.As(err, &mlangErr) && mlangErr.Type != mlangErrors.ErrorTypeIO {
		return ExitTranslation
	}
	var list *mlangErrors.ErrorList
	if errors.As(err, &list) {
		return ExitTranslation
	}
	return ExitFailure
}
