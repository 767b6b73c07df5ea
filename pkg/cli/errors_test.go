package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "state.backend",
		Message: "missing required field",
	}

	expected := "config error in state.backend: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("build", underlyingErr)

	if err.Error() != "command build failed: underlying error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	loc := ast.Location{File: "chap-1.json", Path: "[3]"}
	cycle := mlangErrors.New(mlangErrors.ErrorTypeDependencyCycle, loc, "cycle between %s and %s", "A", "B")
	malformed := mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, loc, "missing field %q", "operands")
	missing := mlangErrors.New(mlangErrors.ErrorTypeIO, loc, "no such file")

	list := mlangErrors.NewErrorList()
	list.Add(malformed)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config error", NewConfigError("json", "not found"), ExitConfig},
		{"validation error", config.ValidationError{Errors: []config.FieldError{{Field: "f", Message: "m"}}}, ExitConfig},
		{"canceled", fmt.Errorf("translate: %w", context.Canceled), ExitInterrupted},
		{"cycle", NewCommandError("build", cycle), ExitCycle},
		{"malformed node", malformed, ExitTranslation},
		{"error list", list.ToError(), ExitTranslation},
		{"io", missing, ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
