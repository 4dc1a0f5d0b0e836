// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	// SyntaxCheckFlagName exposes the shared preflight flag name.
	SyntaxCheckFlagName = "syntax-check"
	// SyntaxCheckFlagUsage describes the shared preflight flag purpose.
	SyntaxCheckFlagUsage = "Parse the command before launching it and reject incomplete input"
	// FailOnErrorFlagName exposes the shared non-zero exit assertion flag name.
	FailOnErrorFlagName = "fail-on-error"
	// FailOnErrorFlagUsage describes the shared non-zero exit assertion flag purpose.
	FailOnErrorFlagUsage = "Exit with an error when the command returns a non-zero status"
	// TimeoutFlagName exposes the shared timeout flag name.
	TimeoutFlagName = "timeout"
	// TimeoutFlagUsage describes the shared timeout flag purpose.
	TimeoutFlagUsage = "Cancel the command after this duration (0 disables the limit)"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	SyntaxCheck bool
	FailOnError bool
	Timeout     time.Duration
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	SyntaxCheck ExecutionFlagDefinition
	FailOnError ExecutionFlagDefinition
	Timeout     ExecutionFlagDefinition
}

// ExecutionFlagValues stores the values bound to execution flags.
type ExecutionFlagValues struct {
	SyntaxCheck bool
	FailOnError bool
	Timeout     time.Duration
}

// DefaultExecutionFlagDefinitions returns the standard execution flag definitions.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		SyntaxCheck: ExecutionFlagDefinition{Name: SyntaxCheckFlagName, Usage: SyntaxCheckFlagUsage, Enabled: true},
		FailOnError: ExecutionFlagDefinition{Name: FailOnErrorFlagName, Usage: FailOnErrorFlagUsage, Enabled: true},
		Timeout:     ExecutionFlagDefinition{Name: TimeoutFlagName, Usage: TimeoutFlagUsage, Enabled: true},
	}
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := ExecutionFlagValues{
		SyntaxCheck: defaults.SyntaxCheck,
		FailOnError: defaults.FailOnError,
		Timeout:     defaults.Timeout,
	}
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	if definitions.SyntaxCheck.Enabled && len(definitions.SyntaxCheck.Name) > 0 {
		AddToggleFlag(persistentFlagSet, &values.SyntaxCheck, definitions.SyntaxCheck.Name, definitions.SyntaxCheck.Shorthand, defaults.SyntaxCheck, definitions.SyntaxCheck.Usage)
	}
	if definitions.FailOnError.Enabled && len(definitions.FailOnError.Name) > 0 {
		AddToggleFlag(persistentFlagSet, &values.FailOnError, definitions.FailOnError.Name, definitions.FailOnError.Shorthand, defaults.FailOnError, definitions.FailOnError.Usage)
	}
	if definitions.Timeout.Enabled && len(definitions.Timeout.Name) > 0 {
		persistentFlagSet.DurationVarP(&values.Timeout, definitions.Timeout.Name, definitions.Timeout.Shorthand, defaults.Timeout, definitions.Timeout.Usage)
	}

	return &values
}
