package execshell

import (
	"context"
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	unsupportedPlatformMessageConstant        = "unsupported platform"
	emptyCommandMessageConstant               = "command must not be empty"
	commandFailureTemplateConstant            = "command failed with exit status %d: %s"
	launchErrorTemplateConstant               = "unable to launch %s: %v"
	commandCancelledTemplateConstant          = "command cancelled: %s: %v"
	invalidCommandTemplateConstant            = "invalid command %q: %v"
)

var (
	// ErrLoggerNotConfigured indicates that the executor was created without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates that the executor was created without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrUnsupportedPlatform indicates that no shell is designated for the host platform.
	ErrUnsupportedPlatform = errors.New(unsupportedPlatformMessageConstant)
	// ErrEmptyCommand indicates that a request carried no command text.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
)

// CommandFailure reports a command that ran and exited with a non-zero status.
type CommandFailure struct {
	Command ShellCommand
	Outcome ExecutionOutcome
}

// Error describes the failing command.
func (failure CommandFailure) Error() string {
	return fmt.Sprintf(commandFailureTemplateConstant, failure.Outcome.ExitStatus, failure.Command.Script)
}

// LaunchError reports that the shell could not be started or waited on.
type LaunchError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (launchError LaunchError) Error() string {
	return fmt.Sprintf(launchErrorTemplateConstant, launchError.Command.ShellPath, launchError.Cause)
}

// Unwrap exposes the underlying process error.
func (launchError LaunchError) Unwrap() error {
	return launchError.Cause
}

// CommandCancelledError reports that the caller's context ended before the command finished.
type CommandCancelledError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the cancellation.
func (cancelledError CommandCancelledError) Error() string {
	return fmt.Sprintf(commandCancelledTemplateConstant, cancelledError.Command.Script, cancelledError.Cause)
}

// Unwrap exposes the context error.
func (cancelledError CommandCancelledError) Unwrap() error {
	return cancelledError.Cause
}

// InvalidCommandError reports a request rejected before any process was started.
type InvalidCommandError struct {
	Command string
	Cause   error
}

// Error describes the rejected command.
func (invalidError InvalidCommandError) Error() string {
	return fmt.Sprintf(invalidCommandTemplateConstant, invalidError.Command, invalidError.Cause)
}

// Unwrap exposes the validation failure.
func (invalidError InvalidCommandError) Unwrap() error {
	return invalidError.Cause
}

// IsLaunchFailure reports whether err is a retryable launch failure.
func IsLaunchFailure(err error) bool {
	var launchError LaunchError
	return errors.As(err, &launchError)
}

// IsCancellation reports whether err stems from context cancellation or deadline expiry.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
