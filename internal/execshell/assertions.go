package execshell

import (
	"fmt"
	"strings"
)

const (
	checkResultErrorTemplateConstant     = "error executing command: %s in %s\n%s: %w"
	defaultWorkingDirectoryLabelConstant = "."
	outputSeparatorConstant              = "\n"
)

// NonZeroExitError is returned by FailOnNonZero.
type NonZeroExitError struct {
	Message string
	Outcome ExecutionOutcome
}

// Error returns the contextual message, a newline and the captured standard output, followed by
// the captured standard error. A newline separates the two streams only when both are present.
func (exitError NonZeroExitError) Error() string {
	var messageBuilder strings.Builder
	messageBuilder.WriteString(exitError.Message)
	messageBuilder.WriteString(outputSeparatorConstant)
	messageBuilder.WriteString(exitError.Outcome.StandardOutput)
	if len(exitError.Outcome.StandardOutput) > 0 && len(exitError.Outcome.StandardError) > 0 {
		messageBuilder.WriteString(outputSeparatorConstant)
	}
	messageBuilder.WriteString(exitError.Outcome.StandardError)
	return messageBuilder.String()
}

// CheckResult returns an error describing the command when the outcome carries a system error.
func CheckResult(outcome LegacyExecutionOutcome, message string) error {
	if outcome.SystemError == nil {
		return nil
	}
	workingDirectory := outcome.WorkingDirectory
	if len(workingDirectory) == 0 {
		workingDirectory = defaultWorkingDirectoryLabelConstant
	}
	return fmt.Errorf(checkResultErrorTemplateConstant, outcome.Command, workingDirectory, message, outcome.SystemError)
}

// FailOnNonZero returns a NonZeroExitError when the outcome's exit status is not zero.
func FailOnNonZero(message string, outcome ExecutionOutcome) error {
	if outcome.Succeeded() {
		return nil
	}
	return NonZeroExitError{Message: message, Outcome: outcome}
}
