package execshell

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	genericRetryTemplateConstant            = "Retrying %s in %s after attempt %d"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	homeDirectoryEnvironmentNameConstant    = "HOME"
	homeDirectoryReplacementConstant        = "~"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
// Occurrences of HomeDirectory are rendered as "~".
type CommandMessageFormatter struct {
	HomeDirectory string
}

// NewCommandMessageFormatter constructs a formatter that redacts the HOME directory.
func NewCommandMessageFormatter() CommandMessageFormatter {
	return CommandMessageFormatter{HomeDirectory: os.Getenv(homeDirectoryEnvironmentNameConstant)}
}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(genericStartTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(genericSuccessTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, outcome ExecutionOutcome) string {
	return fmt.Sprintf(genericFailureTemplateConstant, formatter.formatCommandLabel(command), outcome.ExitStatus, formatter.formatStandardErrorSuffix(outcome.StandardError))
}

// BuildExecutionFailureMessage formats the message describing a failure of the execution machinery.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.formatCommandLabel(command), formatter.describeFailure(failure))
}

// BuildRetryMessage formats the message announcing another attempt.
func (formatter CommandMessageFormatter) BuildRetryMessage(command ShellCommand, attempt int, delay time.Duration) string {
	return fmt.Sprintf(genericRetryTemplateConstant, formatter.formatCommandLabel(command), delay, attempt)
}

// Redact replaces the home directory with "~".
func (formatter CommandMessageFormatter) Redact(text string) string {
	if len(formatter.HomeDirectory) == 0 {
		return text
	}
	return strings.ReplaceAll(text, formatter.HomeDirectory, homeDirectoryReplacementConstant)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := formatter.Redact(strings.TrimSpace(command.Script))
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, formatter.Redact(trimmedWorkingDirectory))
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, formatter.Redact(trimmedStandardError))
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return formatter.Redact(failure.Error())
}
