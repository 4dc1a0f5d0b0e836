package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	defaultWaitDelayConstant               = 5 * time.Second
	abnormalTerminationTemplateConstant    = "shell terminated abnormally: %w"
)

// CommandRunner launches resolved shell commands.
type CommandRunner interface {
	// Run buffers both streams until the process exits.
	Run(executionContext context.Context, command ShellCommand) (ExecutionOutcome, error)
	// Stream accumulates both streams chunk by chunk, forwarding chunks to observer when it is non-nil.
	Stream(executionContext context.Context, command ShellCommand, observer OutputObserver) (ExecutionOutcome, error)
}

// OSCommandRunner executes commands using the operating system facilities.
// A non-zero exit is reported through ExecutionOutcome.ExitStatus with a nil error;
// the error return is reserved for failures of the process machinery itself.
type OSCommandRunner struct {
	// WaitDelay bounds how long Wait blocks on inherited pipes once the context is done.
	WaitDelay time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{WaitDelay: defaultWaitDelayConstant}
}

// Run executes the supplied command using os/exec and buffers its output.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionOutcome, error) {
	executable := runner.buildExecutable(executionContext, command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	return runner.interpretExit(executionContext, executable, runError, standardOutputBuffer.String(), standardErrorBuffer.String())
}

// Stream executes the supplied command, pushing output chunks through per-stream channels.
func (runner *OSCommandRunner) Stream(executionContext context.Context, command ShellCommand, observer OutputObserver) (ExecutionOutcome, error) {
	executable := runner.buildExecutable(executionContext, command)

	accumulator := newStreamAccumulator(observer)
	executable.Stdout = accumulator.writer(OutputStreamStandardOutput)
	executable.Stderr = accumulator.writer(OutputStreamStandardError)
	accumulator.start()

	if startError := executable.Start(); startError != nil {
		standardOutput, standardError := accumulator.finish()
		return ExecutionOutcome{StandardOutput: standardOutput, StandardError: standardError, ExitStatus: SystemFailureExitStatus}, startError
	}

	waitError := executable.Wait()
	standardOutput, standardError := accumulator.finish()
	return runner.interpretExit(executionContext, executable, waitError, standardOutput, standardError)
}

func (runner *OSCommandRunner) buildExecutable(executionContext context.Context, command ShellCommand) *exec.Cmd {
	executable := exec.CommandContext(executionContext, command.ShellPath, command.Arguments()...)
	executable.WaitDelay = runner.WaitDelay

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	return executable
}

// interpretExit maps the result of Wait onto an outcome. Output pipes held open past WaitDelay by
// a background descendant do not change the shell's own exit status. A shell terminated by a
// signal has no exit status and is reported as a failure of the process machinery.
func (runner *OSCommandRunner) interpretExit(executionContext context.Context, executable *exec.Cmd, waitError error, standardOutput string, standardError string) (ExecutionOutcome, error) {
	outcome := ExecutionOutcome{
		StandardOutput: standardOutput,
		StandardError:  standardError,
	}

	if contextError := executionContext.Err(); contextError != nil && waitError != nil {
		outcome.ExitStatus = SystemFailureExitStatus
		return outcome, contextError
	}

	if waitError == nil {
		return outcome, nil
	}

	if errors.Is(waitError, exec.ErrWaitDelay) && executable.ProcessState != nil {
		outcome.ExitStatus = executable.ProcessState.ExitCode()
		if outcome.ExitStatus != SystemFailureExitStatus {
			return outcome, nil
		}
		return outcome, waitError
	}

	processExitError := &exec.ExitError{}
	if errors.As(waitError, &processExitError) {
		outcome.ExitStatus = processExitError.ExitCode()
		if outcome.ExitStatus == SystemFailureExitStatus {
			return outcome, fmt.Errorf(abnormalTerminationTemplateConstant, processExitError)
		}
		return outcome, nil
	}

	outcome.ExitStatus = SystemFailureExitStatus
	return outcome, waitError
}

// mergeEnvironment appends overrides after the inherited entries; os/exec keeps the last duplicate.
func mergeEnvironment(inherited []string, overrides map[string]string) []string {
	overrideKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	sort.Strings(overrideKeys)

	mergedEnvironment := append([]string{}, inherited...)
	for _, environmentKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, overrides[environmentKey]))
	}
	return mergedEnvironment
}
