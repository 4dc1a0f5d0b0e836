package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	shellResolutionErrorTemplateConstant    = "unable to resolve shell: %w"
	workingDirectoryFallbackMessageConstant = "unable to resolve working directory; inheriting the process directory"
	systemErrorSeparatorConstant            = "\n"
	logFieldCommandConstant                 = "command"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldShellConstant                   = "shell"
	logFieldAttemptConstant                 = "attempt"
	logFieldExitCodeConstant                = "exit_code"
	logFieldDelayConstant                   = "delay"
	logFieldStandardOutputLengthConstant    = "stdout_bytes"
	logFieldStandardErrorLengthConstant     = "stderr_bytes"
	invalidCommandLogMessageConstant        = "Rejected command before launch"
	firstAttemptConstant                    = 1
)

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(executor *ShellExecutor)

// WithShellPath uses the provided shell instead of the platform default.
func WithShellPath(shellPath string) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.shellPath = strings.TrimSpace(shellPath)
	}
}

// WithTracer attaches an instrumentation tracer.
func WithTracer(tracer Tracer) ExecutorOption {
	return func(executor *ShellExecutor) {
		if tracer != nil {
			executor.tracer = tracer
		}
	}
}

// WithCommandEventObserver adds an observer for command lifecycle events. Repeated
// options register every observer.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.eventObservers = append(executor.eventObservers, observer)
		}
	}
}

// WithWorkingDirectoryResolver replaces the process working directory fallback.
func WithWorkingDirectoryResolver(resolver WorkingDirectoryResolver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if resolver != nil {
			executor.workingDirectoryResolver = resolver
		}
	}
}

// WithCommandValidator enables preflight validation of every command.
func WithCommandValidator(validator CommandValidator) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.commandValidator = validator
	}
}

// WithBufferedRetryPolicy replaces the retry policy used by RunBuffered.
func WithBufferedRetryPolicy(policy RetryPolicy) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.bufferedRetryPolicy = policy
	}
}

// WithStreamingRetryPolicy replaces the retry policy used by RunStreaming.
func WithStreamingRetryPolicy(policy RetryPolicy) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.streamingRetryPolicy = policy
	}
}

// WithRetryTimer replaces the wall-clock timer used between retry attempts.
func WithRetryTimer(timer backoff.Timer) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.retryTimer = timer
	}
}

// WithMessageFormatter replaces the formatter used for log messages.
func WithMessageFormatter(formatter CommandMessageFormatter) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.messageFormatter = formatter
	}
}

// ShellExecutor runs command lines through a CommandRunner with logging, retries, and instrumentation.
type ShellExecutor struct {
	logger                   *zap.Logger
	runner                   CommandRunner
	shellPath                string
	tracer                   Tracer
	eventObservers           commandEventObservers
	workingDirectoryResolver WorkingDirectoryResolver
	commandValidator         CommandValidator
	bufferedRetryPolicy      RetryPolicy
	streamingRetryPolicy     RetryPolicy
	retryTimer               backoff.Timer
	messageFormatter         CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor. The shell is resolved here, once; an
// unsupported platform without WithShellPath is reported as a construction error.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:                   logger,
		runner:                   runner,
		tracer:                   NoopTracer{},
		workingDirectoryResolver: ProcessWorkingDirectoryResolver{},
		bufferedRetryPolicy:      DefaultBufferedRetryPolicy(),
		streamingRetryPolicy:     SingleAttemptRetryPolicy(),
		messageFormatter:         NewCommandMessageFormatter(),
	}

	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}

	if len(executor.shellPath) == 0 {
		resolvedShellPath, resolutionError := ResolveHostShell()
		if resolutionError != nil {
			return nil, fmt.Errorf(shellResolutionErrorTemplateConstant, resolutionError)
		}
		executor.shellPath = resolvedShellPath
	}

	return executor, nil
}

// ShellPath returns the shell every command is launched under.
func (executor *ShellExecutor) ShellPath() string {
	return executor.shellPath
}

// RunBuffered runs the command to completion, relaunching it while launch failures persist
// and attempts remain. Only the final attempt is returned and recorded on the scope.
func (executor *ShellExecutor) RunBuffered(executionContext context.Context, request ExecutionRequest) LegacyExecutionOutcome {
	scopeContext, scope := executor.tracer.StartScope(executionContext, ScopeNameBuffered)
	defer scope.End()

	command := executor.buildShellCommand(request)
	finalOutcome := LegacyExecutionOutcome{
		Command:          request.Command,
		WorkingDirectory: command.Details.WorkingDirectory,
		ExitStatus:       SystemFailureExitStatus,
	}

	if validationError := executor.validateRequest(command); validationError != nil {
		finalOutcome.SystemError = validationError
		executor.recordScope(scope, command, finalOutcome.ExecutionOutcome(), validationError)
		return finalOutcome
	}

	retryError := executor.bufferedRetryPolicy.Execute(scopeContext, executor.retryTimer, func(attempt int) error {
		finalOutcome = executor.launchBuffered(scopeContext, command, attempt)
		return retryClassification(finalOutcome.SystemError)
	}, executor.retryNotification(command))

	if finalOutcome.SystemError != nil && IsCancellation(retryError) {
		finalOutcome.SystemError = executor.cancellation(command, retryError, finalOutcome.SystemError)
	}

	executor.recordScope(scope, command, finalOutcome.ExecutionOutcome(), finalOutcome.SystemError)
	return finalOutcome
}

// RunStreaming runs the command with output accumulated chunk by chunk. A non-zero exit
// is returned as CommandFailure alongside the captured outcome.
func (executor *ShellExecutor) RunStreaming(executionContext context.Context, request ExecutionRequest) (ExecutionOutcome, error) {
	scopeContext, scope := executor.tracer.StartScope(executionContext, ScopeNameStreaming)
	defer scope.End()

	command := executor.buildShellCommand(request)
	if validationError := executor.validateRequest(command); validationError != nil {
		failedOutcome := ExecutionOutcome{ExitStatus: SystemFailureExitStatus}
		executor.recordScope(scope, command, failedOutcome, validationError)
		return failedOutcome, validationError
	}

	var outcome ExecutionOutcome
	var streamError error
	retryError := executor.streamingRetryPolicy.Execute(scopeContext, executor.retryTimer, func(attempt int) error {
		outcome, streamError = executor.launchStreaming(scopeContext, command, request.OutputObserver, attempt)
		return retryClassification(streamError)
	}, executor.retryNotification(command))

	if streamError != nil && IsCancellation(retryError) {
		streamError = executor.cancellation(command, retryError, streamError)
	}

	executor.recordScope(scope, command, outcome, streamError)
	return outcome, streamError
}

// RunSimple executes the command once and reports an ExecutionOutcome whatever the exit status.
// A launch failure is folded into the outcome; the error return is reserved for rejected
// requests and cancellation.
func (executor *ShellExecutor) RunSimple(executionContext context.Context, request ExecutionRequest) (ExecutionOutcome, error) {
	scopeContext, scope := executor.tracer.StartScope(executionContext, ScopeNameSimple)
	defer scope.End()

	command := executor.buildShellCommand(request)
	if validationError := executor.validateRequest(command); validationError != nil {
		failedOutcome := ExecutionOutcome{ExitStatus: SystemFailureExitStatus}
		executor.recordScope(scope, command, failedOutcome, validationError)
		return failedOutcome, validationError
	}

	legacyOutcome := executor.launchBuffered(scopeContext, command, firstAttemptConstant)
	outcome := legacyOutcome.ExecutionOutcome()

	switch {
	case legacyOutcome.SystemError == nil && outcome.Succeeded():
		executor.recordScope(scope, command, outcome, nil)
		return outcome, nil
	case legacyOutcome.SystemError == nil:
		executor.recordScope(scope, command, outcome, CommandFailure{Command: command, Outcome: outcome})
		return outcome, nil
	case IsCancellation(legacyOutcome.SystemError):
		executor.recordScope(scope, command, outcome, legacyOutcome.SystemError)
		return outcome, legacyOutcome.SystemError
	default:
		outcome.StandardError = appendSystemErrorMessage(outcome.StandardError, legacyOutcome.SystemError)
		executor.recordScope(scope, command, outcome, legacyOutcome.SystemError)
		return outcome, nil
	}
}

func (executor *ShellExecutor) launchBuffered(executionContext context.Context, command ShellCommand, attempt int) LegacyExecutionOutcome {
	executor.logStart(command, attempt)

	runnerOutcome, runError := executor.runner.Run(executionContext, command)
	legacyOutcome := LegacyExecutionOutcome{
		Command:          command.Script,
		WorkingDirectory: command.Details.WorkingDirectory,
		StandardOutput:   runnerOutcome.StandardOutput,
		StandardError:    runnerOutcome.StandardError,
		ExitStatus:       runnerOutcome.ExitStatus,
	}

	if runError != nil {
		legacyOutcome.SystemError = executor.classifySystemError(executionContext, command, runError)
		if legacyOutcome.ExitStatus == 0 {
			legacyOutcome.ExitStatus = SystemFailureExitStatus
		}
		executor.logExecutionFailure(command, attempt, legacyOutcome.SystemError)
		return legacyOutcome
	}

	executor.logCompletion(command, attempt, legacyOutcome.ExecutionOutcome())
	return legacyOutcome
}

func (executor *ShellExecutor) launchStreaming(executionContext context.Context, command ShellCommand, observer OutputObserver, attempt int) (ExecutionOutcome, error) {
	executor.logStart(command, attempt)

	outcome, runError := executor.runner.Stream(executionContext, command, observer)
	if runError != nil {
		systemError := executor.classifySystemError(executionContext, command, runError)
		if outcome.ExitStatus == 0 {
			outcome.ExitStatus = SystemFailureExitStatus
		}
		executor.logExecutionFailure(command, attempt, systemError)
		return outcome, systemError
	}

	executor.logCompletion(command, attempt, outcome)
	if !outcome.Succeeded() {
		return outcome, CommandFailure{Command: command, Outcome: outcome}
	}
	return outcome, nil
}

func (executor *ShellExecutor) buildShellCommand(request ExecutionRequest) ShellCommand {
	workingDirectory := strings.TrimSpace(request.WorkingDirectory)
	if len(workingDirectory) == 0 {
		resolvedWorkingDirectory, resolutionError := executor.workingDirectoryResolver.WorkingDirectory()
		if resolutionError != nil {
			executor.logger.Warn(workingDirectoryFallbackMessageConstant, zap.Error(resolutionError))
		} else {
			workingDirectory = resolvedWorkingDirectory
		}
	}

	var environmentVariables map[string]string
	if len(request.EnvironmentOverrides) > 0 {
		environmentVariables = make(map[string]string, len(request.EnvironmentOverrides))
		for environmentKey, environmentValue := range request.EnvironmentOverrides {
			environmentVariables[environmentKey] = environmentValue
		}
	}

	return ShellCommand{
		ShellPath: executor.shellPath,
		Script:    request.Command,
		Details: CommandDetails{
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: environmentVariables,
		},
	}
}

func (executor *ShellExecutor) validateRequest(command ShellCommand) error {
	var validationError error
	switch {
	case len(strings.TrimSpace(command.Script)) == 0:
		validationError = InvalidCommandError{Command: command.Script, Cause: ErrEmptyCommand}
	case executor.commandValidator != nil:
		if preflightError := executor.commandValidator.Validate(command.Script); preflightError != nil {
			validationError = InvalidCommandError{Command: command.Script, Cause: preflightError}
		}
	}

	if validationError != nil {
		executor.logger.Error(
			invalidCommandLogMessageConstant,
			zap.String(logFieldCommandConstant, executor.messageFormatter.Redact(command.Script)),
			zap.Error(validationError),
		)
	}
	return validationError
}

func (executor *ShellExecutor) classifySystemError(executionContext context.Context, command ShellCommand, runError error) error {
	if contextError := executionContext.Err(); contextError != nil {
		return CommandCancelledError{Command: command, Cause: contextError}
	}
	if IsCancellation(runError) {
		return CommandCancelledError{Command: command, Cause: runError}
	}
	return LaunchError{Command: command, Cause: runError}
}

func (executor *ShellExecutor) cancellation(command ShellCommand, contextError error, lastError error) error {
	var cancelledError CommandCancelledError
	if errors.As(lastError, &cancelledError) {
		return lastError
	}
	return CommandCancelledError{Command: command, Cause: contextError}
}

func (executor *ShellExecutor) retryNotification(command ShellCommand) RetryNotification {
	return func(attempt int, failure error, delay time.Duration) {
		executor.logger.Info(
			executor.messageFormatter.BuildRetryMessage(command, attempt, delay),
			zap.String(logFieldCommandConstant, executor.messageFormatter.Redact(command.Script)),
			zap.Int(logFieldAttemptConstant, attempt),
			zap.Duration(logFieldDelayConstant, delay),
			zap.Error(failure),
		)
	}
}

func (executor *ShellExecutor) recordScope(scope Scope, command ShellCommand, outcome ExecutionOutcome, failure error) {
	scope.SetAttributes(InstrumentationAttributes{
		WorkingDirectory: command.Details.WorkingDirectory,
		Shell:            command.ShellPath,
		Command:          command.Script,
		StandardOutput:   outcome.StandardOutput,
		StandardError:    outcome.StandardError,
		ExitStatus:       outcome.ExitStatus,
	})

	if failure != nil {
		scope.RecordError(failure)
		scope.SetStatus(ScopeStatusError, failure.Error())
		return
	}
	scope.SetStatus(ScopeStatusOK, emptyStringConstant)
}

func (executor *ShellExecutor) logStart(command ShellCommand, attempt int) {
	executor.eventObservers.CommandStarted(command)
	executor.logger.Info(
		executor.messageFormatter.BuildStartedMessage(command),
		zap.String(logFieldCommandConstant, executor.messageFormatter.Redact(command.Script)),
		zap.String(logFieldWorkingDirectoryConstant, executor.messageFormatter.Redact(command.Details.WorkingDirectory)),
		zap.String(logFieldShellConstant, command.ShellPath),
		zap.Int(logFieldAttemptConstant, attempt),
	)
}

func (executor *ShellExecutor) logCompletion(command ShellCommand, attempt int, outcome ExecutionOutcome) {
	executor.eventObservers.CommandCompleted(command, outcome)

	message := executor.messageFormatter.BuildSuccessMessage(command)
	if !outcome.Succeeded() {
		message = executor.messageFormatter.BuildFailureMessage(command, outcome)
	}
	executor.logger.Info(
		message,
		zap.String(logFieldCommandConstant, executor.messageFormatter.Redact(command.Script)),
		zap.Int(logFieldAttemptConstant, attempt),
		zap.Int(logFieldExitCodeConstant, outcome.ExitStatus),
		zap.Int(logFieldStandardOutputLengthConstant, len(outcome.StandardOutput)),
		zap.Int(logFieldStandardErrorLengthConstant, len(outcome.StandardError)),
	)
}

func (executor *ShellExecutor) logExecutionFailure(command ShellCommand, attempt int, failure error) {
	executor.eventObservers.CommandExecutionFailed(command, failure)
	executor.logger.Error(
		executor.messageFormatter.BuildExecutionFailureMessage(command, failure),
		zap.String(logFieldCommandConstant, executor.messageFormatter.Redact(command.Script)),
		zap.Int(logFieldAttemptConstant, attempt),
		zap.Error(failure),
	)
}

// retryClassification keeps launch failures retryable and makes everything else permanent.
func retryClassification(failure error) error {
	if failure == nil {
		return nil
	}
	if IsLaunchFailure(failure) {
		return failure
	}
	return PermanentFailure(failure)
}

func appendSystemErrorMessage(standardError string, systemError error) string {
	if len(standardError) == 0 {
		return systemError.Error()
	}
	if strings.HasSuffix(standardError, systemErrorSeparatorConstant) {
		return standardError + systemError.Error()
	}
	return standardError + systemErrorSeparatorConstant + systemError.Error()
}
