package shellcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/cmdrun/internal/execshell"
	"github.com/temirov/cmdrun/internal/ui"
	"github.com/temirov/cmdrun/internal/utils"
	flagutils "github.com/temirov/cmdrun/internal/utils/flags"
)

// Mode selects which executor operation a command drives.
type Mode string

// Supported modes.
const (
	ModeBuffered  Mode = Mode("run")
	ModeStreaming Mode = Mode("stream")
	ModeSimple    Mode = Mode("simple")
)

const (
	commandArgumentsSuffixConstant            = " -- <command>"
	bufferedShortDescriptionConstant          = "Run a command line to completion, retrying launch failures"
	bufferedLongDescriptionConstant           = "run executes the command line under the host shell, buffers both output streams, and relaunches it while the shell cannot be started."
	streamingShortDescriptionConstant         = "Run a command line and echo its output as it arrives"
	streamingLongDescriptionConstant          = "stream executes the command line under the host shell and forwards every output chunk as soon as the child writes it. A non-zero exit is reported as an error."
	simpleShortDescriptionConstant            = "Run a command line once and report its outcome"
	simpleLongDescriptionConstant             = "simple executes the command line once and reports stdout, stderr, and exit status whatever the result."
	outputFlagNameConstant                    = "output"
	outputFlagShorthandConstant               = "o"
	outputFlagDescriptionConstant             = "Output format"
	checkFlagNameConstant                     = "check"
	checkFlagDescriptionConstant              = "Fail when the command could not be executed"
	commandRequiredMessageConstant            = "command line required; pass it after --"
	commandArgumentSeparatorConstant          = " "
	executorConstructionErrorTemplateConstant = "unable to construct shell executor: %w"
	unsupportedModeTemplateConstant           = "unsupported command mode: %s"
	assertionMessageTemplateConstant          = "cmdrun %s"
	executionStartedMessageConstant           = "command line accepted"
	logFieldModeConstant                      = "mode"
	logFieldTimeoutConstant                   = "timeout"
)

// CommandBuilder assembles one of the run, stream, and simple commands.
type CommandBuilder struct {
	Mode             Mode
	LoggerProvider   LoggerProvider
	ExecutorProvider ExecutorProvider
}

type commandOptions struct {
	outputFormat string
	check        bool
}

// Build constructs the command for the configured mode.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	shortDescription, longDescription, descriptionError := builder.descriptions()
	if descriptionError != nil {
		return nil, descriptionError
	}

	options := &commandOptions{outputFormat: OutputFormatText}
	command := &cobra.Command{
		Use:   string(builder.Mode) + commandArgumentsSuffixConstant,
		Short: shortDescription,
		Long:  longDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, *options)
		},
	}

	if builder.Mode != ModeStreaming {
		flagutils.AddChoiceFlag(command.Flags(), &options.outputFormat, outputFlagNameConstant, outputFlagShorthandConstant, OutputFormatText, OutputFormats(), outputFlagDescriptionConstant)
	}
	if builder.Mode == ModeBuffered {
		flagutils.AddToggleFlag(command.Flags(), &options.check, checkFlagNameConstant, "", false, checkFlagDescriptionConstant)
	}

	return command, nil
}

func (builder *CommandBuilder) descriptions() (string, string, error) {
	switch builder.Mode {
	case ModeBuffered:
		return bufferedShortDescriptionConstant, bufferedLongDescriptionConstant, nil
	case ModeStreaming:
		return streamingShortDescriptionConstant, streamingLongDescriptionConstant, nil
	case ModeSimple:
		return simpleShortDescriptionConstant, simpleLongDescriptionConstant, nil
	default:
		return "", "", fmt.Errorf(unsupportedModeTemplateConstant, builder.Mode)
	}
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, options commandOptions) error {
	commandLine := strings.TrimSpace(strings.Join(arguments, commandArgumentSeparatorConstant))
	if len(commandLine) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(commandRequiredMessageConstant)
	}

	executionFlags, _ := utils.NewCommandContextAccessor().ExecutionFlags(command.Context())
	if builder.ExecutorProvider == nil {
		return fmt.Errorf(executorConstructionErrorTemplateConstant, execshell.ErrCommandRunnerNotConfigured)
	}
	executor, executorError := builder.ExecutorProvider(executionFlags)
	if executorError != nil {
		return fmt.Errorf(executorConstructionErrorTemplateConstant, executorError)
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	if executionFlags.Timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, executionFlags.Timeout)
		defer cancel()
	}

	resolveLogger(builder.LoggerProvider).Debug(
		executionStartedMessageConstant,
		zap.String(logFieldModeConstant, string(builder.Mode)),
		zap.Duration(logFieldTimeoutConstant, executionFlags.Timeout),
	)

	request := execshell.ExecutionRequest{
		Command:              commandLine,
		WorkingDirectory:     executionFlags.WorkingDirectory,
		EnvironmentOverrides: executionFlags.Environment,
	}
	renderer := outcomeRenderer{
		format:         options.outputFormat,
		standardOutput: command.OutOrStdout(),
		standardError:  command.ErrOrStderr(),
	}
	assertionMessage := fmt.Sprintf(assertionMessageTemplateConstant, builder.Mode)

	switch builder.Mode {
	case ModeBuffered:
		outcome := executor.RunBuffered(executionContext, request)
		if renderError := renderer.render(newBufferedOutcomeDocument(outcome), outcome.StandardOutput, outcome.StandardError); renderError != nil {
			return renderError
		}
		if options.check {
			if checkError := execshell.CheckResult(outcome, assertionMessage); checkError != nil {
				return checkError
			}
		}
		if executionFlags.FailOnError {
			return execshell.FailOnNonZero(assertionMessage, outcome.ExecutionOutcome())
		}
		return nil
	case ModeStreaming:
		request.OutputObserver = ui.NewStreamEcho(command.OutOrStdout(), command.ErrOrStderr())
		_, streamError := executor.RunStreaming(executionContext, request)
		return streamError
	case ModeSimple:
		outcome, simpleError := executor.RunSimple(executionContext, request)
		if simpleError != nil {
			return simpleError
		}
		if renderError := renderer.render(newOutcomeDocument(request, outcome), outcome.StandardOutput, outcome.StandardError); renderError != nil {
			return renderError
		}
		if executionFlags.FailOnError {
			return execshell.FailOnNonZero(assertionMessage, outcome)
		}
		return nil
	default:
		return fmt.Errorf(unsupportedModeTemplateConstant, builder.Mode)
	}
}
