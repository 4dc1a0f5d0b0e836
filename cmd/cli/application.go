package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/temirov/cmdrun/cmd/cli/shellcmd"
	"github.com/temirov/cmdrun/internal/execshell"
	"github.com/temirov/cmdrun/internal/telemetry"
	"github.com/temirov/cmdrun/internal/ui"
	"github.com/temirov/cmdrun/internal/utils"
	flagutils "github.com/temirov/cmdrun/internal/utils/flags"
	pathutils "github.com/temirov/cmdrun/internal/utils/path"
)

const (
	applicationNameConstant                    = "cmdrun"
	applicationShortDescriptionConstant        = "Run shell command lines with retries, streaming, and structured outcomes"
	applicationLongDescriptionConstant         = "cmdrun executes command lines under the host shell and reports their output and exit status."
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format (structured or console)."
	versionFlagNameConstant                    = "version"
	versionFlagUsageConstant                   = "Print the application version and exit."
	versionOutputTemplateConstant              = "%s version: %s\n"
	unknownVersionConstant                     = "unknown"
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	executionConfigurationKeyConstant          = "execution"
	executionShellConfigKeyConstant            = executionConfigurationKeyConstant + ".shell"
	executionMaxAttemptsConfigKeyConstant      = executionConfigurationKeyConstant + ".max_attempts"
	executionBackoffStepConfigKeyConstant      = executionConfigurationKeyConstant + ".backoff_step"
	executionWaitDelayConfigKeyConstant        = executionConfigurationKeyConstant + ".wait_delay"
	executionTimeoutConfigKeyConstant          = executionConfigurationKeyConstant + ".timeout"
	executionSyntaxCheckConfigKeyConstant      = executionConfigurationKeyConstant + ".syntax_check"
	telemetryEnabledConfigKeyConstant          = "telemetry.enabled"
	environmentPrefixConstant                  = "CMDRUN"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationFileFieldConstant             = "config_file"
	configurationShellFieldConstant            = "shell"
	configurationTelemetryFieldConstant        = "telemetry"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant      = "unable to use working directory %q: %w"
	telemetryShutdownErrorTemplateConstant     = "unable to shut down telemetry: %w"
	rootCommandInfoMessageConstant             = "cmdrun CLI executed"
	rootCommandDebugMessageConstant            = "cmdrun CLI diagnostics"
	logFieldCommandNameConstant                = "command_name"
	logFieldArgumentCountConstant              = "argument_count"
	logFieldArgumentsConstant                  = "arguments"
	loggerNotInitializedMessageConstant        = "logger not initialized"
	defaultConfigurationSearchPathConstant     = "."
	defaultLogLevelConstant                    = string(utils.LogLevelInfo)
	defaultLogFormatConstant                   = string(utils.LogFormatConsole)
	defaultMaxAttemptsConstant                 = 3
	defaultBackoffStepConstant                 = time.Second
	defaultWaitDelayConstant                   = 5 * time.Second
	environmentAssignmentSeparatorConstant     = "="
	environmentAssignmentErrorTemplateConstant = "invalid environment entry %q: expected KEY=VALUE"
	telemetryShutdownTimeoutConstant           = 5 * time.Second
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration    `mapstructure:"common"`
	Execution ApplicationExecutionConfiguration `mapstructure:"execution"`
	Telemetry ApplicationTelemetryConfiguration `mapstructure:"telemetry"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationExecutionConfiguration stores shell executor settings.
type ApplicationExecutionConfiguration struct {
	Shell       string        `mapstructure:"shell"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BackoffStep time.Duration `mapstructure:"backoff_step"`
	WaitDelay   time.Duration `mapstructure:"wait_delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SyntaxCheck bool          `mapstructure:"syntax_check"`
	Environment []string      `mapstructure:"environment"`
}

// ApplicationTelemetryConfiguration toggles span logging.
type ApplicationTelemetryConfiguration struct {
	Enabled bool `mapstructure:"enabled"`
}

// Application wires the Cobra root command, configuration loader, structured logger, and shell executor.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	tracerProvider         *sdktrace.TracerProvider
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	versionFlagValue       bool
	commandContextFlags    *flagutils.CommandContextFlagValues
	executionFlagValues    *flagutils.ExecutionFlagValues
	commandContextAccessor utils.CommandContextAccessor
	directoryResolver      *pathutils.DirectoryResolver
	commandRunner          execshell.CommandRunner
	versionResolver        func(context.Context) string
	exitFunction           func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		directoryResolver:      pathutils.NewDirectoryResolver(pathutils.NewHomeExpander()),
		versionResolver:        resolveApplicationVersion,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if application.versionFlagValue {
				application.printVersion(command)
				return nil
			}
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)
	application.commandContextFlags = flagutils.BindCommandContextFlags(cobraCommand, flagutils.CommandContextFlagValues{}, flagutils.DefaultCommandContextFlagDefinitions())
	application.executionFlagValues = flagutils.BindExecutionFlags(cobraCommand, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())

	for _, mode := range []shellcmd.Mode{shellcmd.ModeBuffered, shellcmd.ModeStreaming, shellcmd.ModeSimple} {
		builder := shellcmd.CommandBuilder{
			Mode: mode,
			LoggerProvider: func() *zap.Logger {
				return application.logger
			},
			ExecutorProvider: application.buildExecutor,
		}
		subcommand, buildError := builder.Build()
		if buildError == nil {
			cobraCommand.AddCommand(subcommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy against the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy against the provided arguments.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.Execute()
	if shutdownError := application.shutdownTelemetry(); shutdownError != nil && executionError == nil {
		executionError = fmt.Errorf(telemetryShutdownErrorTemplateConstant, shutdownError)
	}
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       defaultLogLevelConstant,
		commonLogFormatConfigKeyConstant:      defaultLogFormatConstant,
		executionShellConfigKeyConstant:       "",
		executionMaxAttemptsConfigKeyConstant: defaultMaxAttemptsConstant,
		executionBackoffStepConfigKeyConstant: defaultBackoffStepConstant,
		executionWaitDelayConfigKeyConstant:   defaultWaitDelayConstant,
		executionTimeoutConfigKeyConstant:     time.Duration(0),
		executionSyntaxCheckConfigKeyConstant: false,
		telemetryEnabledConfigKeyConstant:     false,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	if application.configuration.Telemetry.Enabled && application.tracerProvider == nil {
		application.tracerProvider = telemetry.NewLoggingTracerProvider(application.logger, execshell.NewCommandMessageFormatter())
	}

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationShellFieldConstant, application.configuration.Execution.Shell),
		zap.Bool(configurationTelemetryFieldConstant, application.configuration.Telemetry.Enabled),
	)

	executionFlags, executionFlagsError := application.resolveExecutionFlags(command)
	if executionFlagsError != nil {
		return executionFlagsError
	}

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, executionFlags)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// resolveExecutionFlags merges configured execution settings with explicitly set flags.
func (application *Application) resolveExecutionFlags(command *cobra.Command) (utils.ExecutionFlags, error) {
	executionFlags := utils.ExecutionFlags{
		SyntaxCheck: application.configuration.Execution.SyntaxCheck,
		Timeout:     application.configuration.Execution.Timeout,
	}

	environment, environmentError := parseEnvironmentAssignments(application.configuration.Execution.Environment)
	if environmentError != nil {
		return utils.ExecutionFlags{}, environmentError
	}

	if application.executionFlagValues != nil {
		if application.persistentFlagChanged(command, flagutils.SyntaxCheckFlagName) {
			executionFlags.SyntaxCheck = application.executionFlagValues.SyntaxCheck
		}
		if application.persistentFlagChanged(command, flagutils.TimeoutFlagName) {
			executionFlags.Timeout = application.executionFlagValues.Timeout
		}
		executionFlags.FailOnError = application.executionFlagValues.FailOnError
	}

	if application.commandContextFlags != nil {
		for environmentKey, environmentValue := range application.commandContextFlags.Environment {
			environment[environmentKey] = environmentValue
		}

		requestedDirectory := strings.TrimSpace(application.commandContextFlags.WorkingDirectory)
		if len(requestedDirectory) > 0 {
			resolvedDirectory, resolutionError := application.directoryResolver.Resolve(requestedDirectory)
			if resolutionError != nil {
				return utils.ExecutionFlags{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, requestedDirectory, resolutionError)
			}
			executionFlags.WorkingDirectory = resolvedDirectory
		}
	}

	if len(environment) > 0 {
		executionFlags.Environment = environment
	}

	return executionFlags, nil
}

// buildExecutor constructs the shell executor for one invocation.
func (application *Application) buildExecutor(executionFlags utils.ExecutionFlags) (*execshell.ShellExecutor, error) {
	commandRunner := application.commandRunner
	if commandRunner == nil {
		osCommandRunner := execshell.NewOSCommandRunner()
		if application.configuration.Execution.WaitDelay > 0 {
			osCommandRunner.WaitDelay = application.configuration.Execution.WaitDelay
		}
		commandRunner = osCommandRunner
	}

	messageFormatter := execshell.NewCommandMessageFormatter()
	executorOptions := []execshell.ExecutorOption{
		execshell.WithShellPath(application.configuration.Execution.Shell),
		execshell.WithMessageFormatter(messageFormatter),
		execshell.WithBufferedRetryPolicy(execshell.RetryPolicy{
			MaxAttempts: application.configuration.Execution.MaxAttempts,
			BackoffStep: application.configuration.Execution.BackoffStep,
		}),
	}
	if executionFlags.SyntaxCheck {
		executorOptions = append(executorOptions, execshell.WithCommandValidator(execshell.NewSyntaxValidator()))
	}
	if application.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(application.consoleLogger, messageFormatter)))
	}
	if application.tracerProvider != nil {
		executorOptions = append(executorOptions, execshell.WithTracer(telemetry.NewOpenTelemetryTracer(application.tracerProvider)))
	}

	return execshell.NewShellExecutor(application.logger, commandRunner, executorOptions...)
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) printVersion(command *cobra.Command) {
	version := application.versionResolver(command.Context())
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, version)
	application.exitFunction(0)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.versionFlagValue {
		return nil
	}
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) shutdownTelemetry() error {
	if application.tracerProvider == nil {
		return nil
	}
	shutdownContext, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeoutConstant)
	defer cancel()
	shutdownError := application.tracerProvider.Shutdown(shutdownContext)
	application.tracerProvider = nil
	return shutdownError
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// parseEnvironmentAssignments converts configured KEY=VALUE entries into a map.
func parseEnvironmentAssignments(assignments []string) (map[string]string, error) {
	environment := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		trimmedAssignment := strings.TrimSpace(assignment)
		if len(trimmedAssignment) == 0 {
			continue
		}
		environmentKey, environmentValue, separatorFound := strings.Cut(trimmedAssignment, environmentAssignmentSeparatorConstant)
		if !separatorFound || len(strings.TrimSpace(environmentKey)) == 0 {
			return nil, fmt.Errorf(environmentAssignmentErrorTemplateConstant, assignment)
		}
		environment[strings.TrimSpace(environmentKey)] = environmentValue
	}
	return environment, nil
}

func resolveApplicationVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 {
		return unknownVersionConstant
	}
	return buildInformation.Main.Version
}
