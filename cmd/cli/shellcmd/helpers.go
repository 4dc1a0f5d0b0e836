package shellcmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/cmdrun/internal/execshell"
	"github.com/temirov/cmdrun/internal/utils"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ExecutorProvider constructs a shell executor for the merged execution flags of one invocation.
type ExecutorProvider func(executionFlags utils.ExecutionFlags) (*execshell.ShellExecutor, error)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
