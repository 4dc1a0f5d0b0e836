package utils

import (
	"context"
	"time"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	executionFlagsContextKeyConstant        = commandContextKey("executionFlags")
)

type commandContextKey string

// ExecutionFlags captures the per-invocation execution settings after configuration and flags are merged.
type ExecutionFlags struct {
	WorkingDirectory string
	Environment      map[string]string
	SyntaxCheck      bool
	FailOnError      bool
	Timeout          time.Duration
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithExecutionFlags attaches execution flags to the provided context. The environment map is copied.
func (accessor CommandContextAccessor) WithExecutionFlags(parentContext context.Context, executionFlags ExecutionFlags) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	if len(executionFlags.Environment) > 0 {
		duplicatedEnvironment := make(map[string]string, len(executionFlags.Environment))
		for environmentKey, environmentValue := range executionFlags.Environment {
			duplicatedEnvironment[environmentKey] = environmentValue
		}
		executionFlags.Environment = duplicatedEnvironment
	}
	return context.WithValue(parentContext, executionFlagsContextKeyConstant, executionFlags)
}

// ExecutionFlags extracts execution flags from the provided context.
func (accessor CommandContextAccessor) ExecutionFlags(executionContext context.Context) (ExecutionFlags, bool) {
	if executionContext == nil {
		return ExecutionFlags{}, false
	}
	executionFlags, executionFlagsAvailable := executionContext.Value(executionFlagsContextKeyConstant).(ExecutionFlags)
	return executionFlags, executionFlagsAvailable
}
