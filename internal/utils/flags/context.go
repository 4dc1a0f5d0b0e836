package flags

import "github.com/spf13/cobra"

const (
	// WorkingDirectoryFlagName exposes the shared working directory flag name.
	WorkingDirectoryFlagName = "dir"
	// WorkingDirectoryFlagShorthand provides the shorthand for the working directory flag.
	WorkingDirectoryFlagShorthand = "C"
	// WorkingDirectoryFlagUsage describes the shared working directory flag purpose.
	WorkingDirectoryFlagUsage = "Directory to run the command in (defaults to the current directory)"
	// EnvironmentFlagName exposes the shared environment override flag name.
	EnvironmentFlagName = "env"
	// EnvironmentFlagShorthand provides the shorthand for the environment override flag.
	EnvironmentFlagShorthand = "e"
	// EnvironmentFlagUsage describes the shared environment override flag purpose.
	EnvironmentFlagUsage = "Environment variable override in KEY=VALUE form (repeatable)"
)

// CommandContextFlagDefinition captures configuration for a single command context flag.
type CommandContextFlagDefinition struct {
	Name      string
	Shorthand string
	Usage     string
	Enabled   bool
}

// CommandContextFlagDefinitions groups the working directory and environment flag definitions.
type CommandContextFlagDefinitions struct {
	WorkingDirectory CommandContextFlagDefinition
	Environment      CommandContextFlagDefinition
}

// CommandContextFlagValues stores the values bound to command context flags.
type CommandContextFlagValues struct {
	WorkingDirectory string
	Environment      map[string]string
}

// DefaultCommandContextFlagDefinitions returns the standard --dir and --env definitions.
func DefaultCommandContextFlagDefinitions() CommandContextFlagDefinitions {
	return CommandContextFlagDefinitions{
		WorkingDirectory: CommandContextFlagDefinition{
			Name:      WorkingDirectoryFlagName,
			Shorthand: WorkingDirectoryFlagShorthand,
			Usage:     WorkingDirectoryFlagUsage,
			Enabled:   true,
		},
		Environment: CommandContextFlagDefinition{
			Name:      EnvironmentFlagName,
			Shorthand: EnvironmentFlagShorthand,
			Usage:     EnvironmentFlagUsage,
			Enabled:   true,
		},
	}
}

// BindCommandContextFlags attaches working directory and environment flags to the provided command using persistent scope.
func BindCommandContextFlags(command *cobra.Command, defaults CommandContextFlagValues, definitions CommandContextFlagDefinitions) *CommandContextFlagValues {
	values := CommandContextFlagValues{
		WorkingDirectory: defaults.WorkingDirectory,
		Environment:      copyEnvironment(defaults.Environment),
	}
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	if definitions.WorkingDirectory.Enabled && len(definitions.WorkingDirectory.Name) > 0 {
		persistentFlagSet.StringVarP(&values.WorkingDirectory, definitions.WorkingDirectory.Name, definitions.WorkingDirectory.Shorthand, defaults.WorkingDirectory, definitions.WorkingDirectory.Usage)
	}
	if definitions.Environment.Enabled && len(definitions.Environment.Name) > 0 {
		persistentFlagSet.StringToStringVarP(&values.Environment, definitions.Environment.Name, definitions.Environment.Shorthand, copyEnvironment(defaults.Environment), definitions.Environment.Usage)
	}

	return &values
}

func copyEnvironment(environment map[string]string) map[string]string {
	if len(environment) == 0 {
		return nil
	}
	duplicated := make(map[string]string, len(environment))
	for environmentKey, environmentValue := range environment {
		duplicated[environmentKey] = environmentValue
	}
	return duplicated
}
