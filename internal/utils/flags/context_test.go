package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindCommandContextFlagsUsesDefaultsAndParsesValues(t *testing.T) {
	command := &cobra.Command{}

	values := BindCommandContextFlags(command, CommandContextFlagValues{WorkingDirectory: "/tmp/default"}, DefaultCommandContextFlagDefinitions())

	require.NotNil(t, values)
	require.Equal(t, "/tmp/default", values.WorkingDirectory)
	require.Empty(t, values.Environment)

	parseError := command.ParseFlags([]string{"--dir", "/workspace", "--env", "GIT_TERMINAL_PROMPT=0", "-e", "LANG=C"})
	require.NoError(t, parseError)
	require.Equal(t, "/workspace", values.WorkingDirectory)
	require.Equal(t, map[string]string{"GIT_TERMINAL_PROMPT": "0", "LANG": "C"}, values.Environment)
}

func TestBindCommandContextFlagsSupportsShorthand(t *testing.T) {
	command := &cobra.Command{}

	values := BindCommandContextFlags(command, CommandContextFlagValues{}, DefaultCommandContextFlagDefinitions())

	parseError := command.ParseFlags([]string{"-C", "/src"})
	require.NoError(t, parseError)
	require.Equal(t, "/src", values.WorkingDirectory)
}

func TestBindCommandContextFlagsSkipsDisabledDefinitions(t *testing.T) {
	command := &cobra.Command{}

	values := BindCommandContextFlags(command, CommandContextFlagValues{Environment: map[string]string{"A": "1"}}, CommandContextFlagDefinitions{})

	require.Nil(t, command.PersistentFlags().Lookup(WorkingDirectoryFlagName))
	require.Nil(t, command.PersistentFlags().Lookup(EnvironmentFlagName))
	require.Equal(t, map[string]string{"A": "1"}, values.Environment)
}

func TestBindCommandContextFlagsToleratesNilCommand(t *testing.T) {
	values := BindCommandContextFlags(nil, CommandContextFlagValues{WorkingDirectory: "/tmp"}, DefaultCommandContextFlagDefinitions())

	require.Equal(t, "/tmp", values.WorkingDirectory)
}
