package execshell

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testHomeDirectoryConstant = "/home/operator"
)

func TestBuildStartedMessageIncludesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Script:  "git fetch --prune origin",
		Details: CommandDetails{WorkingDirectory: "/workspace/repo"},
	}

	require.Equal(t, "Running git fetch --prune origin (in /workspace/repo)", formatter.BuildStartedMessage(command))
	require.Equal(t, "Completed git fetch --prune origin (in /workspace/repo)", formatter.BuildSuccessMessage(command))
}

func TestBuildStartedMessageOmitsEmptyWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Script: "  ls -la  "}

	require.Equal(t, "Running ls -la", formatter.BuildStartedMessage(command))
}

func TestBuildFailureMessageIncludesStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Script: "make test"}

	testCases := []struct {
		name     string
		outcome  ExecutionOutcome
		expected string
	}{
		{
			name:     "with_standard_error",
			outcome:  ExecutionOutcome{ExitStatus: 2, StandardError: "  missing target\n"},
			expected: "make test failed with exit code 2: missing target",
		},
		{
			name:     "without_standard_error",
			outcome:  ExecutionOutcome{ExitStatus: 1},
			expected: "make test failed with exit code 1",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, formatter.BuildFailureMessage(command, testCase.outcome))
		})
	}
}

func TestBuildExecutionFailureMessage(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Script: "make"}

	require.Equal(t, "make failed: boom", formatter.BuildExecutionFailureMessage(command, errors.New("boom")))
	require.Equal(t, "make failed: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}

func TestBuildRetryMessage(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Script: "git push"}

	require.Equal(t, "Retrying git push in 2s after attempt 2", formatter.BuildRetryMessage(command, 2, 2*time.Second))
}

func TestFormatterRedactsHomeDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{HomeDirectory: testHomeDirectoryConstant}
	command := ShellCommand{
		Script:  "cat " + testHomeDirectoryConstant + "/.netrc",
		Details: CommandDetails{WorkingDirectory: testHomeDirectoryConstant + "/src"},
	}

	require.Equal(t, "Running cat ~/.netrc (in ~/src)", formatter.BuildStartedMessage(command))
	require.Equal(
		t,
		"cat ~/.netrc (in ~/src) failed with exit code 1: ~/.netrc: permission denied",
		formatter.BuildFailureMessage(command, ExecutionOutcome{ExitStatus: 1, StandardError: testHomeDirectoryConstant + "/.netrc: permission denied"}),
	)
	require.Equal(t, "plain text", formatter.Redact("plain text"))
}

func TestFormatterWithoutHomeDirectoryLeavesTextUntouched(t *testing.T) {
	formatter := CommandMessageFormatter{}

	require.Equal(t, testHomeDirectoryConstant, formatter.Redact(testHomeDirectoryConstant))
}

func TestNewCommandMessageFormatterReadsHome(t *testing.T) {
	t.Setenv("HOME", testHomeDirectoryConstant)

	require.Equal(t, testHomeDirectoryConstant, NewCommandMessageFormatter().HomeDirectory)
}
