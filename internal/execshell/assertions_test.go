package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cmdrun/internal/execshell"
)

const (
	testAssertionMessageConstant = "ctx"
)

func TestFailOnNonZero(testInstance *testing.T) {
	testCases := []struct {
		name            string
		outcome         execshell.ExecutionOutcome
		expectError     bool
		expectedMessage string
	}{
		{
			name:    "zero_exit_is_accepted",
			outcome: execshell.ExecutionOutcome{StandardOutput: "a"},
		},
		{
			name:            "standard_output_only",
			outcome:         execshell.ExecutionOutcome{StandardOutput: "a", ExitStatus: 1},
			expectError:     true,
			expectedMessage: "ctx\na",
		},
		{
			name:            "both_streams",
			outcome:         execshell.ExecutionOutcome{StandardOutput: "a", StandardError: "b", ExitStatus: 1},
			expectError:     true,
			expectedMessage: "ctx\na\nb",
		},
		{
			name:            "standard_error_only",
			outcome:         execshell.ExecutionOutcome{StandardError: "b", ExitStatus: 127},
			expectError:     true,
			expectedMessage: "ctx\nb",
		},
		{
			name:            "no_output",
			outcome:         execshell.ExecutionOutcome{ExitStatus: execshell.SystemFailureExitStatus},
			expectError:     true,
			expectedMessage: "ctx\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			assertionError := execshell.FailOnNonZero(testAssertionMessageConstant, testCase.outcome)
			if !testCase.expectError {
				require.NoError(testInstance, assertionError)
				return
			}
			require.EqualError(testInstance, assertionError, testCase.expectedMessage)
			var nonZeroExitError execshell.NonZeroExitError
			require.ErrorAs(testInstance, assertionError, &nonZeroExitError)
			require.Equal(testInstance, testCase.outcome, nonZeroExitError.Outcome)
		})
	}
}

func TestCheckResult(testInstance *testing.T) {
	systemError := errors.New("fork/exec /bin/bash: no such file or directory")

	testCases := []struct {
		name            string
		outcome         execshell.LegacyExecutionOutcome
		expectedMessage string
	}{
		{
			name:    "success_is_accepted",
			outcome: execshell.LegacyExecutionOutcome{Command: "true", WorkingDirectory: "/tmp"},
		},
		{
			name:    "non_zero_exit_without_system_error_is_accepted",
			outcome: execshell.LegacyExecutionOutcome{Command: "false", ExitStatus: 1},
		},
		{
			name:            "system_error_with_directory",
			outcome:         execshell.LegacyExecutionOutcome{Command: "make", WorkingDirectory: "/src", SystemError: systemError},
			expectedMessage: "error executing command: make in /src\nbuild: fork/exec /bin/bash: no such file or directory",
		},
		{
			name:            "system_error_without_directory",
			outcome:         execshell.LegacyExecutionOutcome{Command: "make", SystemError: systemError},
			expectedMessage: "error executing command: make in .\nbuild: fork/exec /bin/bash: no such file or directory",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			firstCheck := execshell.CheckResult(testCase.outcome, "build")
			secondCheck := execshell.CheckResult(testCase.outcome, "build")
			if len(testCase.expectedMessage) == 0 {
				require.NoError(testInstance, firstCheck)
				require.NoError(testInstance, secondCheck)
				return
			}
			require.EqualError(testInstance, firstCheck, testCase.expectedMessage)
			require.EqualError(testInstance, secondCheck, testCase.expectedMessage)
			require.ErrorIs(testInstance, firstCheck, systemError)
		})
	}
}
