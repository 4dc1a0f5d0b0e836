package execshell

const (
	shellCommandFlagConstant = "-c"
)

// SystemFailureExitStatus is reported when the process produced no exit status of its own.
const SystemFailureExitStatus = -1

// OutputStream identifies one of the child process output streams.
type OutputStream string

// Supported output streams.
const (
	OutputStreamStandardOutput OutputStream = OutputStream("stdout")
	OutputStreamStandardError  OutputStream = OutputStream("stderr")
)

// OutputObserver receives output chunks in the order the child emits them on each stream.
// Chunks from the two streams may be delivered concurrently.
type OutputObserver interface {
	OutputReceived(stream OutputStream, chunk string)
}

// ExecutionRequest describes a command line to run under the configured shell.
type ExecutionRequest struct {
	Command              string
	WorkingDirectory     string
	EnvironmentOverrides map[string]string
	OutputObserver       OutputObserver
}

// CommandDetails captures the process-level settings of a shell invocation.
type CommandDetails struct {
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand is a fully resolved shell invocation.
type ShellCommand struct {
	ShellPath string
	Script    string
	Details   CommandDetails
}

// Arguments returns the shell arguments that interpret the script.
func (command ShellCommand) Arguments() []string {
	return []string{shellCommandFlagConstant, command.Script}
}

// ExecutionOutcome is the normalized result of a process that ran to exit.
type ExecutionOutcome struct {
	StandardOutput string `json:"stdout" yaml:"stdout"`
	StandardError  string `json:"stderr" yaml:"stderr"`
	ExitStatus     int    `json:"exit_status" yaml:"exit_status"`
}

// Succeeded reports whether the command exited with status zero.
func (outcome ExecutionOutcome) Succeeded() bool {
	return outcome.ExitStatus == 0
}

// LegacyExecutionOutcome is the buffered contract. SystemError is set only when
// the execution machinery failed; a non-zero ExitStatus alone is not a system error.
type LegacyExecutionOutcome struct {
	Command          string `json:"command" yaml:"command"`
	WorkingDirectory string `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	StandardOutput   string `json:"stdout" yaml:"stdout"`
	StandardError    string `json:"stderr" yaml:"stderr"`
	ExitStatus       int    `json:"exit_status" yaml:"exit_status"`
	SystemError      error  `json:"-" yaml:"-"`
}

// ExecutionOutcome projects the legacy outcome onto the unified shape.
func (outcome LegacyExecutionOutcome) ExecutionOutcome() ExecutionOutcome {
	return ExecutionOutcome{
		StandardOutput: outcome.StandardOutput,
		StandardError:  outcome.StandardError,
		ExitStatus:     outcome.ExitStatus,
	}
}
