package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted is called before every attempt.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called once the shell exits, whatever its status.
	CommandCompleted(command ShellCommand, outcome ExecutionOutcome)
	// CommandExecutionFailed is called when the shell could not be launched or waited on.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// commandEventObservers fans every event out to each registered observer in order.
// An empty set discards events.
type commandEventObservers []CommandEventObserver

func (observers commandEventObservers) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		observer.CommandStarted(command)
	}
}

func (observers commandEventObservers) CommandCompleted(command ShellCommand, outcome ExecutionOutcome) {
	for _, observer := range observers {
		observer.CommandCompleted(command, outcome)
	}
}

func (observers commandEventObservers) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		observer.CommandExecutionFailed(command, failure)
	}
}
