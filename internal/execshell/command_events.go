package execshell

// CommandEventObserver receives lifecycle notifications for spawned processes.
// Notifications are delivered on the event loop, except start failures which
// are reported on the goroutine that called Spawn.
type CommandEventObserver interface {
	// CommandStarted reports that the operating system started the command.
	CommandStarted(command ShellCommand, handle RuntimeHandle)
	// CommandCompleted reports the finalized result of a command, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports that the command could not be started.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand, RuntimeHandle) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
