package execshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	processAlreadySpawnedMessageConstant      = "process already spawned"
	processNotSpawnedMessageConstant          = "process not spawned"
	resultUnavailableMessageConstant          = "process result unavailable after wait"
	executorClosedMessageConstant             = "shell executor closed"
	commandExecutionErrorTemplateConstant     = "%s failed to start: %v"
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrProcessAlreadySpawned is returned when Spawn is invoked on a process that already started.
	ErrProcessAlreadySpawned = errors.New(processAlreadySpawnedMessageConstant)
	// ErrProcessNotSpawned is returned when Wait is invoked before Spawn.
	ErrProcessNotSpawned = errors.New(processNotSpawnedMessageConstant)
	// ErrResultUnavailable is returned when Wait stops polling before the process produced a result.
	ErrResultUnavailable = errors.New(resultUnavailableMessageConstant)
	// ErrExecutorClosed is returned when work is submitted after the executor shut down.
	ErrExecutorClosed = errors.New(executorClosedMessageConstant)
)

// CommandExecutionError reports that the operating system refused to start a command.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the start failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Label(), executionError.Cause)
}

// Unwrap exposes the underlying operating system error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}
