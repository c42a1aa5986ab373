package execshell

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	terminalEnvironmentKeyConstant    = "TERM"
	terminalEnvironmentValueConstant  = "xterm-256color"
	consoleHeaderPrefixConstant       = "> "
	watchdogElapsedTemplateConstant   = "Command running for: %d ms"
	resultUnavailableTemplateConstant = "%w: %w"
	processSpawnMessageConstant       = "running command"
	processStartFailedMessageConstant = "command failed to start"
	processExitedMessageConstant      = "command exited"
	watchdogFiredMessageConstant      = "command exceeded console reveal timeout"
	logFieldWorkingDirectoryConstant  = "working_directory"
	logFieldSpanConstant              = "span"
	logFieldHandleConstant            = "handle"
	logFieldExitCodeConstant          = "exit_code"
	logFieldElapsedConstant           = "elapsed"
)

type processState int32

const (
	processStateUnspawned processState = iota
	processStateRunning
	processStateExited
)

// Process is one execution of a ShellCommand. It moves from unspawned to running to exited exactly once.
type Process struct {
	executor *ShellExecutor
	command  ShellCommand
	span     string
	state    atomic.Int32

	handle     RuntimeHandle
	startedAt  time.Time
	onExit     func(ExecutionResult)
	registered chan struct{}
	done       chan struct{}

	// Owned by the event loop.
	standardOutput *OutputCollector
	standardError  *OutputCollector
	watchdog       *WatchdogTimer
	result         *ExecutionResult
}

func newProcess(executor *ShellExecutor, command ShellCommand) *Process {
	return &Process{
		executor:   executor,
		command:    command.clone(),
		span:       uuid.NewString(),
		registered: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Command returns the descriptor the process was created from.
func (process *Process) Command() ShellCommand {
	return process.command.clone()
}

// Span returns the identity used to group this process's console output.
func (process *Process) Span() string {
	return process.span
}

// Handle returns the operating system handle. Valid once Spawn succeeded.
func (process *Process) Handle() RuntimeHandle {
	return process.handle
}

// Running reports whether the process was spawned and has not exited yet.
func (process *Process) Running() bool {
	return processState(process.state.Load()) == processStateRunning
}

// Exited reports whether the process result is final.
func (process *Process) Exited() bool {
	return processState(process.state.Load()) == processStateExited
}

// Spawn starts the command. onExit, when provided, runs on the event loop with the finalized result.
func (process *Process) Spawn(onExit func(ExecutionResult)) error {
	if !process.state.CompareAndSwap(int32(processStateUnspawned), int32(processStateRunning)) {
		return ErrProcessAlreadySpawned
	}

	executor := process.executor
	if executor.closed.Load() {
		process.state.Store(int32(processStateUnspawned))
		return ErrExecutorClosed
	}

	process.onExit = onExit
	process.standardOutput = NewOutputCollector()
	process.standardError = NewOutputCollector()

	executor.logger.Info(
		processSpawnMessageConstant,
		zap.String(logFieldCommandConstant, process.command.Label()),
		zap.String(logFieldWorkingDirectoryConstant, process.command.Details.WorkingDirectory),
		zap.String(logFieldSpanConstant, process.span),
	)

	handlers := StreamHandlers{
		Output: func(event OutputEvent) {
			<-process.registered
			executor.loop.Post(func() { process.handleOutput(event) })
		},
		Exit: func(event ExitEvent) {
			<-process.registered
			executor.loop.Post(func() { process.handleExit(event) })
		},
	}

	process.startedAt = time.Now()
	handle, startError := executor.runner.Start(process.launchCommand(), executor.terminalSize, handlers)
	if startError != nil {
		process.state.Store(int32(processStateUnspawned))
		executionError := CommandExecutionError{Command: process.command.clone(), Cause: startError}
		executor.logger.Error(processStartFailedMessageConstant, zap.String(logFieldCommandConstant, process.command.Label()), zap.Error(startError))
		executor.observer.CommandExecutionFailed(process.command.clone(), executionError)
		return executionError
	}

	process.handle = handle
	executor.loop.Post(process.handleStarted)
	close(process.registered)
	return nil
}

// SpawnBlocking spawns the command and waits for it without a time bound.
func (process *Process) SpawnBlocking() (ExecutionResult, error) {
	if spawnError := process.Spawn(nil); spawnError != nil {
		return ExecutionResult{}, spawnError
	}
	return process.Wait(context.Background())
}

// SpawnAsync suspends the calling goroutine until the exit callback delivers the result.
// It cannot be cancelled and must not be called from an event loop callback.
// Closing the executor first resumes it with ErrExecutorClosed.
func (process *Process) SpawnAsync() (ExecutionResult, error) {
	continuation := make(chan ExecutionResult, 1)
	if spawnError := process.Spawn(func(result ExecutionResult) {
		continuation <- result
	}); spawnError != nil {
		return ExecutionResult{}, spawnError
	}

	select {
	case result := <-continuation:
		return result, nil
	case <-process.executor.stopped:
	}

	select {
	case result := <-continuation:
		return result, nil
	default:
		return ExecutionResult{}, ErrExecutorClosed
	}
}

// Wait blocks until the process result is final, the context ends or the executor closes.
// The event loop keeps serving other processes meanwhile.
func (process *Process) Wait(executionContext context.Context) (ExecutionResult, error) {
	if processState(process.state.Load()) == processStateUnspawned {
		return ExecutionResult{}, ErrProcessNotSpawned
	}

	select {
	case <-process.done:
	case <-executionContext.Done():
	case <-process.executor.stopped:
	}

	select {
	case <-process.done:
		return *process.result, nil
	default:
	}
	if executionContext.Err() != nil {
		return ExecutionResult{}, fmt.Errorf(resultUnavailableTemplateConstant, ErrResultUnavailable, executionContext.Err())
	}
	return ExecutionResult{}, ErrExecutorClosed
}

func (process *Process) launchCommand() ShellCommand {
	launchCommand := process.command.clone()
	environment := make(map[string]string, len(launchCommand.Details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range launchCommand.Details.EnvironmentVariables {
		environment[environmentKey] = environmentValue
	}
	environment[terminalEnvironmentKeyConstant] = terminalEnvironmentValueConstant
	launchCommand.Details.EnvironmentVariables = environment
	return launchCommand
}

func (process *Process) handleStarted() {
	executor := process.executor
	executor.registry.Register(process.handle, process)
	if !executor.suppression.Suppressed() {
		process.armWatchdog()
	}
	executor.observer.CommandStarted(process.command.clone(), process.handle)
}

func (process *Process) handleOutput(event OutputEvent) {
	collector := process.standardOutput
	if event.Stream == StreamStandardError {
		collector = process.standardError
	}
	collector.Collect(event.Fragments)

	if event.Stream == StreamStandardError || process.command.Details.Verbose {
		process.appendToConsole(event.Fragments)
	}
}

func (process *Process) handleExit(event ExitEvent) {
	executor := process.executor
	process.stopWatchdog()
	executor.registry.Release(process.handle)

	result := ExecutionResult{
		StandardOutput: process.standardOutput.Lines(),
		StandardError:  process.standardError.Lines(),
		ExitCode:       event.ExitCode,
		Elapsed:        time.Since(process.startedAt),
	}
	process.result = &result
	process.state.Store(int32(processStateExited))

	executor.logger.Info(
		processExitedMessageConstant,
		zap.String(logFieldCommandConstant, process.command.Label()),
		zap.Int(logFieldHandleConstant, int(process.handle)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.Duration(logFieldElapsedConstant, result.Elapsed),
	)

	if result.ExitCode != 0 && !executor.suppression.Suppressed() {
		executor.console.Show()
	}

	close(process.done)
	executor.observer.CommandCompleted(process.command.clone(), result)
	if process.onExit != nil {
		process.onExit(result)
	}
}

func (process *Process) armWatchdog() {
	process.stopWatchdog()
	process.watchdog = NewWatchdogTimer(process.executor.loop, process.executor.revealTimeout, process.handleWatchdogFired)
}

func (process *Process) stopWatchdog() {
	if process.watchdog == nil {
		return
	}
	process.watchdog.Stop()
	process.watchdog = nil
}

func (process *Process) handleWatchdogFired() {
	process.watchdog = nil
	if process.result != nil && process.result.ExitCode == 0 {
		return
	}

	if !process.command.Details.Verbose {
		if bufferedLines := process.standardOutput.Lines(); len(bufferedLines) > 0 {
			process.appendToConsole(append(bufferedLines, emptyStringConstant))
		}
	}

	elapsed := time.Since(process.startedAt)
	process.appendToConsole([]string{fmt.Sprintf(watchdogElapsedTemplateConstant, elapsed.Milliseconds()), emptyStringConstant})
	process.executor.console.Show()

	process.executor.logger.Debug(
		watchdogFiredMessageConstant,
		zap.String(logFieldCommandConstant, process.command.Label()),
		zap.Duration(logFieldElapsedConstant, elapsed),
	)
}

func (process *Process) appendToConsole(fragments []string) {
	console := process.executor.console
	if console.CurrentSpan() != process.span {
		console.Append(consoleHeaderPrefixConstant + process.command.Label() + consoleLineSeparatorConstant)
		console.SetSpan(process.span)
	}
	console.Append(FormatConsoleChunk(fragments))
}
