package execshell

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultConsoleRevealTimeoutConstant = 2000 * time.Millisecond
	defaultTerminalColumnsConstant      = 80
	defaultTerminalRowsConstant         = 24
)

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(*ShellExecutor)

// WithConsoleSink routes command output and reveal requests to the sink.
func WithConsoleSink(sink ConsoleSink) ExecutorOption {
	return func(executor *ShellExecutor) {
		if sink != nil {
			executor.console = sink
		}
	}
}

// WithConsoleRevealTimeout sets how long a command may run before its watchdog reveals the console.
func WithConsoleRevealTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *ShellExecutor) {
		if timeout > 0 {
			executor.revealTimeout = timeout
		}
	}
}

// WithTerminalSize sets the character grid presented to commands.
func WithTerminalSize(size TerminalSize) ExecutorOption {
	return func(executor *ShellExecutor) {
		if size.Columns > 0 && size.Rows > 0 {
			executor.terminalSize = size
		}
	}
}

// WithCommandEventObserver registers an observer for process lifecycle events.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// ShellExecutor owns the process-wide state shared by every command it runs:
// the event loop, the registry of running processes and the console suppression switch.
type ShellExecutor struct {
	logger        *zap.Logger
	runner        CommandRunner
	loop          *EventLoop
	registry      *ProcessRegistry
	suppression   *SuppressionController
	console       ConsoleSink
	observer      CommandEventObserver
	revealTimeout time.Duration
	terminalSize  TerminalSize
	closed        atomic.Bool
	stopped       chan struct{}
}

// NewShellExecutor constructs a ShellExecutor and starts its event loop.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:        logger,
		runner:        runner,
		registry:      NewProcessRegistry(),
		console:       &discardConsoleSink{},
		observer:      noopCommandEventObserver{},
		revealTimeout: defaultConsoleRevealTimeoutConstant,
		terminalSize:  TerminalSize{Columns: defaultTerminalColumnsConstant, Rows: defaultTerminalRowsConstant},
		stopped:       make(chan struct{}),
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}

	executor.suppression = NewSuppressionController(executor.registry, executor.console, logger)
	executor.loop = NewEventLoop(logger)
	return executor, nil
}

// NewProcess prepares a process for the command without starting it.
func (executor *ShellExecutor) NewProcess(command ShellCommand) *Process {
	return newProcess(executor, command)
}

// Execute runs the command and waits for its result within the context bound.
// A nonzero exit code is reported in the result, not as an error.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := executor.NewProcess(command)
	if spawnError := process.Spawn(nil); spawnError != nil {
		return ExecutionResult{}, spawnError
	}
	return process.Wait(executionContext)
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

// SuppressConsole disables automatic console reveal, stops running watchdogs and hides the console.
func (executor *ShellExecutor) SuppressConsole() {
	executor.loop.Post(executor.suppression.Suppress)
}

// ResumeConsole re-enables automatic console reveal and re-arms watchdogs of running processes.
func (executor *ShellExecutor) ResumeConsole() {
	executor.loop.Post(executor.suppression.Resume)
}

// ConsoleClosed tells the executor the user closed the console; the next append recreates it.
func (executor *ShellExecutor) ConsoleClosed() {
	executor.loop.Post(func() {
		if resettable, isResettable := executor.console.(interface{ Close() }); isResettable {
			resettable.Close()
		}
	})
}

// ConsoleSuppressed reports whether automatic console reveal is disabled.
func (executor *ShellExecutor) ConsoleSuppressed(executionContext context.Context) (bool, error) {
	suppressed := false
	invokeError := executor.loop.Invoke(executionContext, func() {
		suppressed = executor.suppression.Suppressed()
	})
	return suppressed, invokeError
}

// RunningProcessCount returns the number of registered processes.
func (executor *ShellExecutor) RunningProcessCount(executionContext context.Context) (int, error) {
	count := 0
	invokeError := executor.loop.Invoke(executionContext, func() {
		count = executor.registry.Len()
	})
	return count, invokeError
}

// Sync waits until every event queued so far has been handled.
func (executor *ShellExecutor) Sync(executionContext context.Context) error {
	return executor.loop.Sync(executionContext)
}

// Close stops the event loop. Events of commands still running are dropped
// and their pending Wait, SpawnBlocking and SpawnAsync calls return ErrExecutorClosed.
func (executor *ShellExecutor) Close() {
	if executor.closed.Swap(true) {
		return
	}
	executor.loop.Close()
	close(executor.stopped)
}
