package execshell_test

import (
	"errors"
	"strings"
	"sync"

	"github.com/temirov/gitconsole/internal/execshell"
)

const (
	testFirstRuntimeHandleConstant = execshell.RuntimeHandle(1000)
)

var errTestStartRefused = errors.New("exec: \"missing\": executable file not found in $PATH")

// launchedCommand is one Start call observed by scriptedCommandRunner.
type launchedCommand struct {
	command      execshell.ShellCommand
	terminalSize execshell.TerminalSize
	handlers     execshell.StreamHandlers
	handle       execshell.RuntimeHandle
}

func (launch launchedCommand) emit(stream execshell.StreamKind, fragments ...string) {
	launch.handlers.Output(execshell.OutputEvent{Stream: stream, Fragments: fragments})
}

func (launch launchedCommand) exit(exitCode int) {
	launch.handlers.Exit(execshell.ExitEvent{ExitCode: exitCode})
}

// scriptedCommandRunner records launches and lets the test drive their events.
type scriptedCommandRunner struct {
	mutex      sync.Mutex
	nextHandle execshell.RuntimeHandle
	startError error
	launches   []launchedCommand
	launched   chan launchedCommand
}

func newScriptedCommandRunner() *scriptedCommandRunner {
	return &scriptedCommandRunner{nextHandle: testFirstRuntimeHandleConstant, launched: make(chan launchedCommand, 16)}
}

func (runner *scriptedCommandRunner) Start(command execshell.ShellCommand, terminalSize execshell.TerminalSize, handlers execshell.StreamHandlers) (execshell.RuntimeHandle, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	if runner.startError != nil {
		return 0, runner.startError
	}

	launch := launchedCommand{command: command, terminalSize: terminalSize, handlers: handlers, handle: runner.nextHandle}
	runner.nextHandle++
	runner.launches = append(runner.launches, launch)
	runner.launched <- launch
	return launch.handle, nil
}

func (runner *scriptedCommandRunner) lastLaunch() launchedCommand {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	return runner.launches[len(runner.launches)-1]
}

// recordingConsoleSink keeps everything the executor asked the console to do.
type recordingConsoleSink struct {
	mutex     sync.Mutex
	appended  []string
	showCount int
	hideCount int
	span      string
}

func (sink *recordingConsoleSink) Append(text string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.appended = append(sink.appended, text)
}

func (sink *recordingConsoleSink) Show() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.showCount++
}

func (sink *recordingConsoleSink) Hide() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.hideCount++
}

func (sink *recordingConsoleSink) CurrentSpan() string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.span
}

func (sink *recordingConsoleSink) SetSpan(span string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.span = span
}

func (sink *recordingConsoleSink) shows() int {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.showCount
}

func (sink *recordingConsoleSink) hides() int {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.hideCount
}

func (sink *recordingConsoleSink) contents() []string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return append([]string{}, sink.appended...)
}

func (sink *recordingConsoleSink) text() string {
	return strings.Join(sink.contents(), "")
}

// recordingObserver keeps lifecycle notifications in arrival order.
type recordingObserver struct {
	mutex    sync.Mutex
	events   []string
	results  []execshell.ExecutionResult
	failures []error
}

func (observer *recordingObserver) CommandStarted(command execshell.ShellCommand, handle execshell.RuntimeHandle) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.events = append(observer.events, "started "+command.Label())
}

func (observer *recordingObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.events = append(observer.events, "completed "+command.Label())
	observer.results = append(observer.results, result)
}

func (observer *recordingObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.events = append(observer.events, "failed "+command.Label())
	observer.failures = append(observer.failures, failure)
}

func (observer *recordingObserver) recordedEvents() []string {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	return append([]string{}, observer.events...)
}
