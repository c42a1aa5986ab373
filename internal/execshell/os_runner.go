package execshell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"unicode/utf8"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

const (
	environmentAssignmentSeparatorConstant  = "="
	environmentAssignmentTemplateConstant   = "%s%s%s"
	readBufferSizeConstant                  = 4096
	unknownExitCodeConstant                 = -1
	terminalFallbackMessageConstant         = "pseudo-terminal unavailable, using pipe for standard output"
	standardInputWriteFailedMessageConstant = "failed to write standard input"
	processWaitFailedMessageConstant        = "failed to wait for process"
	logFieldCommandConstant                 = "command"
)

// OSCommandRunner launches commands with standard output attached to a fixed-size pseudo-terminal.
type OSCommandRunner struct {
	logger *zap.Logger
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner(logger *zap.Logger) *OSCommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSCommandRunner{logger: logger}
}

// Start launches the command and streams its output to the handlers.
func (runner *OSCommandRunner) Start(command ShellCommand, terminalSize TerminalSize, handlers StreamHandlers) (RuntimeHandle, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.Command(string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	executable.Env = mergeEnvironment(command.Details.EnvironmentVariables)

	standardOutputReader, standardOutputWriter, outputError := runner.openStandardOutput(command, terminalSize)
	if outputError != nil {
		return 0, outputError
	}
	executable.Stdout = standardOutputWriter

	standardErrorReader, standardErrorError := executable.StderrPipe()
	if standardErrorError != nil {
		closeFiles(standardOutputReader, standardOutputWriter)
		return 0, standardErrorError
	}

	var standardInputWriter io.WriteCloser
	if len(command.Details.StandardInput) > 0 {
		var standardInputError error
		standardInputWriter, standardInputError = executable.StdinPipe()
		if standardInputError != nil {
			closeFiles(standardOutputReader, standardOutputWriter)
			return 0, standardInputError
		}
	}

	if startError := executable.Start(); startError != nil {
		closeFiles(standardOutputReader, standardOutputWriter)
		return 0, startError
	}
	// The child holds its own copy; reads on the reader end once the child exits.
	standardOutputWriter.Close()

	if standardInputWriter != nil {
		go runner.writeStandardInput(command, standardInputWriter, command.Details.StandardInput)
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go runner.pump(StreamStandardOutput, standardOutputReader, handlers.Output, &readers)
	go runner.pump(StreamStandardError, standardErrorReader, handlers.Output, &readers)

	go func() {
		readers.Wait()
		exitCode := runner.resolveExitCode(command, executable.Wait())
		standardOutputReader.Close()
		handlers.Exit(ExitEvent{ExitCode: exitCode})
	}()

	return RuntimeHandle(executable.Process.Pid), nil
}

func (runner *OSCommandRunner) openStandardOutput(command ShellCommand, terminalSize TerminalSize) (*os.File, *os.File, error) {
	terminal, terminalSlave, terminalError := pty.Open()
	if terminalError == nil {
		sizeError := pty.Setsize(terminal, &pty.Winsize{Cols: terminalSize.Columns, Rows: terminalSize.Rows})
		if sizeError == nil {
			return terminal, terminalSlave, nil
		}
		closeFiles(terminal, terminalSlave)
		terminalError = sizeError
	}

	runner.logger.Warn(terminalFallbackMessageConstant, zap.String(logFieldCommandConstant, command.Label()), zap.Error(terminalError))
	return os.Pipe()
}

func (runner *OSCommandRunner) writeStandardInput(command ShellCommand, writer io.WriteCloser, input string) {
	if _, writeError := io.WriteString(writer, input); writeError != nil {
		runner.logger.Warn(standardInputWriteFailedMessageConstant, zap.String(logFieldCommandConstant, command.Label()), zap.Error(writeError))
	}
	writer.Close()
}

func (runner *OSCommandRunner) pump(stream StreamKind, reader io.Reader, deliver func(OutputEvent), readers *sync.WaitGroup) {
	defer readers.Done()
	buffer := make([]byte, readBufferSizeConstant)
	var pending []byte
	for {
		bytesRead, readError := reader.Read(buffer)
		if bytesRead > 0 {
			pending = append(pending, buffer[:bytesRead]...)
			complete, incomplete := splitIncompleteRune(pending)
			if len(complete) > 0 && deliver != nil {
				deliver(OutputEvent{Stream: stream, Fragments: SplitChunk(complete)})
			}
			pending = append([]byte{}, incomplete...)
		}
		if readError != nil {
			if len(pending) > 0 && deliver != nil {
				deliver(OutputEvent{Stream: stream, Fragments: SplitChunk(pending)})
			}
			return
		}
	}
}

// splitIncompleteRune separates a trailing partial UTF-8 sequence so it can be joined with the next read.
func splitIncompleteRune(data []byte) ([]byte, []byte) {
	lowestIndex := len(data) - utf8.UTFMax
	if lowestIndex < 0 {
		lowestIndex = 0
	}
	for index := len(data) - 1; index >= lowestIndex; index-- {
		if !utf8.RuneStart(data[index]) {
			continue
		}
		if utf8.FullRune(data[index:]) {
			return data, nil
		}
		return data[:index], data[index:]
	}
	return data, nil
}

func (runner *OSCommandRunner) resolveExitCode(command ShellCommand, waitError error) int {
	if waitError == nil {
		return 0
	}
	exitError := &exec.ExitError{}
	if errors.As(waitError, &exitError) {
		return exitError.ExitCode()
	}
	runner.logger.Error(processWaitFailedMessageConstant, zap.String(logFieldCommandConstant, command.Label()), zap.Error(waitError))
	return unknownExitCodeConstant
}

func mergeEnvironment(environmentVariables map[string]string) []string {
	mergedEnvironment := append([]string{}, os.Environ()...)
	for environmentKey, environmentValue := range environmentVariables {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
	}
	return mergedEnvironment
}

func closeFiles(files ...*os.File) {
	for _, file := range files {
		if file != nil {
			file.Close()
		}
	}
}
