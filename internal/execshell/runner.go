package execshell

// TerminalSize is the fixed character grid presented to launched commands.
type TerminalSize struct {
	Columns uint16
	Rows    uint16
}

// StreamHandlers receive the events of one launched command. Output may be
// invoked from several goroutines; Exit is invoked exactly once, after the last Output.
type StreamHandlers struct {
	Output func(OutputEvent)
	Exit   func(ExitEvent)
}

// CommandRunner launches operating system commands.
type CommandRunner interface {
	Start(command ShellCommand, terminalSize TerminalSize, handlers StreamHandlers) (RuntimeHandle, error)
}

// ConsoleSink is the scrollback surface that reveals command output to the user.
type ConsoleSink interface {
	Append(text string)
	Show()
	Hide()
	// CurrentSpan identifies the process whose output was appended last.
	CurrentSpan() string
	SetSpan(span string)
}

type discardConsoleSink struct {
	span string
}

func (sink *discardConsoleSink) Append(string) {}

func (sink *discardConsoleSink) Show() {}

func (sink *discardConsoleSink) Hide() {}

func (sink *discardConsoleSink) CurrentSpan() string {
	return sink.span
}

func (sink *discardConsoleSink) SetSpan(span string) {
	sink.span = span
}
