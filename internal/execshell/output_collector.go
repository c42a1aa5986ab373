package execshell

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	fragmentSeparatorConstant    = "\n"
	consoleLineSeparatorConstant = "\r\n"
	carriageReturnStringConstant = "\r"
	lineFeedStringConstant       = "\n"
	emptyStringConstant          = ""
)

var lineBreakRemover = strings.NewReplacer(carriageReturnStringConstant, emptyStringConstant, lineFeedStringConstant, emptyStringConstant)

// StreamKind identifies the output stream an event originated from.
type StreamKind int

// Output streams produced by a process.
const (
	StreamStandardOutput StreamKind = iota
	StreamStandardError
)

// OutputEvent carries one chunk of raw output. The first fragment continues the
// line left open by the previous chunk; every other fragment starts a new line.
type OutputEvent struct {
	Stream    StreamKind
	Fragments []string
}

// ExitEvent carries the exit code of a finished process.
type ExitEvent struct {
	ExitCode int
}

// SplitChunk converts raw bytes read from a stream into chunk fragments.
func SplitChunk(chunk []byte) []string {
	return strings.Split(string(chunk), fragmentSeparatorConstant)
}

// OutputCollector accumulates chunk fragments of one stream into lines with terminal control sequences removed.
// Lines are kept raw and stripped when read, so a character or escape sequence split across chunks survives intact.
type OutputCollector struct {
	rawLines []string
}

// NewOutputCollector creates a collector holding a single open line.
func NewOutputCollector() *OutputCollector {
	return &OutputCollector{rawLines: []string{emptyStringConstant}}
}

// Collect appends the fragments of one chunk.
func (collector *OutputCollector) Collect(fragments []string) {
	for fragmentIndex, fragment := range fragments {
		if fragmentIndex == 0 {
			lastIndex := len(collector.rawLines) - 1
			collector.rawLines[lastIndex] += fragment
			continue
		}
		collector.rawLines = append(collector.rawLines, fragment)
	}
}

// Lines returns the collected lines without empty entries.
func (collector *OutputCollector) Lines() []string {
	lines := make([]string, 0, len(collector.rawLines))
	for _, rawLine := range collector.rawLines {
		line := StripControlSequences(rawLine)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// StripControlSequences removes ANSI escape sequences and bare carriage returns or line feeds.
func StripControlSequences(fragment string) string {
	return lineBreakRemover.Replace(ansi.Strip(fragment))
}

// FormatConsoleChunk joins raw fragments for the console using carriage-return line feed pairs.
func FormatConsoleChunk(fragments []string) string {
	return strings.Join(fragments, consoleLineSeparatorConstant)
}
