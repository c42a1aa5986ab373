package console

import (
	"io"
	"strings"
	"sync"

	"github.com/temirov/gitconsole/internal/utils"
)

// TerminalSurface keeps a scrollback and streams it to a writer while visible.
// Text appended while hidden is replayed the next time the surface is shown.
type TerminalSurface struct {
	mutex       sync.Mutex
	writer      io.Writer
	scrollback  strings.Builder
	shownOffset int
	visible     bool
}

// NewTerminalSurface creates a hidden surface writing to writer.
func NewTerminalSurface(writer io.Writer) *TerminalSurface {
	return &TerminalSurface{writer: utils.NewFlushingWriter(writer)}
}

// NewTerminalSurfaceFactory returns a factory producing surfaces that share writer.
func NewTerminalSurfaceFactory(writer io.Writer) SurfaceFactory {
	return func() Surface {
		return NewTerminalSurface(writer)
	}
}

// Write appends text to the scrollback.
func (surface *TerminalSurface) Write(text string) {
	surface.mutex.Lock()
	defer surface.mutex.Unlock()

	surface.scrollback.WriteString(text)
	if surface.visible {
		surface.flush()
	}
}

// SetVisible shows or hides the surface.
func (surface *TerminalSurface) SetVisible(visible bool) {
	surface.mutex.Lock()
	defer surface.mutex.Unlock()

	surface.visible = visible
	if visible {
		surface.flush()
	}
}

// Visible reports whether the surface is shown.
func (surface *TerminalSurface) Visible() bool {
	surface.mutex.Lock()
	defer surface.mutex.Unlock()
	return surface.visible
}

// Contents returns the whole scrollback.
func (surface *TerminalSurface) Contents() string {
	surface.mutex.Lock()
	defer surface.mutex.Unlock()
	return surface.scrollback.String()
}

func (surface *TerminalSurface) flush() {
	contents := surface.scrollback.String()
	if surface.shownOffset >= len(contents) {
		return
	}
	if surface.writer != nil {
		io.WriteString(surface.writer, contents[surface.shownOffset:])
	}
	surface.shownOffset = len(contents)
}
