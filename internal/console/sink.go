package console

import (
	"sync"

	"go.uber.org/zap"
)

const (
	surfaceCreatedMessageConstant = "console surface created"
	surfaceClosedMessageConstant  = "console surface closed"
)

// Surface is a visible scrollback created by the host user interface.
type Surface interface {
	Write(text string)
	SetVisible(visible bool)
}

// SurfaceFactory creates a new Surface.
type SurfaceFactory func() Surface

// Sink routes command output to a lazily created Surface and remembers which span appended last.
type Sink struct {
	mutex   sync.Mutex
	factory SurfaceFactory
	surface Surface
	visible bool
	span    string
	logger  *zap.Logger
}

// NewSink constructs a sink that creates surfaces with the factory on demand.
func NewSink(factory SurfaceFactory, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{factory: factory, logger: logger}
}

// Append writes text to the surface, creating it when needed.
func (sink *Sink) Append(text string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	surface := sink.ensureSurface()
	if surface == nil {
		return
	}
	surface.Write(text)
}

// Show makes the surface visible, creating it when needed.
func (sink *Sink) Show() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	surface := sink.ensureSurface()
	if surface == nil {
		return
	}
	sink.visible = true
	surface.SetVisible(true)
}

// Hide hides the surface without discarding its content.
func (sink *Sink) Hide() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	sink.visible = false
	if sink.surface == nil {
		return
	}
	sink.surface.SetVisible(false)
}

// Visible reports whether the surface is currently shown.
func (sink *Sink) Visible() bool {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.surface != nil && sink.visible
}

// Exists reports whether a surface is currently alive.
func (sink *Sink) Exists() bool {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.surface != nil
}

// CurrentSpan returns the span that appended last.
func (sink *Sink) CurrentSpan() string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.span
}

// SetSpan records the span that is about to append.
func (sink *Sink) SetSpan(span string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.span = span
}

// Close forgets the surface after the user closed it.
func (sink *Sink) Close() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	if sink.surface == nil {
		return
	}
	sink.surface = nil
	sink.visible = false
	sink.span = ""
	sink.logger.Debug(surfaceClosedMessageConstant)
}

func (sink *Sink) ensureSurface() Surface {
	if sink.surface != nil {
		return sink.surface
	}
	if sink.factory == nil {
		return nil
	}
	sink.surface = sink.factory()
	sink.visible = false
	sink.span = ""
	sink.logger.Debug(surfaceCreatedMessageConstant)
	return sink.surface
}
