package execshell

import "go.uber.org/zap"

const (
	consoleSuppressedMessageConstant = "console auto-reveal suppressed"
	consoleResumedMessageConstant    = "console auto-reveal resumed"
	logFieldRunningProcessesConstant = "running_processes"
)

// SuppressionController switches automatic console reveal on and off for every process.
// It is only accessed from the event loop.
type SuppressionController struct {
	suppressed bool
	registry   *ProcessRegistry
	console    ConsoleSink
	logger     *zap.Logger
}

// NewSuppressionController creates a controller in the active state.
func NewSuppressionController(registry *ProcessRegistry, console ConsoleSink, logger *zap.Logger) *SuppressionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuppressionController{registry: registry, console: console, logger: logger}
}

// Suppressed reports whether automatic reveal is disabled.
func (controller *SuppressionController) Suppressed() bool {
	return controller.suppressed
}

// Suppress stops every running watchdog and hides the console.
func (controller *SuppressionController) Suppress() {
	controller.suppressed = true
	for _, process := range controller.registry.Processes() {
		process.stopWatchdog()
	}
	controller.console.Hide()
	controller.logger.Debug(consoleSuppressedMessageConstant, zap.Int(logFieldRunningProcessesConstant, controller.registry.Len()))
}

// Resume re-enables automatic reveal and arms a fresh watchdog for every running process.
func (controller *SuppressionController) Resume() {
	controller.suppressed = false
	for _, process := range controller.registry.Processes() {
		process.armWatchdog()
	}
	controller.logger.Debug(consoleResumedMessageConstant, zap.Int(logFieldRunningProcessesConstant, controller.registry.Len()))
}
