package execshell

import "time"

// WatchdogTimer is a one-shot delayed action owned by a single process.
type WatchdogTimer struct {
	scheduled *ScheduledCallback
	delay     time.Duration
}

// NewWatchdogTimer arms a watchdog that runs action on the loop after delay.
func NewWatchdogTimer(loop *EventLoop, delay time.Duration, action func()) *WatchdogTimer {
	return &WatchdogTimer{
		scheduled: loop.Schedule(delay, action),
		delay:     delay,
	}
}

// Delay returns the configured threshold.
func (watchdog *WatchdogTimer) Delay() time.Duration {
	if watchdog == nil {
		return 0
	}
	return watchdog.delay
}

// Stop releases the watchdog. Safe to call more than once.
func (watchdog *WatchdogTimer) Stop() {
	if watchdog == nil {
		return
	}
	watchdog.scheduled.Stop()
}

// Fired reports whether the watchdog action ran.
func (watchdog *WatchdogTimer) Fired() bool {
	if watchdog == nil {
		return false
	}
	return watchdog.scheduled.Fired()
}
