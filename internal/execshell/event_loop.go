package execshell

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	eventLoopPanicMessageConstant = "event loop callback panicked"
	logFieldPanicConstant         = "panic"
)

// EventLoop runs callbacks one at a time, in the order they were posted, on a dedicated goroutine.
// Everything that touches process state is executed through it.
type EventLoop struct {
	mutex   sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
	logger  *zap.Logger
}

// NewEventLoop starts an event loop goroutine.
func NewEventLoop(logger *zap.Logger) *EventLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	loop := &EventLoop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go loop.run()
	return loop
}

// Post enqueues a callback without blocking. It reports false once the loop is closed.
func (loop *EventLoop) Post(callback func()) bool {
	if callback == nil {
		return false
	}

	loop.mutex.Lock()
	if loop.closed {
		loop.mutex.Unlock()
		return false
	}
	loop.pending = append(loop.pending, callback)
	loop.mutex.Unlock()

	loop.signal()
	return true
}

// Invoke runs the callback on the loop and waits for it to finish.
// It must not be called from a loop callback.
func (loop *EventLoop) Invoke(executionContext context.Context, callback func()) error {
	completed := make(chan struct{})
	if !loop.Post(func() {
		defer close(completed)
		callback()
	}) {
		return ErrExecutorClosed
	}

	select {
	case <-completed:
		return nil
	case <-executionContext.Done():
		return executionContext.Err()
	}
}

// Sync waits until every callback posted before the call has run.
func (loop *EventLoop) Sync(executionContext context.Context) error {
	return loop.Invoke(executionContext, func() {})
}

// Schedule posts the callback to the loop once the delay elapses.
func (loop *EventLoop) Schedule(delay time.Duration, callback func()) *ScheduledCallback {
	scheduled := &ScheduledCallback{}
	scheduled.timer = time.AfterFunc(delay, func() {
		loop.Post(func() {
			if scheduled.cancelled.Load() {
				return
			}
			scheduled.fired.Store(true)
			callback()
		})
	})
	return scheduled
}

// Close drains queued callbacks and stops the loop goroutine. Posting afterwards is a no-op.
func (loop *EventLoop) Close() {
	loop.mutex.Lock()
	alreadyClosed := loop.closed
	loop.closed = true
	loop.mutex.Unlock()

	if !alreadyClosed {
		loop.signal()
	}
	<-loop.stopped
}

func (loop *EventLoop) signal() {
	select {
	case loop.wake <- struct{}{}:
	default:
	}
}

func (loop *EventLoop) run() {
	defer close(loop.stopped)
	for {
		loop.mutex.Lock()
		batch := loop.pending
		loop.pending = nil
		closed := loop.closed
		loop.mutex.Unlock()

		for _, callback := range batch {
			loop.execute(callback)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-loop.wake
	}
}

func (loop *EventLoop) execute(callback func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			loop.logger.Error(eventLoopPanicMessageConstant, zap.String(logFieldPanicConstant, fmt.Sprint(recovered)))
		}
	}()
	callback()
}

// ScheduledCallback is a pending delayed callback on an EventLoop.
type ScheduledCallback struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

// Stop cancels the callback. A callback whose delay already elapsed but has not run yet is dropped too.
func (scheduled *ScheduledCallback) Stop() {
	if scheduled == nil {
		return
	}
	scheduled.cancelled.Store(true)
	if scheduled.timer != nil {
		scheduled.timer.Stop()
	}
}

// Fired reports whether the callback ran.
func (scheduled *ScheduledCallback) Fired() bool {
	return scheduled != nil && scheduled.fired.Load()
}
