package execshell_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitconsole/internal/execshell"
)

func TestEventLoopRunsCallbacksInPostOrder(testInstance *testing.T) {
	loop := execshell.NewEventLoop(zap.NewNop())
	defer loop.Close()

	var executed []int
	for callbackIndex := 0; callbackIndex < 100; callbackIndex++ {
		value := callbackIndex
		require.True(testInstance, loop.Post(func() {
			executed = append(executed, value)
		}))
	}
	require.NoError(testInstance, loop.Sync(context.Background()))

	require.Len(testInstance, executed, 100)
	for callbackIndex, value := range executed {
		require.Equal(testInstance, callbackIndex, value)
	}
}

func TestEventLoopRunsOneCallbackAtATime(testInstance *testing.T) {
	loop := execshell.NewEventLoop(zap.NewNop())
	defer loop.Close()

	active := 0
	maximumActive := 0
	var posters sync.WaitGroup
	for posterIndex := 0; posterIndex < 8; posterIndex++ {
		posters.Add(1)
		go func() {
			defer posters.Done()
			for callbackIndex := 0; callbackIndex < 50; callbackIndex++ {
				loop.Post(func() {
					active++
					if active > maximumActive {
						maximumActive = active
					}
					active--
				})
			}
		}()
	}
	posters.Wait()
	require.NoError(testInstance, loop.Sync(context.Background()))
	require.Equal(testInstance, 1, maximumActive)
}

func TestEventLoopRecoversFromPanics(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.ErrorLevel)
	loop := execshell.NewEventLoop(zap.New(observerCore))
	defer loop.Close()

	loop.Post(func() { panic("boom") })
	ran := false
	loop.Post(func() { ran = true })
	require.NoError(testInstance, loop.Sync(context.Background()))

	require.True(testInstance, ran)
	require.Equal(testInstance, 1, observedLogs.FilterMessage("event loop callback panicked").Len())
}

func TestEventLoopInvokeHonorsContext(testInstance *testing.T) {
	loop := execshell.NewEventLoop(nil)
	defer loop.Close()

	release := make(chan struct{})
	loop.Post(func() { <-release })

	invokeContext, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(testInstance, loop.Invoke(invokeContext, func() {}), context.DeadlineExceeded)
	close(release)
}

func TestEventLoopClose(testInstance *testing.T) {
	loop := execshell.NewEventLoop(nil)

	drained := false
	loop.Post(func() { drained = true })
	loop.Close()
	loop.Close()

	require.True(testInstance, drained)
	require.False(testInstance, loop.Post(func() {}))
	require.ErrorIs(testInstance, loop.Sync(context.Background()), execshell.ErrExecutorClosed)
}

func TestEventLoopSchedule(testInstance *testing.T) {
	loop := execshell.NewEventLoop(nil)
	defer loop.Close()

	fired := make(chan struct{})
	scheduled := loop.Schedule(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		testInstance.Fatal("scheduled callback did not run")
	}
	require.NoError(testInstance, loop.Sync(context.Background()))
	require.True(testInstance, scheduled.Fired())

	cancelled := loop.Schedule(10*time.Millisecond, func() { testInstance.Error("cancelled callback ran") })
	cancelled.Stop()
	cancelled.Stop()
	time.Sleep(50 * time.Millisecond)
	require.NoError(testInstance, loop.Sync(context.Background()))
	require.False(testInstance, cancelled.Fired())

	var nilScheduled *execshell.ScheduledCallback
	nilScheduled.Stop()
	require.False(testInstance, nilScheduled.Fired())
}

func TestScheduledCallbackStoppedWhileQueued(testInstance *testing.T) {
	loop := execshell.NewEventLoop(nil)
	defer loop.Close()

	release := make(chan struct{})
	loop.Post(func() { <-release })

	ran := false
	scheduled := loop.Schedule(time.Millisecond, func() { ran = true })
	time.Sleep(20 * time.Millisecond)
	scheduled.Stop()
	close(release)

	require.NoError(testInstance, loop.Sync(context.Background()))
	require.False(testInstance, ran)
	require.False(testInstance, scheduled.Fired())
}
