//go:build linux

package wait

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_ManualReset_SetThenMultipleWaitersProceed(t *testing.T) {
	e := NewEvent(false)
	e.Set()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, e.Wait(ctx))
	require.NoError(t, e.Wait(ctx))
	assert.True(t, e.IsSet())
}

func TestEvent_ManualReset_ResetBlocksAgain(t *testing.T) {
	e := NewEvent(false)
	e.Set()
	e.Reset()
	assert.False(t, e.IsSet())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvent_AutoReset_OnlyOneWaiterWakesPerSet(t *testing.T) {
	e := NewEvent(true)
	e.Set()

	done := make(chan int, 2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if e.Wait(ctx) == nil {
				done <- i
			}
		}()
	}

	time.Sleep(150 * time.Millisecond)
	close(done)
	woke := 0
	for range done {
		woke++
	}
	assert.Equal(t, 1, woke, "exactly one waiter should consume the single token")
}

func TestEvent_Wait_CanceledByContext(t *testing.T) {
	e := NewEvent(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.Canceled)
}

func TestWithQuit_CancelsOnQuitEvent(t *testing.T) {
	quit := NewEvent(false)
	ctx, cancel := WithQuit(context.Background(), quit)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context canceled before quit was set")
	default:
	}

	quit.Set()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled after quit fired")
	}
}
