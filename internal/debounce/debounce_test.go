package debounce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/followspot/followspot/internal/sensorstate"
	"github.com/followspot/followspot/internal/timeutil"
)

func TestRun_PublishesOnEachTick(t *testing.T) {
	store := sensorstate.New([]string{"1", "2"}, 256)
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, store, clock, 100*time.Millisecond)
		close(done)
	}()

	store.Append("1", 10)
	store.Append("1", 20)

	clock.Advance(100 * time.Millisecond)

	require.Eventually(t, func() bool {
		return store.Snapshot()["1"] == 15
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	store := sensorstate.New([]string{"1"}, 256)
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, store, clock, 50*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
