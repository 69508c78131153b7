// Package debounce implements the Debouncer (C4): a periodic task that,
// every debounce interval, collapses each per-sensor buffer into a
// single averaged intensity under the shared intensity mutex.
package debounce

import (
	"context"
	"time"

	"github.com/followspot/followspot/internal/monitoring"
	"github.com/followspot/followspot/internal/sensorstate"
	"github.com/followspot/followspot/internal/timeutil"
)

// Run starts the periodic debounce loop, driven by clock, and blocks
// until ctx is cancelled.
func Run(ctx context.Context, store *sensorstate.Store, clock timeutil.Clock, interval time.Duration) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			published := store.DebouncePass()
			monitoring.Debugf("debounce: published %d sensor readings", len(published))
		}
	}
}
