package tap

import (
	"context"

	"github.com/relex/diag-tap/base"
)

// busyKey marks a context whose call stack is already inside capture processing; diagnostics
// raised under such a context are the tap's own and must not be captured again
type busyKey struct{}

func withBusy(ctx context.Context) context.Context {
	return context.WithValue(ctx, busyKey{}, true)
}

func isBusy(ctx context.Context) bool {
	busy, _ := ctx.Value(busyKey{}).(bool)
	return busy
}

// shouldCapture decides whether one diagnostic record is captured under the given settings.
//
// The decision is pure; marking the context busy around formatting and writing is the caller's
// job. The severity comparison is an exact match, not a threshold: watching "error" does not
// capture "fatal" or "panic" events.
func shouldCapture(busy bool, record *base.Record, settings *Snapshot) bool {
	if busy {
		return false
	}
	if settings.level == base.None {
		return false
	}
	if record.Severity != settings.level {
		return false
	}
	if settings.matcher != nil && !settings.matcher.Match(record.Message) {
		return false
	}
	return true
}
