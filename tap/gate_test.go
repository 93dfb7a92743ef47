package tap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/diag-tap/base"
)

func mustCompile(t *testing.T, settings Settings) *Snapshot {
	snapshot, err := compileSettings(settings, base.Debug5)
	require.NoError(t, err)
	return snapshot
}

func TestShouldCapture(t *testing.T) {
	watchError := mustCompile(t, Settings{Level: base.Error})
	watchTimeouts := mustCompile(t, Settings{Level: base.Error, Match: "*timeout*"})
	disabled := mustCompile(t, Settings{Level: base.None})

	errorRecord := &base.Record{Severity: base.Error, Message: "connection timeout reached"}
	fatalRecord := &base.Record{Severity: base.Fatal, Message: "connection timeout reached"}

	assert.True(t, shouldCapture(false, errorRecord, watchError))
	assert.False(t, shouldCapture(true, errorRecord, watchError), "busy processing captures nothing")
	assert.False(t, shouldCapture(false, errorRecord, disabled))

	// the watched severity is an exact match, not a threshold
	assert.False(t, shouldCapture(false, fatalRecord, watchError))

	assert.True(t, shouldCapture(false, errorRecord, watchTimeouts))
	assert.False(t, shouldCapture(false, &base.Record{Severity: base.Error, Message: "other failure"}, watchTimeouts))
	assert.False(t, shouldCapture(false, &base.Record{Severity: base.Error}, watchTimeouts),
		"absent message matches no pattern")
}

func TestBusyContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, isBusy(ctx))

	busyCtx := withBusy(ctx)
	assert.True(t, isBusy(busyCtx))
	assert.True(t, isBusy(withBusy(busyCtx)))

	// the flag lives and dies with its call stack, never leaking to the parent
	assert.False(t, isBusy(ctx))
}
