package tap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/util"
)

// tapTestRig wires an Emitter, a SettingsStore and an installed Tap with buffered console
// streams and a recording terminal sink
type tapTestRig struct {
	emitter   *base.Emitter
	store     *SettingsStore
	tap       *Tap
	factory   *base.MetricFactory
	stderr    *bytes.Buffer
	stdout    *bytes.Buffer
	statement string
	terminal  []*base.Record
}

func newTapTestRig(t *testing.T, minLevel base.Severity) *tapTestRig {
	rig := &tapTestRig{
		stderr: &bytes.Buffer{},
		stdout: &bytes.Buffer{},
	}
	rig.emitter = base.NewEmitter(logger.Root(), base.EmitterConfig{
		MinLevel:  minLevel,
		ProcessID: 4242,
		Statement: func() string { return rig.statement },
		Terminal: base.HandlerFunc(func(_ context.Context, record *base.Record) {
			rig.terminal = append(rig.terminal, record)
		}),
	})
	rig.store = NewSettingsStore(rig.emitter)
	rig.factory = base.NewMetricFactory(t.Name()+"_", nil, nil)
	rig.tap = NewTap(logger.Root(), rig.emitter, rig.store, rig.factory)
	rig.tap.stderr = rig.stderr
	rig.tap.stdout = rig.stdout
	rig.tap.Install()
	return rig
}

func (rig *tapTestRig) counterValue(name string) float64 {
	return util.SumMetricValues(rig.factory.AddOrGetCounterVec(name, "", nil))
}

func TestTapConsoleCapture(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	require.NoError(t, rig.store.Update(Settings{Level: base.Error}))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "boom"})
	assert.Contains(t, rig.stderr.String(), "ERROR:  boom\n")
	assert.Empty(t, rig.stdout.String())

	// the watched severity is exact: fatal events pass through uncaptured
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Fatal, Message: "worse"})
	assert.NotContains(t, rig.stderr.String(), "worse")

	// every event still reaches the terminal sink
	require.Len(t, rig.terminal, 2)
	assert.Equal(t, "boom", rig.terminal[0].Message)
	assert.Equal(t, "worse", rig.terminal[1].Message)

	assert.Equal(t, 2.0, rig.counterValue("events_total"))
	assert.Equal(t, 1.0, rig.counterValue("captured_events_total"))
	assert.Equal(t, 1.0, rig.counterValue("written_blocks_total"))
}

func TestTapConsoleStreamSelection(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	require.NoError(t, rig.store.Update(Settings{Level: base.Warning, Console: ConsoleStdout}))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Warning, Message: "to stdout"})
	assert.Contains(t, rig.stdout.String(), "WARNING:  to stdout\n")
	assert.Empty(t, rig.stderr.String())
}

func TestTapFileCapture(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	dir := t.TempDir()
	require.NoError(t, rig.store.Update(Settings{Level: base.Warning, Directory: dir}))

	rig.statement = "UPDATE t SET x = 1"
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Warning, Message: "w1", Hint: "check x"})
	rig.statement = ""
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Warning, Message: "w2"})

	content, err := os.ReadFile(filepath.Join(dir, "WARNING.log"))
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "WARNING:  w1\n")
	assert.Contains(t, text, "HINT:  check x\n")
	assert.Contains(t, text, "STATEMENT:  UPDATE t SET x = 1\n")
	assert.Contains(t, text, "WARNING:  w2\n")
	assert.Less(t, strings.Index(text, "w1"), strings.Index(text, "w2"), "blocks append in order")
	assert.True(t, strings.HasSuffix(text, "\n"))

	// nothing goes to the console while a directory is set
	assert.Empty(t, rig.stderr.String())
	assert.Equal(t, 2.0, rig.counterValue("written_blocks_total"))
	assert.Equal(t, float64(len(content)), rig.counterValue("written_block_bytes_total"))
}

func TestTapMessageMatch(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	require.NoError(t, rig.store.Update(Settings{Level: base.Error, Match: "*timeout*"}))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "connection timeout reached"})
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "other failure"})

	assert.Contains(t, rig.stderr.String(), "connection timeout reached")
	assert.NotContains(t, rig.stderr.String(), "other failure")
	assert.Equal(t, 1.0, rig.counterValue("captured_events_total"))
	assert.Equal(t, 2.0, rig.counterValue("events_total"))
}

func TestTapSettingsUpdateBetweenEvents(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	require.NoError(t, rig.store.Update(Settings{Level: base.Error}))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "first"})
	require.NoError(t, rig.store.Update(Settings{Level: base.None}))
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "second"})

	assert.Contains(t, rig.stderr.String(), "first")
	assert.NotContains(t, rig.stderr.String(), "second")
}

func TestTapWriteFailureReported(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	dir := t.TempDir()
	require.NoError(t, rig.store.Update(Settings{Level: base.Error, Directory: dir}))

	// the directory vanishes after the settings were accepted
	require.NoError(t, os.RemoveAll(dir))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "original"})

	// the tap's own report is emitted from inside the original dispatch, so it reaches the
	// terminal first; it is at the watched severity yet never captured
	require.Len(t, rig.terminal, 2)
	report := rig.terminal[0]
	assert.Contains(t, report.Message, "could not open capture file")
	assert.Equal(t, base.Error, report.Severity)
	assert.Equal(t, "58P01", report.Code.String())
	assert.Equal(t, "original", rig.terminal[1].Message)

	assert.Equal(t, 1.0, rig.counterValue("suppressed_events_total"))
	assert.Equal(t, 1.0, rig.counterValue("write_errors_total"))
	assert.Equal(t, 0.0, rig.counterValue("written_blocks_total"))
	assert.Empty(t, rig.stderr.String())
}

func TestTapUninstall(t *testing.T) {
	rig := newTapTestRig(t, base.Warning)
	require.NoError(t, rig.store.Update(Settings{Level: base.Error}))

	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "while installed"})
	rig.tap.Uninstall()
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "while uninstalled"})

	assert.Contains(t, rig.stderr.String(), "while installed")
	assert.NotContains(t, rig.stderr.String(), "while uninstalled")
	assert.Len(t, rig.terminal, 2, "uninstalling the tap never blocks the terminal sink")

	rig.tap.Install()
	rig.emitter.Emit(context.Background(), &base.Record{Severity: base.Error, Message: "reinstalled"})
	assert.Contains(t, rig.stderr.String(), "reinstalled")
}
