package tap

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/defs"
)

// Tap captures selected diagnostic records from an Emitter and re-emits them as formatted text
// blocks to per-severity capture files or to a console stream.
//
// The tap never modifies records and never stops them from reaching handlers installed after it
// or the emitter's terminal sink. Failures to write a capture file are reported as new error
// diagnostics through the same emitter, under a busy context so they cannot be captured in turn.
type Tap struct {
	logger    logger.Logger
	emitter   *base.Emitter
	provider  SettingsProvider
	formatter *Formatter
	metrics   tapMetrics
	stderr    io.Writer // replaced in tests
	stdout    io.Writer // replaced in tests
	uninstall func()
}

type tapMetrics struct {
	events            promext.RWCounter
	captured          promext.RWCounter
	suppressed        promext.RWCounter
	writtenBlocksFile promext.RWCounter
	writtenBytesFile  promext.RWCounter
	writtenBlocksCons promext.RWCounter
	writtenBytesCons  promext.RWCounter
	writeErrors       promext.RWCounter
}

func newTapMetrics(metricFactory *base.MetricFactory) tapMetrics {
	writtenBlocks := metricFactory.AddOrGetCounterVec("written_blocks_total",
		"Numbers of capture blocks written, by destination", []string{"destination"})
	writtenBytes := metricFactory.AddOrGetCounterVec("written_block_bytes_total",
		"Total bytes of capture blocks written, by destination", []string{"destination"})
	return tapMetrics{
		events: metricFactory.AddOrGetCounter("events_total",
			"Numbers of diagnostic events observed", nil, nil),
		captured: metricFactory.AddOrGetCounter("captured_events_total",
			"Numbers of events matching the capture settings", nil, nil),
		suppressed: metricFactory.AddOrGetCounter("suppressed_events_total",
			"Numbers of the tap's own events declined to prevent recursion", nil, nil),
		writtenBlocksFile: writtenBlocks.WithLabelValues("file"),
		writtenBytesFile:  writtenBytes.WithLabelValues("file"),
		writtenBlocksCons: writtenBlocks.WithLabelValues("console"),
		writtenBytesCons:  writtenBytes.WithLabelValues("console"),
		writeErrors: metricFactory.AddOrGetCounter("write_errors_total",
			"Numbers of failed capture file writes", nil, nil),
	}
}

// NewTap creates a Tap bound to the given emitter, reading its settings from provider.
// The tap observes nothing until Install is called.
func NewTap(parentLogger logger.Logger, emitter *base.Emitter, provider SettingsProvider, metricFactory *base.MetricFactory) *Tap {
	return &Tap{
		logger:    parentLogger.WithField(defs.LabelComponent, "Tap"),
		emitter:   emitter,
		provider:  provider,
		formatter: NewFormatter(emitter.ProcessID(), emitter.ActiveStatement),
		metrics:   newTapMetrics(metricFactory),
		stderr:    os.Stderr,
		stdout:    os.Stdout,
	}
}

// Install registers the tap at the end of the emitter's handler chain. Repeated calls without
// Uninstall in between are no-ops.
func (tap *Tap) Install() {
	if tap.uninstall != nil {
		tap.logger.Warn("already installed")
		return
	}
	tap.uninstall = tap.emitter.Install(tap)
	tap.logger.Info("installed")
}

// Uninstall removes the tap from the emitter's handler chain, leaving handlers installed before
// and after it in place
func (tap *Tap) Uninstall() {
	if tap.uninstall == nil {
		return
	}
	tap.uninstall()
	tap.uninstall = nil
	tap.logger.Info("uninstalled")
}

// HandleDiagnostic implements base.Handler
func (tap *Tap) HandleDiagnostic(ctx context.Context, record *base.Record) {
	tap.metrics.events.Inc()

	busy := isBusy(ctx)
	settings := tap.provider.CurrentSettings()
	if !shouldCapture(busy, record, settings) {
		if busy {
			tap.metrics.suppressed.Inc()
		}
		return
	}
	tap.metrics.captured.Inc()

	// anything raised from here on is the tap's own and must not be captured again
	ctx = withBusy(ctx)

	block := tap.formatter.Format(record)
	if settings.directory == "" {
		tap.writeConsole(settings.console, block)
		return
	}
	if err := writeCaptureFile(settings.directory, record.Severity, block); err != nil {
		tap.metrics.writeErrors.Inc()
		tap.reportWriteError(ctx, err)
		return
	}
	tap.metrics.writtenBlocksFile.Inc()
	tap.metrics.writtenBytesFile.Add(uint64(len(block)))
}

// reportWriteError raises the failure as a new error diagnostic through the emitter, so it
// reaches the host's normal reporting path with the proper condition code
func (tap *Tap) reportWriteError(ctx context.Context, err error) {
	record := &base.Record{
		Severity: base.Error,
		Message:  err.Error(),
	}
	var fileErr *CaptureFileError
	if errors.As(err, &fileErr) {
		record.Code = fileErr.Code()
		tap.logger.WithField(defs.LabelPath, fileErr.Path).Error("capture failed: ", fileErr.Err)
	}
	tap.emitter.Emit(ctx, record)
}
