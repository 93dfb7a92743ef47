package base

import (
	"context"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/defs"
)

// loggerSink is the default terminal sink, bridging records to the process logger.
//
// Fatal and panic records are logged as errors: terminating the process is the host's decision,
// not the sink's.
type loggerSink struct {
	logger logger.Logger
}

func newLoggerSink(parentLogger logger.Logger) Handler {
	return &loggerSink{
		logger: parentLogger,
	}
}

// HandleDiagnostic implements Handler
func (sink *loggerSink) HandleDiagnostic(_ context.Context, record *Record) {
	slogger := sink.logger.WithField(defs.LabelSeverity, record.Severity.String())
	if record.Code != 0 {
		slogger = slogger.WithField(defs.LabelCode, record.Code.String())
	}
	switch {
	case record.Severity <= Debug1:
		slogger.Debug(record.Message)
	case record.Severity <= Notice:
		slogger.Info(record.Message)
	case record.Severity <= WarningClientOnly:
		slogger.Warn(record.Message)
	default:
		slogger.Error(record.Message)
	}
}
