package run

import (
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/util"
)

// RecordedEvent is one diagnostic event in a recorded events file, listed in the order the host
// raised them. The optional statement carries the host statement in flight during this event.
type RecordedEvent struct {
	Severity      base.Severity `yaml:"severity"`
	Code          string        `yaml:"code"` // five-character condition code, quoted in YAML
	Message       string        `yaml:"message"`
	Detail        string        `yaml:"detail"`
	DetailLog     string        `yaml:"detailLog"`
	Hint          string        `yaml:"hint"`
	Context       string        `yaml:"context"`
	HideContext   bool          `yaml:"hideContext"`
	InternalQuery string        `yaml:"internalQuery"`
	CursorPos     int           `yaml:"cursorPos"`
	InternalPos   int           `yaml:"internalPos"`
	Function      string        `yaml:"function"`
	File          string        `yaml:"file"`
	Line          int           `yaml:"line"`
	Backtrace     string        `yaml:"backtrace"`
	Statement     string        `yaml:"statement"`
}

// ToRecord converts the recorded event to an emittable diagnostic record
func (event *RecordedEvent) ToRecord() (*base.Record, error) {
	record := &base.Record{
		Severity:      event.Severity,
		Message:       event.Message,
		Detail:        event.Detail,
		DetailLog:     event.DetailLog,
		Hint:          event.Hint,
		Context:       event.Context,
		HideContext:   event.HideContext,
		InternalQuery: event.InternalQuery,
		CursorPos:     event.CursorPos,
		InternalPos:   event.InternalPos,
		Function:      event.Function,
		File:          event.File,
		Line:          event.Line,
		Backtrace:     event.Backtrace,
	}
	if event.Code != "" {
		code, err := base.ParseCode(event.Code)
		if err != nil {
			return nil, err
		}
		record.Code = code
	}
	return record, nil
}

// textSize is the total text size of the event, bounded by input.maxRecordSize
func (event *RecordedEvent) textSize() int {
	return len(event.Message) + len(event.Detail) + len(event.DetailLog) + len(event.Hint) +
		len(event.Context) + len(event.InternalQuery) + len(event.Backtrace) + len(event.Statement)
}

// LoadEventsFile loads one recorded events file and verifies every event in it
func LoadEventsFile(path string, maxRecordSize datasize.ByteSize) ([]RecordedEvent, error) {
	var events []RecordedEvent
	if err := util.UnmarshalYamlFile(path, &events); err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Severity == 0 {
			return nil, fmt.Errorf("events[%d]: severity is undefined", i)
		}
		if _, err := events[i].ToRecord(); err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		if size := events[i].textSize(); size > int(maxRecordSize.Bytes()) {
			return nil, fmt.Errorf("events[%d]: record text of %d bytes exceeds maxRecordSize %s", i, size, maxRecordSize.String())
		}
	}
	return events, nil
}
