package tap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/defs"
)

// Formatter renders diagnostic records into multi-line capture blocks.
//
// Every section line begins with a freshly read timestamp and the host process id, so the block
// records emission time rather than event creation time, and a slow write between two records
// shows up in the timestamps.
type Formatter struct {
	pid       int
	statement func() string
	now       func() time.Time // replaced in tests
}

// NewFormatter creates a Formatter stamping the given process id on every section and consulting
// statement for the host statement in flight
func NewFormatter(pid int, statement func() string) *Formatter {
	return &Formatter{
		pid:       pid,
		statement: statement,
		now:       time.Now,
	}
}

// Format renders one record into a capture block ending with a newline. The record is only read;
// repeated calls produce identical output except for the timestamps.
func (formatter *Formatter) Format(record *base.Record) []byte {
	sections := make([]string, 0, 8)
	sections = append(sections, formatter.messageSection(record))
	if detail := preferredDetail(record); detail != "" {
		sections = append(sections, formatter.section("DETAIL", detail))
	}
	if record.Hint != "" {
		sections = append(sections, formatter.section("HINT", record.Hint))
	}
	if record.InternalQuery != "" {
		sections = append(sections, formatter.section("QUERY", record.InternalQuery))
	}
	if record.Context != "" && !record.HideContext {
		sections = append(sections, formatter.section("CONTEXT", record.Context))
	}
	if location := locationText(record); location != "" {
		// no escaping: function and file names contain no newlines
		sections = append(sections, formatter.prefix()+"LOCATION:  "+location+"\n")
	}
	if record.Backtrace != "" {
		sections = append(sections, formatter.section("BACKTRACE", record.Backtrace))
	}
	// the statement in flight is appended whenever one exists, regardless of HideContext:
	// capture output is deliberately more verbose than the host's own log
	if statement := formatter.statement(); statement != "" {
		sections = append(sections, formatter.section("STATEMENT", statement))
	}
	return []byte(strings.Join(sections, ""))
}

// messageSection renders the leading section: severity label, optional condition code, primary
// message or its placeholder, and the cursor position if known
func (formatter *Formatter) messageSection(record *base.Record) string {
	builder := &strings.Builder{}
	builder.WriteString(formatter.prefix())
	builder.WriteString(record.Severity.Label())
	builder.WriteString(":  ")
	if record.Code != 0 {
		builder.WriteString(record.Code.String())
		builder.WriteString(":  ")
	}
	if record.Message != "" {
		builder.WriteString(escapeNewlines(record.Message))
	} else {
		builder.WriteString(defs.CaptureMissingMessageText)
	}
	if record.CursorPos > 0 {
		fmt.Fprintf(builder, " at character %d", record.CursorPos)
	} else if record.InternalPos > 0 {
		fmt.Fprintf(builder, " at character %d", record.InternalPos)
	}
	builder.WriteByte('\n')
	return builder.String()
}

// section renders one labelled auxiliary section under its own fresh prefix
func (formatter *Formatter) section(label string, text string) string {
	return formatter.prefix() + label + ":  " + escapeNewlines(text) + "\n"
}

// prefix renders "<timestamp> [<pid>] ", re-reading the clock on every call
func (formatter *Formatter) prefix() string {
	return formatter.now().Format(defs.CaptureTimeLayout) + " [" + strconv.Itoa(formatter.pid) + "] "
}

// preferredDetail picks the log-destined detail over the client detail when a record carries both
func preferredDetail(record *base.Record) string {
	if record.DetailLog != "" {
		return record.DetailLog
	}
	return record.Detail
}

// locationText renders "function, file:line" or "file:line", or "" if the file is unknown
func locationText(record *base.Record) string {
	switch {
	case record.Function != "" && record.File != "":
		return fmt.Sprintf("%s, %s:%d", record.Function, record.File, record.Line)
	case record.File != "":
		return fmt.Sprintf("%s:%d", record.File, record.Line)
	default:
		return ""
	}
}

// escapeNewlines inserts a tab after every newline, so continuation lines inside a section are
// told apart from the start of the next record in plain-text output
func escapeNewlines(text string) string {
	firstNewline := strings.IndexByte(text, '\n')
	if firstNewline == -1 {
		return text
	}
	builder := &strings.Builder{}
	builder.Grow(len(text) + 16)
	builder.WriteString(text[:firstNewline])
	for i := firstNewline; i < len(text); i++ {
		builder.WriteByte(text[i])
		if text[i] == '\n' {
			builder.WriteByte('\t')
		}
	}
	return builder.String()
}
