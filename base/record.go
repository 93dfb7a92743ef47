package base

// Record is one diagnostic event reported by the host program.
//
// All fields except Severity are optional; absent texts are empty strings. A record is read-only
// once emitted and handlers must never modify it.
type Record struct {
	Severity Severity // ordered severity of the event, always set
	Code     Code     // packed condition code, 0 = none

	Message       string // primary human-readable message
	Detail        string // detail text shown to the client
	DetailLog     string // detail text destined for the server log, preferred over Detail when both are set
	Hint          string // suggestion how to fix the problem
	Context       string // call context where the event occurred
	HideContext   bool   // suppresses Context in formatted output
	InternalQuery string // internally-generated query that caused the event

	CursorPos   int // 1-based error position in the statement in flight, 0 = none
	InternalPos int // 1-based error position in InternalQuery, 0 = none

	Function  string // name of the reporting function
	File      string // source file name of the reporting site
	Line      int    // source line number of the reporting site
	Backtrace string // backtrace from the reporting site
}
