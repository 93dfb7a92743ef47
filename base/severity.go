package base

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/relex/diag-tap/util"
)

// Severity is the ordered severity of one diagnostic event, mirroring the host server's levels
// from finest debug to panic. The zero value is not a valid severity.
type Severity int

// Severity levels in ascending order. LogServerOnly and WarningClientOnly are raised internally
// by the host and cannot be named in configuration.
const (
	Debug5 Severity = iota + 1
	Debug4
	Debug3
	Debug2
	Debug1
	Log
	LogServerOnly
	Info
	Notice
	Warning
	WarningClientOnly
	Error
	Fatal
	Panic
)

// None disables capturing when used as the watched level; it sorts above every real severity and
// matches no event
const None Severity = 255

type severityName struct {
	name   string
	level  Severity
	hidden bool
}

// severityNames lists the names accepted in configuration, in display order.
// "debug" is an alias kept for compatibility, accepted on input but never shown.
var severityNames = []severityName{
	{"debug5", Debug5, false},
	{"debug4", Debug4, false},
	{"debug3", Debug3, false},
	{"debug2", Debug2, false},
	{"debug1", Debug1, false},
	{"debug", Debug2, true},
	{"info", Info, false},
	{"notice", Notice, false},
	{"warning", Warning, false},
	{"error", Error, false},
	{"log", Log, false},
	{"fatal", Fatal, false},
	{"panic", Panic, false},
	{"none", None, false},
}

// ParseSeverity resolves a severity name used in configuration
func ParseSeverity(name string) (Severity, error) {
	index := slices.IndexFunc(severityNames, func(entry severityName) bool {
		return entry.name == name
	})
	if index == -1 {
		return 0, fmt.Errorf("unknown severity %q, expecting one of: %s", name, strings.Join(listSeverityNames(), ", "))
	}
	return severityNames[index].level, nil
}

func listSeverityNames() []string {
	names := make([]string, 0, len(severityNames))
	for _, entry := range severityNames {
		if !entry.hidden {
			names = append(names, entry.name)
		}
	}
	return names
}

// String returns the configuration name of the severity, or a descriptive form for severities
// that cannot be named in configuration
func (severity Severity) String() string {
	switch severity {
	case LogServerOnly:
		return "log_server_only"
	case WarningClientOnly:
		return "warning_client_only"
	}
	index := slices.IndexFunc(severityNames, func(entry severityName) bool {
		return entry.level == severity && !entry.hidden
	})
	if index == -1 {
		return fmt.Sprintf("severity(%d)", int(severity))
	}
	return severityNames[index].name
}

// Label returns the uppercase label written at the head of capture sections and used to name
// capture files. Each debug sub-level keeps its own label so per-severity capture files never mix
// levels, while the client-only and server-only variants share the label of their base severity.
func (severity Severity) Label() string {
	switch severity {
	case Debug5:
		return "DEBUG5"
	case Debug4:
		return "DEBUG4"
	case Debug3:
		return "DEBUG3"
	case Debug2:
		return "DEBUG2"
	case Debug1:
		return "DEBUG1"
	case Log, LogServerOnly:
		return "LOG"
	case Info:
		return "INFO"
	case Notice:
		return "NOTICE"
	case Warning, WarningClientOnly:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	case Panic:
		return "PANIC"
	default:
		return "???"
	}
}

// IsLoggable reports whether a diagnostic of the given severity reaches the host's server log
// under the given minimum level.
//
// The log severities sort out of order for this test: Log and LogServerOnly reach the server log
// unless the minimum level is above Error, while a minimum level of Log admits only Fatal and
// Panic among the regular severities. WarningClientOnly never reaches the server log.
func IsLoggable(severity Severity, minLevel Severity) bool {
	switch {
	case severity == Log || severity == LogServerOnly:
		return minLevel == Log || minLevel <= Error
	case severity == WarningClientOnly:
		return false
	case minLevel == Log:
		return severity >= Fatal
	default:
		return severity >= minLevel
	}
}

// MarshalYAML provides proper marshalling of Severity in configuration structs
func (severity Severity) MarshalYAML() (interface{}, error) {
	return severity.String(), nil
}

// UnmarshalYAML provides proper unmarshalling of Severity in configuration structs
func (severity *Severity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return util.NewYamlError(node, "expecting a severity name")
	}
	parsed, err := ParseSeverity(node.Value)
	if err != nil {
		return util.NewYamlError(node, err.Error())
	}
	*severity = parsed
	return nil
}
