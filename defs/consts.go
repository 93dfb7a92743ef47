package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelPart      = "part"

	LabelCode     = "code"
	LabelPath     = "path"
	LabelSeverity = "severity"
)
