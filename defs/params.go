package defs

const (
	// CaptureMaxPathLength defines the longest absolute path usable for capture files, including the
	// room reserved by CaptureFileNameReserve
	//
	// Destination directories that would leave no room for a file name are rejected at configuration time
	CaptureMaxPathLength = 1024

	// CaptureFileNameReserve is the room reserved within CaptureMaxPathLength for the file name of a
	// capture file plus the path separator, far above the longest severity label plus ".log"
	CaptureFileNameReserve = 64 + 2

	// CaptureFileMode is the permission mode for newly created capture files
	//
	// Capture output may quote statements and data values, so files are readable by the owner only
	CaptureFileMode = 0o600
)

const (
	// CaptureTimeLayout renders capture timestamps with millisecond precision and the abbreviated
	// zone name, e.g. "2025-04-01 13:37:00.123 EET"
	CaptureTimeLayout = "2006-01-02 15:04:05.000 MST"

	// CaptureMissingMessageText substitutes for an absent primary message in capture output
	CaptureMissingMessageText = "missing error text"
)
