package tap

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/defs"
)

// Condition codes reported for capture file failures
var (
	codeDiskFull              = base.MustParseCode("53100")
	codeInsufficientPrivilege = base.MustParseCode("42501")
	codeInsufficientResources = base.MustParseCode("53000")
	codeUndefinedFile         = base.MustParseCode("58P01")
	codeIOError               = base.MustParseCode("58030")
)

// CaptureFileError describes a failed append to a capture file, keeping the OS error for the
// condition code of the resulting diagnostic report
type CaptureFileError struct {
	Path string
	Op   string
	Err  error
}

// Error implements the error interface
func (cfe *CaptureFileError) Error() string {
	return fmt.Sprintf("could not %s capture file %q: %s", cfe.Op, cfe.Path, cfe.Err)
}

// Unwrap returns the underlying OS error
func (cfe *CaptureFileError) Unwrap() error {
	return cfe.Err
}

// Code maps the underlying OS error to the host's condition code for file access failures
func (cfe *CaptureFileError) Code() base.Code {
	switch {
	case errors.Is(cfe.Err, unix.ENOSPC) || errors.Is(cfe.Err, unix.EDQUOT):
		return codeDiskFull
	case errors.Is(cfe.Err, unix.EPERM) || errors.Is(cfe.Err, unix.EACCES) || errors.Is(cfe.Err, unix.EROFS):
		return codeInsufficientPrivilege
	case errors.Is(cfe.Err, unix.ENFILE) || errors.Is(cfe.Err, unix.EMFILE):
		return codeInsufficientResources
	case errors.Is(cfe.Err, unix.ENOENT) || errors.Is(cfe.Err, unix.ENOTDIR):
		return codeUndefinedFile
	default:
		return codeIOError
	}
}

// writeCaptureFile appends the whole block to "<directory>/<LABEL>.log" in a single write call,
// creating the file on first use. Concurrent appends from cooperating processes stay unmangled
// as long as each block is written in one call.
func writeCaptureFile(directory string, severity base.Severity, block []byte) error {
	path := filepath.Join(directory, severity.Label()+".log")

	fd, oerr := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND, defs.CaptureFileMode)
	if oerr != nil {
		return &CaptureFileError{Path: path, Op: "open", Err: oerr}
	}
	written, werr := unix.Write(fd, block)
	if werr == nil && written != len(block) {
		// a short write that reports no error means the device is full
		werr = unix.ENOSPC
	}
	unix.Close(fd)
	if werr != nil {
		return &CaptureFileError{Path: path, Op: "write", Err: werr}
	}
	return nil
}
