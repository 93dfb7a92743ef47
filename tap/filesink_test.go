package tap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/relex/diag-tap/base"
)

func TestWriteCaptureFile(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, writeCaptureFile(dir, base.Warning, []byte("block one\n")))
	assert.NoError(t, writeCaptureFile(dir, base.Warning, []byte("block two\n")))
	assert.NoError(t, writeCaptureFile(dir, base.Debug3, []byte("debug block\n")))

	content, err := os.ReadFile(filepath.Join(dir, "WARNING.log"))
	assert.NoError(t, err)
	assert.Equal(t, "block one\nblock two\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "DEBUG3.log"))
	assert.NoError(t, err)
	assert.Equal(t, "debug block\n", string(content))

	stat, err := os.Stat(filepath.Join(dir, "WARNING.log"))
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestWriteCaptureFileOpenError(t *testing.T) {
	err := writeCaptureFile(filepath.Join(t.TempDir(), "missing"), base.Error, []byte("x\n"))
	assert.Error(t, err)

	var cfe *CaptureFileError
	assert.ErrorAs(t, err, &cfe)
	assert.Equal(t, "open", cfe.Op)
	assert.Equal(t, "58P01", cfe.Code().String())
	assert.ErrorContains(t, err, "could not open capture file")
	assert.ErrorContains(t, err, "ERROR.log")
}

func TestCaptureFileErrorCodes(t *testing.T) {
	rows := []struct {
		err  error
		code string
	}{
		{unix.ENOSPC, "53100"},
		{unix.EDQUOT, "53100"},
		{unix.EPERM, "42501"},
		{unix.EACCES, "42501"},
		{unix.EROFS, "42501"},
		{unix.ENFILE, "53000"},
		{unix.EMFILE, "53000"},
		{unix.ENOENT, "58P01"},
		{unix.ENOTDIR, "58P01"},
		{unix.EIO, "58030"},
		{unix.EBADF, "58030"},
	}
	for _, row := range rows {
		cfe := &CaptureFileError{Path: "/p/ERROR.log", Op: "write", Err: row.err}
		assert.Equal(t, row.code, cfe.Code().String(), "errno %v", row.err)
	}
}
