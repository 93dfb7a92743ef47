package tap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/defs"
	"github.com/relex/diag-tap/util"
)

func TestVerifySettingsLevel(t *testing.T) {
	assert.NoError(t, VerifySettings(Settings{Level: base.None}, base.Warning))
	assert.NoError(t, VerifySettings(Settings{Level: base.Error}, base.Warning))
	assert.NoError(t, VerifySettings(Settings{Level: base.Warning}, base.Warning))

	// watching a severity the host never emits would capture nothing
	err := VerifySettings(Settings{Level: base.Debug1}, base.Warning)
	assert.ErrorContains(t, err, "level: cannot watch severity \"debug1\"")

	// log sorts between error and fatal for server-log visibility
	assert.NoError(t, VerifySettings(Settings{Level: base.Log}, base.Error))
	assert.Error(t, VerifySettings(Settings{Level: base.Log}, base.Fatal))
	assert.NoError(t, VerifySettings(Settings{Level: base.Fatal}, base.Log))
	assert.Error(t, VerifySettings(Settings{Level: base.Error}, base.Log))
}

func TestVerifySettingsDirectory(t *testing.T) {
	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Directory: t.TempDir()}, base.Warning))
	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Directory: ""}, base.Warning))

	err := VerifySettings(Settings{Level: base.Error, Directory: filepath.Join(t.TempDir(), "missing")}, base.Warning)
	assert.ErrorContains(t, err, "does not exist")

	// a plain file is not a usable directory
	filePath := filepath.Join(t.TempDir(), "plain.txt")
	assert.NoError(t, os.WriteFile(filePath, []byte("x"), 0o600))
	err = VerifySettings(Settings{Level: base.Error, Directory: filePath}, base.Warning)
	assert.ErrorContains(t, err, "does not exist")

	longPath := "/" + strings.Repeat("d", defs.CaptureMaxPathLength)
	err = VerifySettings(Settings{Level: base.Error, Directory: longPath}, base.Warning)
	assert.ErrorContains(t, err, "no room for capture file names")
}

func TestVerifySettingsMatchAndConsole(t *testing.T) {
	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Match: "*disk*"}, base.Warning))
	assert.ErrorContains(t, VerifySettings(Settings{Level: base.Error, Match: "[unterminated"}, base.Warning), "match:")

	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Console: ConsoleStderr}, base.Warning))
	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Console: ConsoleStdout}, base.Warning))
	assert.NoError(t, VerifySettings(Settings{Level: base.Error, Console: ""}, base.Warning))
	assert.ErrorContains(t, VerifySettings(Settings{Level: base.Error, Console: "tty"}, base.Warning), "unsupported stream")
}

func TestSettingsStore(t *testing.T) {
	emitter := base.NewEmitter(logger.Root(), base.EmitterConfig{MinLevel: base.Warning})
	store := NewSettingsStore(emitter)
	assert.Equal(t, base.None, store.CurrentSettings().level, "capturing starts disabled")

	assert.NoError(t, store.Update(Settings{Level: base.Error, Console: ConsoleStdout}))
	accepted := store.CurrentSettings()
	assert.Equal(t, base.Error, accepted.level)
	assert.Equal(t, ConsoleStdout, accepted.console)

	// rejected updates leave the previous settings in effect
	assert.Error(t, store.Update(Settings{Level: base.Debug1}))
	assert.Same(t, accepted, store.CurrentSettings())

	// updates are verified against the minimum level at update time
	emitter.SetMinLevel(base.Fatal)
	assert.Error(t, store.Update(Settings{Level: base.Error}))
	assert.Same(t, accepted, store.CurrentSettings())
	assert.NoError(t, store.Update(Settings{Level: base.Fatal}))
	assert.Equal(t, base.Fatal, store.CurrentSettings().level)
}

func TestSettingsYaml(t *testing.T) {
	var settings Settings
	assert.NoError(t, util.UnmarshalYamlString(`
level: warning
directory: /var/log/captures
match: "*deadlock*"
console: stdout
`, &settings))
	assert.Equal(t, base.Warning, settings.Level)
	assert.Equal(t, "/var/log/captures", settings.Directory)
	assert.Equal(t, "*deadlock*", settings.Match)
	assert.Equal(t, ConsoleStdout, settings.Console)

	// unknown fields are configuration mistakes, not ignorable noise
	assert.Error(t, util.UnmarshalYamlString("levels: warning\n", &settings))

	out, err := util.MarshalYaml(settings)
	assert.NoError(t, err)
	var reloaded Settings
	assert.NoError(t, util.UnmarshalYamlString(out, &reloaded))
	assert.Equal(t, settings, reloaded)
}
