// Package tap captures selected diagnostic records from a host program's emitter and re-emits
// them as formatted text blocks, either to a standard stream or to per-severity capture files.
package tap

import (
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/defs"
	"github.com/relex/diag-tap/util"
)

// ConsoleStream selects which standard stream receives capture output when no directory is
// configured
type ConsoleStream string

// Supported console streams
const (
	ConsoleStderr ConsoleStream = "stderr"
	ConsoleStdout ConsoleStream = "stdout"
)

// Settings selects which diagnostics are captured and where capture output goes.
//
// A Settings value is plain data; it takes effect only after verification and compilation by a
// SettingsStore or VerifySettings.
type Settings struct {
	Level     base.Severity `yaml:"level"`     // watched severity, exact match only; "none" disables capturing
	Directory string        `yaml:"directory"` // destination directory for capture files; "" = console
	Match     string        `yaml:"match"`     // optional glob pattern on the primary message; "" = match all
	Console   ConsoleStream `yaml:"console"`   // console stream used when Directory is ""; "" = stderr
}

// DefaultSettings returns settings with capturing disabled
func DefaultSettings() Settings {
	return Settings{
		Level:     base.None,
		Directory: "",
		Match:     "",
		Console:   ConsoleStderr,
	}
}

// Snapshot is one immutable compiled view of Settings, shared by all events that observe it
type Snapshot struct {
	level     base.Severity
	directory string
	console   ConsoleStream
	matcher   glob.Glob // nil matches every message
}

// SettingsProvider supplies the capture settings in effect for one diagnostic event.
//
// Each event reads its provider exactly once at the start of processing; an update between two
// events applies cleanly to the second one and never to an event in flight.
type SettingsProvider interface {
	CurrentSettings() *Snapshot
}

// SettingsStore is the default SettingsProvider: an atomically replaceable snapshot guarded by
// verification. A rejected update leaves the previous settings in effect.
type SettingsStore struct {
	emitter *base.Emitter
	current util.AtomicRef[Snapshot]
}

// NewSettingsStore creates a store with capturing disabled. The emitter provides the minimum
// logging level that updates are verified against.
func NewSettingsStore(emitter *base.Emitter) *SettingsStore {
	store := &SettingsStore{
		emitter: emitter,
	}
	snapshot, err := compileSettings(DefaultSettings(), emitter.MinLevel())
	if err != nil {
		logger.Panic("default settings failed verification: ", err)
	}
	store.current.Set(snapshot)
	return store
}

// Update verifies and applies new settings, or returns the reason for rejection while keeping
// the previous settings in effect
func (store *SettingsStore) Update(settings Settings) error {
	snapshot, err := compileSettings(settings, store.emitter.MinLevel())
	if err != nil {
		return err
	}
	store.current.Set(snapshot)
	return nil
}

// CurrentSettings implements SettingsProvider
func (store *SettingsStore) CurrentSettings() *Snapshot {
	return store.current.Get()
}

// VerifySettings checks whether the given settings would be accepted under the given host
// minimum logging level
func VerifySettings(settings Settings, minLevel base.Severity) error {
	_, err := compileSettings(settings, minLevel)
	return err
}

func compileSettings(settings Settings, minLevel base.Severity) (*Snapshot, error) {
	if err := verifyLevel(settings.Level, minLevel); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	if err := verifyDirectory(settings.Directory); err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}

	snapshot := &Snapshot{
		level:     settings.Level,
		directory: settings.Directory,
		console:   settings.Console,
	}
	if snapshot.console == "" {
		snapshot.console = ConsoleStderr
	}
	switch snapshot.console {
	case ConsoleStderr, ConsoleStdout:
	default:
		return nil, fmt.Errorf("console: unsupported stream %q", settings.Console)
	}
	if settings.Match != "" {
		matcher, err := glob.Compile(settings.Match)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		snapshot.matcher = matcher
	}
	return snapshot, nil
}

// verifyLevel checks the watched severity against the host's minimum logging level: watching a
// severity the host never emits would silently capture nothing
func verifyLevel(level base.Severity, minLevel base.Severity) error {
	if level == base.None {
		return nil
	}
	if !base.IsLoggable(level, minLevel) {
		return fmt.Errorf("cannot watch severity %q beyond the level at which the host emits diagnostics; raise the host minimum level (currently %q) first", level, minLevel)
	}
	return nil
}

func verifyDirectory(directory string) error {
	if directory == "" {
		return nil // console capture
	}
	if len(directory)+defs.CaptureFileNameReserve >= defs.CaptureMaxPathLength {
		return fmt.Errorf("directory path of %d characters leaves no room for capture file names", len(directory))
	}
	stat, err := os.Stat(directory)
	if err != nil || !stat.IsDir() {
		return fmt.Errorf("specified capture directory %q does not exist", directory)
	}
	return nil
}
