package run

import (
	"context"
	"fmt"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/tap"
)

// Loader loads configuration from file and wires a replay host around it: an emitter configured
// like the recorded host, a settings store and a tap.
//
// Loader takes care of everything derived from the config file but doesn't trigger anything by
// itself; the tap is left uninstalled and replaying is driven by the caller, see Replay()
type Loader struct {
	filepath string // config file path

	Config        *Config
	MetricFactory *base.MetricFactory
	Emitter       *base.Emitter
	Store         *tap.SettingsStore
	Tap           *tap.Tap

	activeStatement string // statement in flight for the event currently replayed
}

// NewLoaderFromConfigFile creates a Loader from the config file at the given path
func NewLoaderFromConfigFile(filepath string, metricPrefix string) (*Loader, error) {
	config, configErr := LoadConfigFile(filepath)
	if configErr != nil {
		return nil, configErr
	}
	return newLoader(filepath, config, metricPrefix)
}

// NewLoaderFromConfigString creates a Loader from inline config contents, mainly for testing
func NewLoaderFromConfigString(contents string, metricPrefix string) (*Loader, error) {
	config, configErr := LoadConfigString(contents)
	if configErr != nil {
		return nil, configErr
	}
	return newLoader("(inline)", config, metricPrefix)
}

func newLoader(filepath string, config *Config, metricPrefix string) (*Loader, error) {
	loader := &Loader{
		filepath:      filepath,
		Config:        config,
		MetricFactory: base.NewMetricFactory(metricPrefix, nil, nil),
	}
	loader.Emitter = base.NewEmitter(logger.Root(), base.EmitterConfig{
		MinLevel:  config.Host.MinLevel,
		ProcessID: config.Host.ProcessID,
		Statement: func() string { return loader.activeStatement },
	})
	loader.Store = tap.NewSettingsStore(loader.Emitter)
	loader.Tap = tap.NewTap(logger.Root(), loader.Emitter, loader.Store, loader.MetricFactory)

	// applied through the store so a capture directory lost since verification is caught here
	if err := loader.Store.Update(config.Tap); err != nil {
		return nil, fmt.Errorf("%s: tap: %w", loader.filepath, err)
	}
	return loader, nil
}

// ReplayEvents drives recorded events through the emitter in order. Replaying is
// single-threaded; the statement accessor follows the event being replayed.
func (loader *Loader) ReplayEvents(ctx context.Context, events []RecordedEvent) error {
	for i := range events {
		record, err := events[i].ToRecord()
		if err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
		loader.activeStatement = events[i].Statement
		loader.Emitter.Emit(ctx, record)
		replayedEventCounter.Inc()
	}
	loader.activeStatement = ""
	return nil
}
