// Package run wires a replay host from a config file and drives recorded diagnostic events
// through the configured tap
package run

import (
	"context"
	"fmt"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/defs"
	"github.com/relex/diag-tap/util"
)

// Replay loads the config file and all recorded event files matching the pattern, then replays
// every event through the configured tap in file order. With dryRun it stops after verification
// and dumps the effective configuration instead.
//
// While a replay is running, SIGHUP re-applies the reloadable config sections; see Reloader
func Replay(configFile string, eventsPattern string, metricPrefix string, dryRun bool) error {
	loader, err := NewReloaderFromConfigFile(configFile, metricPrefix)
	if err != nil {
		return err
	}

	paths, err := util.ListFiles(eventsPattern)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no event files match %q", eventsPattern)
	}

	fileEvents := make([][]RecordedEvent, 0, len(paths))
	numEvents := 0
	for _, path := range paths {
		events, eventsErr := LoadEventsFile(path, loader.Config.Input.MaxRecordSize)
		if eventsErr != nil {
			return fmt.Errorf("%s: %w", path, eventsErr)
		}
		fileEvents = append(fileEvents, events)
		numEvents += len(events)
	}

	rlogger := logger.WithField(defs.LabelComponent, "Replay")
	if dryRun {
		dump, dumpErr := util.MarshalYaml(loader.Config)
		if dumpErr != nil {
			return dumpErr
		}
		rlogger.Infof("verified %d events in %d files, effective configuration:\n%s", numEvents, len(paths), dump)
		return nil
	}

	loader.Tap.Install()
	defer loader.Tap.Uninstall()

	stopReloading := loader.ListenForReload()
	defer stopReloading()

	ctx := context.Background()
	for i, events := range fileEvents {
		if replayErr := loader.ReplayEvents(ctx, events); replayErr != nil {
			return fmt.Errorf("%s: %w", paths[i], replayErr)
		}
		replayedFileCounter.Inc()
		rlogger.Infof("replayed %d events from %s", len(events), paths[i])
	}
	rlogger.Infof("replayed %d events from %d files", numEvents, len(paths))
	return nil
}
