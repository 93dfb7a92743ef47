package run

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/defs"
)

// Reloader extends Loader to re-apply settings from the config file while a replay is running,
// the way a live host re-reads its server configuration on SIGHUP.
//
// Only the host minimum level and the tap section take effect on reload; everything else about
// a running replay is fixed at startup. A rejected config file keeps the previous settings.
type Reloader struct {
	*Loader

	loadingLock sync.Mutex
}

// NewReloaderFromConfigFile creates a Reloader from the config file at the given path
func NewReloaderFromConfigFile(filepath string, metricPrefix string) (*Reloader, error) {
	loader, loaderErr := NewLoaderFromConfigFile(filepath, metricPrefix)
	if loaderErr != nil {
		return nil, loaderErr // return error if config file is invalid at startup (NOT when reloading)
	}

	return &Reloader{
		Loader: loader,
	}, nil
}

// Reload re-reads the config file and applies the reloadable sections. Failures of any kind are
// counted and logged here; the error is returned only for the caller to inspect.
func (reloader *Reloader) Reload() error {
	reloader.loadingLock.Lock()
	defer reloader.loadingLock.Unlock()

	rlogger := logger.WithField(defs.LabelComponent, "Reloader")

	config, configErr := LoadConfigFile(reloader.filepath)
	if configErr != nil {
		reloadFailureCounter.Inc()
		rlogger.Error("failed to reload: ", configErr)
		return configErr
	}

	// the new minimum level must be in effect before the tap level is verified against it
	reloader.Emitter.SetMinLevel(config.Host.MinLevel)
	if updateErr := reloader.Store.Update(config.Tap); updateErr != nil {
		reloadFailureCounter.Inc()
		rlogger.Error("failed to reload: ", updateErr)
		return fmt.Errorf("%s: tap: %w", reloader.filepath, updateErr)
	}

	reloadSuccessCounter.Inc()
	rlogger.Infof("reloaded %s: watching severity %q", reloader.filepath, config.Tap.Level)
	return nil
}

// ListenForReload triggers Reload on every SIGHUP until the returned stop function is called
func (reloader *Reloader) ListenForReload() (stop func()) {
	// unbuffered since new SIGHUPs can be ignored while reloading
	sigChan := make(chan os.Signal)
	signal.Notify(sigChan, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigChan:
				_ = reloader.Reload()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
