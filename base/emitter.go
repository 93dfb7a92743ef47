package base

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/defs"
	"github.com/relex/diag-tap/util"
)

// EmitterConfig carries the host-side knobs for a new Emitter
type EmitterConfig struct {
	MinLevel  Severity      // initial minimum logging level of the host
	ProcessID int           // process identity stamped on formatted output, 0 = current process
	Statement func() string // optional accessor for the host statement in flight, nil = none
	Terminal  Handler       // final sink after all installed handlers, nil = the process logger
}

// Emitter dispatches diagnostic records raised by the host program through the installed handler
// chain and finally to the terminal sink.
//
// Records that would not reach the host's server log under the current minimum level are dropped
// up front; see IsLoggable for the ordering rules. The chain may be read from any goroutine while
// handlers are installed or removed from another.
type Emitter struct {
	logger    logger.Logger
	pid       int
	statement func() string
	terminal  Handler
	minLevel  atomic.Int32
	chainLock sync.Mutex
	chain     util.AtomicRef[[]*chainEntry]
}

// chainEntry wraps an installed handler; the wrapper's identity ties an uninstall function to
// exactly one installation even if the same handler is installed twice
type chainEntry struct {
	handler Handler
}

// NewEmitter creates an Emitter for the host described by the given config
func NewEmitter(parentLogger logger.Logger, config EmitterConfig) *Emitter {
	emitter := &Emitter{
		logger:    parentLogger.WithField(defs.LabelComponent, "Emitter"),
		pid:       config.ProcessID,
		statement: config.Statement,
		terminal:  config.Terminal,
	}
	if emitter.pid == 0 {
		emitter.pid = os.Getpid()
	}
	if emitter.statement == nil {
		emitter.statement = func() string { return "" }
	}
	if emitter.terminal == nil {
		emitter.terminal = newLoggerSink(emitter.logger)
	}
	emitter.minLevel.Store(int32(config.MinLevel))
	emitter.chain.Set(&[]*chainEntry{})
	return emitter
}

// MinLevel returns the minimum logging level currently in effect
func (emitter *Emitter) MinLevel() Severity {
	return Severity(emitter.minLevel.Load())
}

// SetMinLevel replaces the minimum logging level, applying from the next Emit on
func (emitter *Emitter) SetMinLevel(level Severity) {
	emitter.minLevel.Store(int32(level))
}

// ProcessID returns the process identity stamped on formatted output
func (emitter *Emitter) ProcessID() int {
	return emitter.pid
}

// ActiveStatement returns the host statement currently in flight, or "" if there is none
func (emitter *Emitter) ActiveStatement() string {
	return emitter.statement()
}

// Install appends the handler to the end of the dispatch chain and returns a function removing
// exactly that installation, leaving handlers installed before and after in place
func (emitter *Emitter) Install(handler Handler) (uninstall func()) {
	entry := &chainEntry{handler: handler}

	emitter.chainLock.Lock()
	oldChain := *emitter.chain.Get()
	newChain := make([]*chainEntry, 0, len(oldChain)+1)
	newChain = append(newChain, oldChain...)
	newChain = append(newChain, entry)
	emitter.chain.Set(&newChain)
	emitter.chainLock.Unlock()

	return func() {
		emitter.removeEntry(entry)
	}
}

func (emitter *Emitter) removeEntry(entry *chainEntry) {
	emitter.chainLock.Lock()
	oldChain := *emitter.chain.Get()
	newChain := make([]*chainEntry, 0, len(oldChain))
	for _, existing := range oldChain {
		if existing != entry {
			newChain = append(newChain, existing)
		}
	}
	emitter.chain.Set(&newChain)
	emitter.chainLock.Unlock()
}

// Emit dispatches one diagnostic record, blocking until every handler and the terminal sink have
// seen it. The record must not be modified afterwards.
func (emitter *Emitter) Emit(ctx context.Context, record *Record) {
	if !IsLoggable(record.Severity, emitter.MinLevel()) {
		return
	}
	for _, entry := range *emitter.chain.Get() {
		entry.handler.HandleDiagnostic(ctx, record)
	}
	emitter.terminal.HandleDiagnostic(ctx, record)
}
