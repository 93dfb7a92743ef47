package base

import "context"

// Handler observes diagnostic records dispatched by an Emitter.
//
// Handlers run synchronously on the emitting goroutine, in installation order. A handler cannot
// stop a record from reaching handlers installed after it or the terminal sink. A handler may
// emit further diagnostics through the same Emitter; recognizing and skipping its own reentrant
// events is the handler's job, normally by tagging the context it passes to Emit.
type Handler interface {
	HandleDiagnostic(ctx context.Context, record *Record)
}

// HandlerFunc adapts a plain function to the Handler interface
type HandlerFunc func(ctx context.Context, record *Record)

// HandleDiagnostic implements Handler
func (f HandlerFunc) HandleDiagnostic(ctx context.Context, record *Record) {
	f(ctx, record)
}
