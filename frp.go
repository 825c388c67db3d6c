package frp

import (
	"log/slog"

	"github.com/AnatoleLucet/frp/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Engine runs transactions over a graph of cells and streams. An engine is
// driven from a single goroutine.
type Engine struct {
	engine *internal.Engine
}

type Option = internal.Option

// WithLogger sets the logger used for engine diagnostics. Engines are silent
// by default.
func WithLogger(logger *slog.Logger) Option {
	return internal.WithLogger(logger)
}

// WithQueueDepthHint preallocates the propagation queue for graphs of the given depth.
func WithQueueDepthHint(depth int) Option {
	return internal.WithQueueDepthHint(depth)
}

// New creates an independent engine.
func New(opts ...Option) *Engine {
	return &Engine{internal.NewEngine(opts...)}
}

// Default returns the engine of the calling goroutine.
func Default() *Engine {
	return &Engine{internal.Default()}
}

// Run executes fn in a single transaction: every send made by fn is
// propagated together once fn returns.
func (e *Engine) Run(fn func()) {
	e.engine.Run(fn)
}

// IsBusy reports whether the engine is propagating a transaction.
func (e *Engine) IsBusy() bool {
	return e.engine.IsBusy()
}

// Sink is implemented by CellSink and StreamSink.
type Sink[T any] interface {
	Send(v T)
	sinkNode() *internal.Node
}

// Send delivers v to sink through e, opening a transaction when none is open.
func Send[T any](e *Engine, sink Sink[T], v T) {
	e.engine.Send(sink.sinkNode(), v)
}

// Sample returns the committed value of c as seen by e.
func Sample[T any](e *Engine, c Cell[T]) T {
	return as[T](e.engine.Sample(c.node))
}

// Listener is the handle returned by Listen and Observe.
type Listener struct {
	node *internal.Node
}

// Close stops the listener.
func (l Listener) Close() {
	if l.node != nil {
		l.node.Close()
	}
}

var (
	ErrClosed           = internal.ErrClosed
	ErrCannotCoalesce   = internal.ErrCannotCoalesce
	ErrBusy             = internal.ErrBusy
	ErrAlreadyConnected = internal.ErrAlreadyConnected
	ErrNotCell          = internal.ErrNotCell
	ErrEquality         = internal.ErrEquality
	ErrConcurrentUse    = internal.ErrConcurrentUse
	ErrMutex            = internal.ErrMutex
	ErrCycle            = internal.ErrCycle
)

type (
	UsageError     = internal.UsageError
	CycleError     = internal.CycleError
	AssertionError = internal.AssertionError
)

// IsCycleError reports whether err is or wraps a CycleError.
func IsCycleError(err error) bool {
	return internal.IsCycleError(err)
}
