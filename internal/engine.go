package internal

import (
	"log/slog"
	"weak"
)

type State int

const (
	StateIdle State = iota
	StatePreparing
	StateBusy
	StateBusySampleAllowed
	StateDispatching
	StateFinishedDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateBusy:
		return "busy"
	case StateBusySampleAllowed:
		return "busy (sample allowed)"
	case StateDispatching:
		return "dispatching"
	case StateFinishedDispatching:
		return "finished dispatching"
	}
	return "unknown"
}

// Engine owns the transaction state of a graph. It is not safe for
// concurrent use; each goroutine should drive its own engine.
type Engine struct {
	state State
	queue *Queue
	dirty []*Node // nodes updated in the current transaction, in update order

	// incremented for every transaction, compared against Node.seen
	clock uint64

	// goroutine that opened the current transaction
	gid int64

	plainSink *sinkRule
	logger    *slog.Logger
}

type Option func(*Engine)

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithQueueDepthHint preallocates depth buckets for graphs of the given depth.
func WithQueueDepthHint(depth int) Option {
	return func(e *Engine) {
		e.queue = NewQueue(depth)
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state:  StateIdle,
		queue:  NewQueue(16),
		logger: slog.New(slog.DiscardHandler),
	}
	e.plainSink = &sinkRule{ruleBase: ruleBase{e}}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() State {
	return e.state
}

// IsBusy reports whether the engine is propagating values.
func (e *Engine) IsBusy() bool {
	return e.state == StateBusy || e.state == StateBusySampleAllowed
}

// propagating reports whether the graph topology is frozen.
func (e *Engine) propagating() bool {
	switch e.state {
	case StateBusy, StateBusySampleAllowed, StateDispatching, StateFinishedDispatching:
		return true
	}
	return false
}

// Run executes fn inside a transaction. Nested calls made while the
// transaction is preparing run inline.
func (e *Engine) Run(fn func()) {
	switch e.state {
	case StateIdle:
	case StatePreparing:
		e.checkGoroutine("run")
		fn()
		return
	default:
		panic(usage("run", ErrBusy))
	}

	e.clock++
	e.gid = currentGoroutine()
	defer e.finish()

	e.state = StatePreparing
	fn()

	e.state = StateBusy
	e.propagate()
	e.commit()

	e.state = StateDispatching
	e.dispatch()

	e.state = StateFinishedDispatching
}

func (e *Engine) propagate() {
	for n := e.queue.Poll(); n != nil; n = e.queue.Poll() {
		if n.seen == e.clock || n.IsClosed() {
			continue
		}
		n.seen = e.clock

		if sampleAllowed(n) {
			e.state = StateBusySampleAllowed
		}
		v := e.recompute(n)
		e.state = StateBusy

		if !isSkip(v) {
			e.doSend(n, v)
		}
	}
}

func (e *Engine) commit() {
	for _, n := range e.dirty {
		if !n.IsStream() {
			n.value = n.newValue
		}
	}
}

func (e *Engine) dispatch() {
	for _, n := range e.dirty {
		debugAssert(n.updated(), "dirty node without a pending value", n)
		if r, ok := n.rule.(*listenerRule); ok {
			r.f(n.newValue)
		}
	}
}

// finish restores the idle state, also after a panic.
func (e *Engine) finish() {
	if e.state != StateFinishedDispatching {
		e.logger.Debug("transaction aborted", "state", e.state, "updated", len(e.dirty))
	}

	e.queue.Reset()
	for _, n := range e.dirty {
		n.newValue = nil
		n.flags.clear(flagUpdated)
	}
	clear(e.dirty)
	e.dirty = e.dirty[:0]

	e.gid = 0
	e.state = StateIdle
}

func (e *Engine) checkGoroutine(op string) {
	if gid := currentGoroutine(); gid != e.gid {
		e.logger.Error("engine shared between goroutines", "op", op, "owner", e.gid, "caller", gid)
		panic(usage(op, ErrConcurrentUse))
	}
}

func (e *Engine) assertOwn(n *Node) {
	if ne := n.Engine(); ne != nil {
		debugAssert(ne == e, "node belongs to another engine", n)
	}
}

// Send delivers v to the sink n, opening a transaction when none is open.
func (e *Engine) Send(n *Node, v any) {
	e.assertOwn(n)
	if n.IsClosed() {
		panic(usage("send", ErrClosed))
	}

	switch e.state {
	case StateIdle:
		e.Run(func() { e.doSend(n, v) })
	case StatePreparing:
		e.checkGoroutine("send")
		e.doSend(n, v)
	default:
		panic(usage("send", ErrBusy))
	}
}

func (e *Engine) doSend(n *Node, v any) {
	if !n.IsStream() && n.isEqual(n.value, v) {
		return
	}

	switch r := n.rule.(type) {
	case *closedRule:
		debugAssert(false, "send to a closed node", n)
	case *sinkRule:
		if n.updated() {
			if r.coalesce == nil {
				panic(usage("send", ErrCannotCoalesce))
			}
			n.newValue = r.coalesce(n.newValue, v)
			return
		}
	default:
		debugAssert(!n.updated(), "node updated twice in one transaction", n)
	}

	n.newValue = v
	n.flags.set(flagUpdated)
	e.dirty = append(e.dirty, n)

	for _, child := range n.notifiable {
		e.queue.Enqueue(child)
	}
}

// Sample returns the committed value of the cell n.
func (e *Engine) Sample(n *Node) any {
	if n.IsStream() {
		panic(usage("sample", ErrNotCell))
	}
	if e.state == StateBusy {
		e.logger.Warn("cell sampled while propagating", "node", n.String())
	}
	return n.value
}

// Sample returns the committed value of a cell, which may be closed.
func (n *Node) Sample() any {
	if e := n.Engine(); e != nil {
		return e.Sample(n)
	}
	if n.IsStream() {
		panic(usage("sample", ErrNotCell))
	}
	return n.value
}

// Connect makes sink follow source. A cell source also sends its current
// value to the sink.
func Connect(sink, source *Node) {
	e := sink.Engine()
	if e == nil {
		panic(usage("connect", ErrClosed))
	}
	e.assertOwn(source)
	if e.propagating() {
		panic(usage("connect", ErrBusy))
	}

	r, ok := sink.rule.(*sinkRule)
	if !ok {
		panic(usage("connect", ErrAlreadyConnected))
	}

	if source.depth >= sink.depth {
		if path := findCycle(sink, source); path != nil {
			err := newCycleError(path)
			e.logger.Error("connect rejected", "err", err)
			panic(err)
		}
	}

	preparing := e.state == StatePreparing
	if preparing && !source.IsStream() && sink.updated() && r.coalesce == nil {
		panic(usage("connect", ErrCannotCoalesce))
	}

	if !source.IsStream() && (!preparing || source.IsClosed()) {
		e.Send(sink, source.value)
	}

	if r.parents == nil {
		sink.rule = &copyRule{ruleBase: ruleBase{e}, parent: weak.Make(source)}
	} else {
		r.parents = append(r.parents, weak.Make(source))
	}
	if source.IsClosed() {
		return
	}
	source.notifiable = append(source.notifiable, sink)

	if sink.recomputeDepth() && preparing {
		e.queue.Rebuild()
	}

	// the source may already have fired in this transaction, or fire after
	// the connection; the sink recomputes from its most recent value
	if preparing && (!source.IsStream() || source.updated()) {
		e.queue.Enqueue(sink)
	}
}

// Close detaches n from the graph and tidies the nodes that depended on it.
func (n *Node) Close() {
	if e := n.Engine(); e != nil && e.propagating() {
		panic(usage("close", ErrBusy))
	}
	closeNode(n)
}
