package internal

import "weak"

// Cell creates an unconnected, non-coalescing cell sink.
func (e *Engine) Cell(initial any) *Node {
	return newNode(e.plainSink, initial, false)
}

// Sink creates a stream sink. A nil coalesce function makes a sink that
// rejects a second value in the same transaction.
func (e *Engine) Sink(coalesce func(a, b any) any) *Node {
	if coalesce == nil {
		return newNode(e.plainSink, nil, true)
	}
	return newNode(&sinkRule{
		ruleBase: ruleBase{e},
		parents:  []weak.Pointer[Node]{},
		coalesce: coalesce,
	}, nil, true)
}

// Send delivers v to the sink n through its engine.
func Send(n *Node, v any) {
	e := n.Engine()
	if e == nil {
		panic(usage("send", ErrClosed))
	}
	e.Send(n, v)
}

// SendAnd sends v to n and runs f in the same transaction.
func SendAnd(n *Node, v any, f func()) {
	e := n.Engine()
	if e == nil {
		panic(usage("send", ErrClosed))
	}
	e.Run(func() {
		e.Send(n, v)
		f()
	})
}

// engineOf returns the first non-nil engine among nodes, asserting that the
// others agree.
func engineOf(nodes ...*Node) *Engine {
	var e *Engine
	for _, n := range nodes {
		ne := n.Engine()
		if ne == nil {
			continue
		}
		if e == nil {
			e = ne
			continue
		}
		debugAssert(ne == e, "nodes belong to different engines", n)
	}
	return e
}

// Listen calls f with every value n fires, after the transaction committed.
// The returned node is closed to stop listening.
func Listen(n *Node, f func(any)) *Node {
	e := n.Engine()
	if e == nil {
		return n
	}
	return newNode(&listenerRule{ruleBase: ruleBase{e}, parent: weak.Make(n), f: f}, nil, true)
}

// Observe calls f with the current value of the cell n, then listens to it.
func Observe(n *Node, f func(any)) *Node {
	f(n.Sample())
	return Listen(n, f)
}

func Map(n *Node, f func(any) any) *Node {
	e := n.Engine()
	if n.IsStream() {
		if e == nil {
			return never
		}
		return newNode(&mapRule{ruleBase: ruleBase{e}, parent: weak.Make(n), f: f}, nil, true)
	}

	v := f(n.value)
	if e == nil {
		return Constant(v)
	}
	return newNode(&mapRule{ruleBase: ruleBase{e}, parent: weak.Make(n), f: f}, v, false)
}

func Filter(n *Node, f func(any) bool) *Node {
	e := n.Engine()
	if e == nil {
		return never
	}
	return newNode(&filterRule{ruleBase: ruleBase{e}, parent: weak.Make(n), f: f}, nil, true)
}

// Hold returns a cell holding the latest value fired by the stream n.
func Hold(n *Node, initial any) *Node {
	e := n.Engine()
	if e == nil {
		return Constant(initial)
	}
	return newNode(&copyRule{ruleBase: ruleBase{e}, parent: weak.Make(n)}, initial, false)
}

// Fold accumulates the values of n into a cell.
func Fold(n *Node, initial any, f func(acc, x any) any) *Node {
	e := n.Engine()
	if e == nil {
		return Constant(initial)
	}
	return newNode(&foldRule{ruleBase: ruleBase{e}, parent: weak.Make(n), f: f}, initial, false)
}

// Updates returns a stream firing every new value of the cell n.
func Updates(n *Node) *Node {
	e := n.Engine()
	if e == nil {
		return never
	}
	return newNode(&copyRule{ruleBase: ruleBase{e}, parent: weak.Make(n)}, nil, true)
}

func Lift(a, b *Node, f func(a, b any) any) *Node {
	v := f(a.value, b.value)
	e := engineOf(a, b)
	if e == nil {
		return Constant(v)
	}
	return newNode(&liftRule{ruleBase: ruleBase{e}, parent1: a, parent2: b, f: f}, v, false)
}

func LiftAll(parents []*Node, f func([]any) any) *Node {
	switch len(parents) {
	case 0:
		return Constant(f(nil))
	case 1:
		return Map(parents[0], func(v any) any { return f([]any{v}) })
	case 2:
		return Lift(parents[0], parents[1], func(a, b any) any { return f([]any{a, b}) })
	}

	values := make([]any, len(parents))
	for i, p := range parents {
		values[i] = p.value
	}
	v := f(values)

	e := engineOf(parents...)
	if e == nil {
		return Constant(v)
	}
	return newNode(&liftAllRule{ruleBase: ruleBase{e}, parents: parents, f: f}, v, false)
}

// Merge fires when either stream fires, combining simultaneous values with f.
func Merge(a, b *Node, f func(a, b any) any) *Node {
	switch {
	case a.IsClosed():
		return b
	case b.IsClosed():
		return a
	}
	e := engineOf(a, b)
	return newNode(&mergeRule{
		ruleBase: ruleBase{e},
		parent1:  weak.Make(a),
		parent2:  weak.Make(b),
		f:        f,
	}, nil, true)
}

// Select fires with the value of the first stream, in argument order, that
// fired in the transaction.
func Select(streams ...*Node) *Node {
	open := make([]*Node, 0, len(streams))
	for _, s := range streams {
		if !s.IsClosed() {
			open = append(open, s)
		}
	}

	switch len(open) {
	case 0:
		return never
	case 1:
		return open[0]
	}

	parents := make([]weak.Pointer[Node], len(open))
	for i, s := range open {
		parents[i] = weak.Make(s)
	}
	return newNode(&selectRule{ruleBase: ruleBase{engineOf(open...)}, parents: parents}, nil, true)
}

// Meet fires only in transactions where every stream fires.
func Meet(streams []*Node, f func([]any) any) *Node {
	if len(streams) == 0 {
		return never
	}
	for _, s := range streams {
		if s.IsClosed() {
			return never
		}
	}
	if len(streams) == 1 {
		return Map(streams[0], func(v any) any { return f([]any{v}) })
	}

	parents := make([]weak.Pointer[Node], len(streams))
	for i, s := range streams {
		parents[i] = weak.Make(s)
	}
	return newNode(&meetRule{ruleBase: ruleBase{engineOf(streams...)}, parents: parents, f: f}, nil, true)
}

// Snapshot fires when n fires, with f applied to the fired value and the
// values of cells. A live snapshot observes values sent to cells in the same
// transaction; a plain one reads their committed values.
func Snapshot(n *Node, cells []*Node, live bool, f func(x any, cells []any) any) *Node {
	if len(cells) == 0 {
		return Map(n, func(x any) any { return f(x, nil) })
	}
	if n.IsClosed() {
		return never
	}

	e := engineOf(n)
	for _, c := range cells {
		e.assertOwn(c)
	}
	if live {
		return newNode(&snapshotLiveRule{ruleBase: ruleBase{e}, parent: weak.Make(n), cells: cells, f: f}, nil, true)
	}
	return newNode(&snapshotRule{ruleBase: ruleBase{e}, parent: weak.Make(n), cells: cells, f: f}, nil, true)
}

// Branch returns a node that can demultiplex n by value with When.
func Branch(n *Node) *Node {
	e := n.Engine()
	if e == nil {
		return n
	}
	return newNode(&branchRule{
		ruleBase: ruleBase{e},
		parent:   weak.Make(n),
		children: map[any]*Node{},
	}, n.value, n.IsStream())
}

// When returns the child of the branch b for key. For a cell branch it is a
// boolean cell that is true while the branched cell equals key; for a stream
// branch it fires the values equal to key.
func When(b *Node, key any) *Node {
	stream := b.IsStream()
	var v any
	if !stream {
		v = isEqual(b.value, key)
	}

	switch r := b.rule.(type) {
	case *branchRule:
		if child, ok := r.children[key]; ok {
			return child
		}
		child := newNode(&branchOnRule{ruleBase: r.ruleBase, parent: weak.Make(b), key: key}, v, stream)
		r.children[key] = child
		return child
	case *closedRule:
		if stream {
			return never
		}
		return Constant(v)
	}

	debugAssert(false, "node is not a branch", b)
	return never
}

// Flatten follows the node that unwrap extracts from the value of the cell
// container. A nil result from unwrap means no inner node.
func Flatten(container *Node, stream bool, unwrap func(any) *Node) *Node {
	inner := unwrap(container.value)

	e := container.Engine()
	if e == nil {
		if inner != nil {
			return inner
		}
		if stream {
			return never
		}
		return Constant(nil)
	}

	r := &flattenRule{ruleBase: ruleBase{e}, container: container, unwrap: unwrap}
	var v any
	if inner != nil {
		e.assertOwn(inner)
		r.inner = weak.Make(inner)
		v = inner.value
	}
	return newNode(r, v, stream)
}
