package internal

import "weak"

// recompute derives the pending value of n from its parents. Returning
// DoNotSend leaves n untouched for this transaction.
func (e *Engine) recompute(n *Node) any {
	switch r := n.rule.(type) {
	case *closedRule, *branchOnRule:
		debugAssert(false, "node should not be recomputed", n)
		return DoNotSend

	case *sinkRule:
		v, ok := any(nil), false
		for p := range notifiableParents(r) {
			switch {
			case !p.updated():
			case !ok:
				v, ok = p.newValue, true
			default:
				v = r.coalesce(v, p.newValue)
			}
		}
		if !ok {
			return DoNotSend
		}
		return v

	case *listenerRule:
		return e.fromParent(n, r.parent, func(p *Node) any { return p.newValue })

	case *copyRule:
		// a sink connected while preparing is scheduled even when its cell
		// source has not changed
		p := r.parent.Value()
		if p == nil {
			closeNode(n)
			return DoNotSend
		}
		if p.IsStream() {
			assertUpdated(p)
		}
		return p.mostRecent()

	case *mapRule:
		return e.fromParent(n, r.parent, func(p *Node) any { return r.f(p.newValue) })

	case *filterRule:
		return e.fromParent(n, r.parent, func(p *Node) any {
			if r.f(p.newValue) {
				return p.newValue
			}
			return DoNotSend
		})

	case *foldRule:
		return e.fromParent(n, r.parent, func(p *Node) any { return r.f(n.value, p.newValue) })

	case *liftRule:
		assertUpdated(r.parent1, r.parent2)
		return r.f(r.parent1.mostRecent(), r.parent2.mostRecent())

	case *liftAllRule:
		assertUpdated(r.parents...)
		values := make([]any, len(r.parents))
		for i, p := range r.parents {
			values[i] = p.mostRecent()
		}
		return r.f(values)

	case *mergeRule:
		p1, p2 := r.parent1.Value(), r.parent2.Value()
		switch {
		case p1 == nil && p2 == nil:
			closeNode(n)
			return DoNotSend
		case p1 == nil:
			n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.parent2}
			return e.recompute(n)
		case p2 == nil:
			n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.parent1}
			return e.recompute(n)
		}
		assertUpdated(p1, p2)
		switch {
		case p1.updated() && p2.updated():
			return r.f(p1.newValue, p2.newValue)
		case p1.updated():
			return p1.newValue
		default:
			return p2.newValue
		}

	case *selectRule:
		for p := range notifiableParents(r) {
			if p.updated() {
				return p.newValue
			}
		}
		debugAssert(false, "select recomputed without an updated parent", n)
		return DoNotSend

	case *meetRule:
		values := make([]any, 0, len(r.parents))
		for _, wp := range r.parents {
			p := wp.Value()
			if p == nil {
				closeNode(n)
				return DoNotSend
			}
			if !p.updated() {
				return DoNotSend
			}
			values = append(values, p.newValue)
		}
		return r.f(values)

	case *snapshotRule:
		return e.fromParent(n, r.parent, func(p *Node) any {
			values := make([]any, len(r.cells))
			for i, c := range r.cells {
				values[i] = c.value
			}
			return r.f(p.newValue, values)
		})

	case *snapshotLiveRule:
		return e.fromParent(n, r.parent, func(p *Node) any {
			values := make([]any, len(r.cells))
			for i, c := range r.cells {
				values[i] = c.mostRecent()
			}
			return r.f(p.newValue, values)
		})

	case *branchRule:
		return e.fromParent(n, r.parent, func(p *Node) any {
			next := r.children[p.newValue]
			if !p.IsStream() {
				prev := r.children[p.value]
				if prev != next {
					if prev != nil {
						e.doSend(prev, false)
					}
					if next != nil {
						e.doSend(next, true)
					}
				}
			} else if next != nil {
				e.doSend(next, p.newValue)
			}
			return p.newValue
		})

	case *flattenRule:
		return e.recomputeFlatten(n, r)
	}

	debugAssert(false, "unknown rule", n.rule)
	return DoNotSend
}

// fromParent applies f to the single weak parent of n, closing n when the
// parent has been collected.
func (e *Engine) fromParent(n *Node, wp weak.Pointer[Node], f func(p *Node) any) any {
	p := wp.Value()
	if p == nil {
		closeNode(n)
		return DoNotSend
	}
	assertUpdated(p)
	return f(p)
}

func (e *Engine) recomputeFlatten(n *Node, r *flattenRule) any {
	prev := r.inner.Value()
	next := r.unwrap(r.container.mostRecent())

	if prev != next {
		if next != nil {
			e.assertOwn(next)
			if next.depth >= n.depth {
				if path := findCycle(n, next); path != nil {
					panic(newCycleError(path))
				}
			}
		}

		if prev != nil {
			prev.removeNotifiable(n)
		}
		r.inner = weak.Pointer[Node]{}
		if next != nil {
			r.inner = weak.Make(next)
			if !next.IsClosed() {
				next.notifiable = append(next.notifiable, n)
			}
		}

		// n now sits deeper than the read cursor; postpone it until the new
		// inner node has been processed
		if n.recomputeDepth() {
			e.queue.Rebuild()
			n.seen = 0
			e.queue.Enqueue(n)
			return DoNotSend
		}
	}

	switch {
	case next == nil:
		if n.IsStream() {
			return DoNotSend
		}
		return nil
	case next.updated():
		return next.newValue
	case !next.IsStream():
		return next.value
	}
	return DoNotSend
}

func assertUpdated(nodes ...*Node) {
	if !debug {
		return
	}
	for _, p := range nodes {
		if p.updated() {
			return
		}
	}
	debugAssert(false, "recomputed without an updated parent", nil)
}
