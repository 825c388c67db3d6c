package internal

import (
	"iter"
	"slices"
	"weak"
)

// rule describes how a node derives its value from its parents. The set of
// rules is closed; every consumer switches over the concrete types below.
type rule interface {
	engine() *Engine
}

type ruleBase struct {
	e *Engine
}

func (r ruleBase) engine() *Engine { return r.e }

type closedRule struct{}

func (*closedRule) engine() *Engine { return nil }

var closed rule = &closedRule{}

// sinkRule accepts external sends. A nil parents slice marks a sink that
// cannot coalesce; connecting such a sink replaces its rule with a copyRule.
type sinkRule struct {
	ruleBase
	parents  []weak.Pointer[Node]
	coalesce func(a, b any) any
}

type listenerRule struct {
	ruleBase
	parent weak.Pointer[Node]
	f      func(any)
}

type copyRule struct {
	ruleBase
	parent weak.Pointer[Node]
}

type mapRule struct {
	ruleBase
	parent weak.Pointer[Node]
	f      func(any) any
}

type filterRule struct {
	ruleBase
	parent weak.Pointer[Node]
	f      func(any) bool
}

type foldRule struct {
	ruleBase
	parent weak.Pointer[Node]
	f      func(acc, x any) any
}

type liftRule struct {
	ruleBase
	parent1 *Node
	parent2 *Node
	f       func(a, b any) any
}

type liftAllRule struct {
	ruleBase
	parents []*Node
	f       func([]any) any
}

type mergeRule struct {
	ruleBase
	parent1 weak.Pointer[Node]
	parent2 weak.Pointer[Node]
	f       func(a, b any) any
}

type selectRule struct {
	ruleBase
	parents []weak.Pointer[Node]
}

type meetRule struct {
	ruleBase
	parents []weak.Pointer[Node]
	f       func([]any) any
}

// snapshotRule reads the committed values of cells when parent fires.
type snapshotRule struct {
	ruleBase
	parent weak.Pointer[Node]
	cells  []*Node
	f      func(x any, cells []any) any
}

// snapshotLiveRule reads the most recent values of cells, including values
// sent in the current transaction.
type snapshotLiveRule struct {
	ruleBase
	parent weak.Pointer[Node]
	cells  []*Node
	f      func(x any, cells []any) any
}

type branchRule struct {
	ruleBase
	parent   weak.Pointer[Node]
	children map[any]*Node
}

type branchOnRule struct {
	ruleBase
	parent weak.Pointer[Node]
	key    any
}

// flattenRule follows the node currently held by container. The container
// is held strongly, the inner node weakly.
type flattenRule struct {
	ruleBase
	container *Node
	inner     weak.Pointer[Node]
	unwrap    func(any) *Node
}

// skip is returned by a recompute that must not fire its node.
type skip struct{}

// DoNotSend can be returned from a stream mapping function to suppress the
// firing.
var DoNotSend any = skip{}

func isSkip(v any) bool {
	_, ok := v.(skip)
	return ok
}

// notifiableParents yields the parents whose firing schedules a recompute of
// the rule's node. Dead weak references in sink and select lists are pruned.
func notifiableParents(r rule) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		switch r := r.(type) {
		case *closedRule, *branchOnRule:
		case *sinkRule:
			r.parents = yieldLive(r.parents, yield)
		case *selectRule:
			r.parents = yieldLive(r.parents, yield)
		case *meetRule:
			yieldWeak(yield, r.parents...)
		case *listenerRule:
			yieldWeak(yield, r.parent)
		case *copyRule:
			yieldWeak(yield, r.parent)
		case *mapRule:
			yieldWeak(yield, r.parent)
		case *filterRule:
			yieldWeak(yield, r.parent)
		case *foldRule:
			yieldWeak(yield, r.parent)
		case *snapshotRule:
			yieldWeak(yield, r.parent)
		case *snapshotLiveRule:
			yieldWeak(yield, r.parent)
		case *branchRule:
			yieldWeak(yield, r.parent)
		case *mergeRule:
			yieldWeak(yield, r.parent1, r.parent2)
		case *liftRule:
			_ = yield(r.parent1) && yield(r.parent2)
		case *liftAllRule:
			for _, p := range r.parents {
				if !yield(p) {
					return
				}
			}
		case *flattenRule:
			if yield(r.container) {
				yieldWeak(yield, r.inner)
			}
		default:
			debugAssert(false, "unknown rule", r)
		}
	}
}

// nonNotifiableParents yields parents that a node reads from without being
// scheduled by them.
func nonNotifiableParents(r rule) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		switch r := r.(type) {
		case *branchOnRule:
			yieldWeak(yield, r.parent)
		case *snapshotLiveRule:
			for _, c := range r.cells {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// allParents yields every node the rule must be ordered after. Cells read by
// a plain snapshot are not parents; only their committed value is read.
func allParents(r rule) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := range notifiableParents(r) {
			if !yield(p) {
				return
			}
		}
		for p := range nonNotifiableParents(r) {
			if !yield(p) {
				return
			}
		}
	}
}

func yieldWeak(yield func(*Node) bool, parents ...weak.Pointer[Node]) bool {
	for _, wp := range parents {
		if p := wp.Value(); p != nil {
			if !yield(p) {
				return false
			}
		}
	}
	return true
}

// yieldLive yields the live parents in order and returns the list with the
// dead entries removed.
func yieldLive(parents []weak.Pointer[Node], yield func(*Node) bool) []weak.Pointer[Node] {
	parents = slices.DeleteFunc(parents, func(wp weak.Pointer[Node]) bool {
		return wp.Value() == nil
	})
	for _, wp := range parents {
		if p := wp.Value(); p != nil && !yield(p) {
			break
		}
	}
	return parents
}

// sampleAllowed reports whether the user function of n may call Sample while
// the engine propagates.
func sampleAllowed(n *Node) bool {
	switch n.rule.(type) {
	case *mapRule:
		return n.IsStream()
	case *filterRule, *foldRule, *mergeRule, *snapshotRule:
		return true
	}
	return false
}
