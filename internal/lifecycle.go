package internal

import (
	"slices"
	"weak"
)

// closeNode marks n closed, unlinks it from its parents and tidies its former
// children.
func closeNode(n *Node) {
	if n.IsClosed() {
		return
	}

	children := slices.Collect(n.children())
	r := n.rule
	n.rule = closed
	n.depth = 0

	for p := range notifiableParents(r) {
		p.removeNotifiable(n)
	}
	for p := range nonNotifiableParents(r) {
		p.removeNonNotifiable(n)
	}

	n.notifiable = nil
	n.nonNotifiable = nil

	for _, child := range children {
		tidy(child)
	}
}

// tidy simplifies the rule of n after one of its parents closed, closing n
// when it can no longer fire.
func tidy(n *Node) {
	switch r := n.rule.(type) {
	case *closedRule:
		return

	case *meetRule:
		for _, wp := range r.parents {
			if p := wp.Value(); p == nil || p.IsClosed() {
				closeNode(n)
				return
			}
		}
		return

	case *flattenRule:
		if !r.container.IsClosed() {
			return
		}
		inner := r.inner.Value()
		if inner == nil || inner.IsClosed() {
			closeNode(n)
			return
		}
		r.container.removeNotifiable(n)
		n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.inner}
		return
	}

	open := 0
	for p := range notifiableParents(n.rule) {
		if !p.IsClosed() {
			open++
		}
	}
	if open == 0 {
		closeNode(n)
		return
	}

	switch r := n.rule.(type) {
	case *mergeRule:
		if p := r.parent1.Value(); p == nil || p.IsClosed() {
			n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.parent2}
		} else if p := r.parent2.Value(); p == nil || p.IsClosed() {
			n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.parent1}
		}

	case *selectRule:
		r.parents = slices.DeleteFunc(r.parents, func(wp weak.Pointer[Node]) bool {
			p := wp.Value()
			return p == nil || p.IsClosed()
		})
		if len(r.parents) == 1 {
			n.rule = &copyRule{ruleBase: r.ruleBase, parent: r.parents[0]}
		}

	case *sinkRule:
		r.parents = slices.DeleteFunc(r.parents, func(wp weak.Pointer[Node]) bool {
			p := wp.Value()
			return p == nil || p.IsClosed()
		})
	}
}
