package internal

import (
	"fmt"
	"iter"
	"slices"
)

// Node is a cell or a stream in the dependency graph. Values are untyped at
// this level; the frp package converts them back to their static types.
type Node struct {
	name  string
	depth int
	flags flags

	value    any // committed value, always nil for streams
	newValue any // pending value, meaningful while flagUpdated is set

	rule  rule
	equal func(a, b any) bool

	// seen is the engine clock of the last transaction that recomputed the node
	seen uint64

	notifiable    []*Node
	nonNotifiable []*Node
}

func newNode(r rule, value any, stream bool) *Node {
	n := &Node{rule: r}
	if stream {
		n.flags.set(flagStream)
	} else {
		n.value = value
	}

	for p := range notifiableParents(r) {
		if !p.IsClosed() {
			p.notifiable = append(p.notifiable, n)
		}
	}
	if _, ok := r.(*branchOnRule); !ok {
		for p := range nonNotifiableParents(r) {
			if !p.IsClosed() {
				p.nonNotifiable = append(p.nonNotifiable, n)
			}
		}
	}

	n.fixDepth()
	return n
}

// Constant returns a closed cell holding v.
func Constant(v any) *Node {
	return newNode(closed, v, false)
}

var never = newNode(closed, nil, true)

// Never returns the stream that never fires.
func Never() *Node {
	return never
}

func (n *Node) Engine() *Engine {
	return n.rule.engine()
}

func (n *Node) IsStream() bool {
	return n.flags.has(flagStream)
}

func (n *Node) IsClosed() bool {
	_, ok := n.rule.(*closedRule)
	return ok
}

func (n *Node) Depth() int {
	return n.depth
}

func (n *Node) Name() string {
	return n.name
}

// Named sets the name used in cycle reports.
func (n *Node) Named(name string) *Node {
	if n == never {
		return n
	}
	n.name = name
	return n
}

func (n *Node) String() string {
	if n.name == "" {
		return "<anonymous>"
	}
	return n.name
}

// Value returns the committed value of a cell.
func (n *Node) Value() any {
	return n.value
}

func (n *Node) updated() bool {
	return n.flags.has(flagUpdated)
}

// mostRecent returns the pending value if the node was updated in the
// current transaction, else the committed one.
func (n *Node) mostRecent() any {
	if n.updated() {
		return n.newValue
	}
	return n.value
}

// SetEqual replaces the equality used to suppress redundant cell updates.
// It can only be called once, before the cell has dependents.
func (n *Node) SetEqual(eq func(a, b any) bool) {
	if n.IsStream() {
		panic(usage("set equality", ErrNotCell))
	}
	if n.equal != nil {
		panic(usage("set equality", ErrEquality))
	}
	for range n.children() {
		panic(usage("set equality", ErrEquality))
	}
	n.equal = eq
}

func (n *Node) isEqual(a, b any) bool {
	if n.equal != nil {
		return n.equal(a, b)
	}
	return isEqual(a, b)
}

// isEqual compares with ==, treating values of non-comparable types as
// always different.
func isEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// children yields the notifiable children, then the non-notifiable ones, then
// the children of a branch.
func (n *Node) children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, c := range n.notifiable {
			if !yield(c) {
				return
			}
		}
		for _, c := range n.nonNotifiable {
			if !yield(c) {
				return
			}
		}
		if r, ok := n.rule.(*branchRule); ok {
			for _, c := range r.children {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func (n *Node) removeNotifiable(child *Node) {
	n.notifiable = slices.DeleteFunc(n.notifiable, func(c *Node) bool { return c == child })
}

func (n *Node) removeNonNotifiable(child *Node) {
	if r, ok := n.rule.(*branchRule); ok {
		if on, ok := child.rule.(*branchOnRule); ok && r.children[on.key] == child {
			delete(r.children, on.key)
			return
		}
	}
	n.nonNotifiable = slices.DeleteFunc(n.nonNotifiable, func(c *Node) bool { return c == child })
}

// fixDepth sets the depth to one more than the deepest parent and reports
// whether it increased.
func (n *Node) fixDepth() bool {
	depth := 0
	for p := range allParents(n.rule) {
		if p.depth >= depth {
			depth = p.depth + 1
		}
	}
	increased := depth > n.depth
	n.depth = depth
	return increased
}

// recomputeDepth fixes the depth of n and pushes any increase down to its
// descendants. Reaching n again means the graph has a cycle.
func (n *Node) recomputeDepth() bool {
	if !n.fixDepth() {
		return false
	}

	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for child := range cur.children() {
			if child == n {
				panic(n.cycleError())
			}
			if child.fixDepth() {
				stack = append(stack, child)
			}
		}
	}
	return true
}

func (n *Node) cycleError() *CycleError {
	for p := range allParents(n.rule) {
		if path := findCycle(n, p); path != nil {
			return newCycleError(path)
		}
	}
	return newCycleError([]*Node{n})
}

func (n *Node) GoString() string {
	kind := "cell"
	if n.IsStream() {
		kind = "stream"
	}
	return fmt.Sprintf("%s %s (depth %d)", kind, n, n.depth)
}
