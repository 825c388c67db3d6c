package frp

import "github.com/AnatoleLucet/frp/internal"

// Cell is a time-varying value. The zero Cell stands for "no cell" and is
// only meaningful as a value inside a cell passed to Flatten.
type Cell[T any] struct {
	node *internal.Node
}

// NewCell creates a cell sink holding initial.
func NewCell[T any](e *Engine, initial T) CellSink[T] {
	return CellSink[T]{Cell[T]{e.engine.Cell(initial)}}
}

// Constant creates a cell that never changes.
func Constant[T any](v T) Cell[T] {
	return Cell[T]{internal.Constant(v)}
}

// Sample returns the committed value of the cell.
func (c Cell[T]) Sample() T {
	return as[T](c.node.Sample())
}

// Listen calls f with each new value, after the transaction that produced it.
func (c Cell[T]) Listen(f func(T)) Listener {
	return Listener{internal.Listen(c.node, func(v any) { f(as[T](v)) })}
}

// Observe calls f with the current value, then with each new value.
func (c Cell[T]) Observe(f func(T)) Listener {
	return Listener{internal.Observe(c.node, func(v any) { f(as[T](v)) })}
}

// Updates returns a stream that fires each new value of the cell.
func (c Cell[T]) Updates() Stream[T] {
	return Stream[T]{internal.Updates(c.node)}
}

// Named sets the name shown in cycle reports.
func (c Cell[T]) Named(name string) Cell[T] {
	c.node.Named(name)
	return c
}

func (c Cell[T]) Name() string {
	return c.node.Name()
}

// SetEqualityFunc replaces the equality used to drop redundant updates. It
// must be called before anything depends on the cell.
func (c Cell[T]) SetEqualityFunc(eq func(a, b T) bool) Cell[T] {
	c.node.SetEqual(func(a, b any) bool { return eq(as[T](a), as[T](b)) })
	return c
}

func (c Cell[T]) IsClosed() bool {
	return c.node.IsClosed()
}

// Close detaches the cell from the graph. Its value is frozen.
func (c Cell[T]) Close() {
	c.node.Close()
}

// MapCell derives a cell by applying the pure function f.
func MapCell[T, U any](c Cell[T], f func(T) U) Cell[U] {
	return Cell[U]{internal.Map(c.node, func(v any) any { return f(as[T](v)) })}
}

// Lift combines two cells with the pure function f. It updates once per
// transaction even when both cells change.
func Lift[A, B, R any](a Cell[A], b Cell[B], f func(A, B) R) Cell[R] {
	return Cell[R]{internal.Lift(a.node, b.node, func(x, y any) any {
		return f(as[A](x), as[B](y))
	})}
}

// LiftAll combines any number of cells with the pure function f.
func LiftAll[T, R any](cells []Cell[T], f func([]T) R) Cell[R] {
	return Cell[R]{internal.LiftAll(nodes(cells), func(vs []any) any {
		return f(values[T](vs))
	})}
}

// Flatten follows the cell currently held by c. The zero Cell yields the
// zero value of T.
func Flatten[T any](c Cell[Cell[T]]) Cell[T] {
	return Cell[T]{internal.Flatten(c.node, false, func(v any) *internal.Node {
		return as[Cell[T]](v).node
	})}
}

// FlattenStream fires the values of the stream currently held by c.
func FlattenStream[T any](c Cell[Stream[T]]) Stream[T] {
	return Stream[T]{internal.Flatten(c.node, true, func(v any) *internal.Node {
		return as[Stream[T]](v).node
	})}
}

// CellBranch demultiplexes a cell by value.
type CellBranch[T comparable] struct {
	node *internal.Node
}

// BranchCell prepares c for cheap equality tests against many keys.
func BranchCell[T comparable](c Cell[T]) CellBranch[T] {
	return CellBranch[T]{internal.Branch(c.node)}
}

// When returns a cell that is true while the branched cell equals key.
func (b CellBranch[T]) When(key T) Cell[bool] {
	return Cell[bool]{internal.When(b.node, key)}
}

// Cell returns the branched cell itself.
func (b CellBranch[T]) Cell() Cell[T] {
	return Cell[T]{b.node}
}

func nodes[T any](cells []Cell[T]) []*internal.Node {
	ns := make([]*internal.Node, len(cells))
	for i, c := range cells {
		ns[i] = c.node
	}
	return ns
}

func values[T any](vs []any) []T {
	ts := make([]T, len(vs))
	for i, v := range vs {
		ts[i] = as[T](v)
	}
	return ts
}
