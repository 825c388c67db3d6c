package frp

import "github.com/AnatoleLucet/frp/internal"

// Stream is a sequence of discrete events, firing at most once per
// transaction.
type Stream[T any] struct {
	node *internal.Node
}

// Never returns a stream that never fires.
func Never[T any]() Stream[T] {
	return Stream[T]{internal.Never()}
}

// NewSink creates a stream sink that accepts one value per transaction.
func NewSink[T any](e *Engine) StreamSink[T] {
	return StreamSink[T]{Stream[T]{e.engine.Sink(nil)}}
}

// NewCoalescingSink creates a stream sink that combines the values sent in
// one transaction with f.
func NewCoalescingSink[T any](e *Engine, f func(a, b T) T) StreamSink[T] {
	return StreamSink[T]{Stream[T]{e.engine.Sink(func(a, b any) any {
		return f(as[T](a), as[T](b))
	})}}
}

// Listen calls f with each fired value, after the transaction committed.
func (s Stream[T]) Listen(f func(T)) Listener {
	return Listener{internal.Listen(s.node, func(v any) { f(as[T](v)) })}
}

// Named sets the name shown in cycle reports.
func (s Stream[T]) Named(name string) Stream[T] {
	s.node.Named(name)
	return s
}

func (s Stream[T]) Name() string {
	return s.node.Name()
}

func (s Stream[T]) IsClosed() bool {
	return s.node.IsClosed()
}

// Close detaches the stream from the graph.
func (s Stream[T]) Close() {
	s.node.Close()
}

// Filter fires the values for which the pure predicate f holds.
func (s Stream[T]) Filter(f func(T) bool) Stream[T] {
	return Stream[T]{internal.Filter(s.node, func(v any) bool { return f(as[T](v)) })}
}

// Hold returns a cell holding the most recent value of the stream.
func (s Stream[T]) Hold(initial T) Cell[T] {
	return Cell[T]{internal.Hold(s.node, initial)}
}

// Gate fires the values of the stream while p holds, as committed before the
// transaction.
func (s Stream[T]) Gate(p Cell[bool]) Stream[T] {
	return SnapshotFilter(s, p, func(x T, ok bool) (T, bool) { return x, ok })
}

// GateLive is like Gate but sees values sent to p in the same transaction.
func (s Stream[T]) GateLive(p Cell[bool]) Stream[T] {
	return SnapLiveFilter(s, p, func(x T, ok bool) (T, bool) { return x, ok })
}

// Merge fires when either stream fires, combining simultaneous values with f.
func (s Stream[T]) Merge(other Stream[T], f func(a, b T) T) Stream[T] {
	return Stream[T]{internal.Merge(s.node, other.node, func(a, b any) any {
		return f(as[T](a), as[T](b))
	})}
}

// OrElse fires when either stream fires, preferring s.
func (s Stream[T]) OrElse(other Stream[T]) Stream[T] {
	return Select(s, other)
}

// MergeMutex merges streams that must never fire in the same transaction.
func (s Stream[T]) MergeMutex(other Stream[T]) Stream[T] {
	return Stream[T]{internal.Merge(s.node, other.node, func(a, b any) any {
		panic(&UsageError{Op: "merge", Err: ErrMutex})
	})}
}

// Map derives a stream by applying f to each fired value.
func Map[T, U any](s Stream[T], f func(T) U) Stream[U] {
	return Stream[U]{internal.Map(s.node, func(v any) any { return f(as[T](v)) })}
}

// FilterMap applies f to each fired value and fires the results f accepts.
func FilterMap[T, U any](s Stream[T], f func(T) (U, bool)) Stream[U] {
	return Stream[U]{internal.Map(s.node, func(v any) any {
		if u, ok := f(as[T](v)); ok {
			return u
		}
		return internal.DoNotSend
	})}
}

// Fold accumulates the fired values into a cell.
func Fold[T, U any](s Stream[T], initial U, f func(acc U, x T) U) Cell[U] {
	return Cell[U]{internal.Fold(s.node, initial, func(acc, x any) any {
		return f(as[U](acc), as[T](x))
	})}
}

// FoldS is like Fold but returns the stream of new accumulator values.
func FoldS[T, U any](s Stream[T], initial U, f func(acc U, x T) U) Stream[U] {
	_, updates := FoldBoth(s, initial, f)
	return updates
}

// FoldBoth returns the accumulator cell together with its stream of updates.
func FoldBoth[T, U any](s Stream[T], initial U, f func(acc U, x T) U) (Cell[U], Stream[U]) {
	acc := Fold(s, initial, f)
	return acc, acc.Updates()
}

// Select fires the value of the first stream, in argument order, that fired
// in the transaction.
func Select[T any](streams ...Stream[T]) Stream[T] {
	ns := make([]*internal.Node, len(streams))
	for i, s := range streams {
		ns[i] = s.node
	}
	return Stream[T]{internal.Select(ns...)}
}

// Meet fires only in transactions where both streams fire.
func Meet[A, B, R any](a Stream[A], b Stream[B], f func(A, B) R) Stream[R] {
	return Stream[R]{internal.Meet([]*internal.Node{a.node, b.node}, func(vs []any) any {
		return f(as[A](vs[0]), as[B](vs[1]))
	})}
}

// MeetAll fires only in transactions where every stream fires.
func MeetAll[T, R any](streams []Stream[T], f func([]T) R) Stream[R] {
	ns := make([]*internal.Node, len(streams))
	for i, s := range streams {
		ns[i] = s.node
	}
	return Stream[R]{internal.Meet(ns, func(vs []any) any { return f(values[T](vs)) })}
}

// StreamBranch demultiplexes a stream by value.
type StreamBranch[T comparable] struct {
	node *internal.Node
}

// BranchStream prepares s for cheap equality tests against many keys.
func BranchStream[T comparable](s Stream[T]) StreamBranch[T] {
	return StreamBranch[T]{internal.Branch(s.node)}
}

// When returns a stream firing the values equal to key.
func (b StreamBranch[T]) When(key T) Stream[T] {
	return Stream[T]{internal.When(b.node, key)}
}

// Stream returns the branched stream itself.
func (b StreamBranch[T]) Stream() Stream[T] {
	return Stream[T]{b.node}
}
