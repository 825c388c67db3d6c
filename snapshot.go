package frp

import "github.com/AnatoleLucet/frp/internal"

func snapshot[T, C, R any](s Stream[T], cells []Cell[C], live bool, f func(T, []C) (R, bool)) Stream[R] {
	return Stream[R]{internal.Snapshot(s.node, nodes(cells), live, func(x any, cs []any) any {
		if r, ok := f(as[T](x), values[C](cs)); ok {
			return r
		}
		return internal.DoNotSend
	})}
}

// Snapshot fires f applied to each fired value and the value c held before
// the transaction.
func Snapshot[T, C, R any](s Stream[T], c Cell[C], f func(T, C) R) Stream[R] {
	return snapshot(s, []Cell[C]{c}, false, func(x T, cs []C) (R, bool) { return f(x, cs[0]), true })
}

// SnapLive is like Snapshot but sees a value sent to c in the same transaction.
func SnapLive[T, C, R any](s Stream[T], c Cell[C], f func(T, C) R) Stream[R] {
	return snapshot(s, []Cell[C]{c}, true, func(x T, cs []C) (R, bool) { return f(x, cs[0]), true })
}

// SnapshotFilter is like Snapshot but fires only the results f accepts.
func SnapshotFilter[T, C, R any](s Stream[T], c Cell[C], f func(T, C) (R, bool)) Stream[R] {
	return snapshot(s, []Cell[C]{c}, false, func(x T, cs []C) (R, bool) { return f(x, cs[0]) })
}

// SnapLiveFilter is the live variant of SnapshotFilter.
func SnapLiveFilter[T, C, R any](s Stream[T], c Cell[C], f func(T, C) (R, bool)) Stream[R] {
	return snapshot(s, []Cell[C]{c}, true, func(x T, cs []C) (R, bool) { return f(x, cs[0]) })
}

// SnapshotAll samples several cells at once.
func SnapshotAll[T, C, R any](s Stream[T], cells []Cell[C], f func(T, []C) R) Stream[R] {
	return snapshot(s, cells, false, func(x T, cs []C) (R, bool) { return f(x, cs), true })
}

// SnapAllLive is the live variant of SnapshotAll.
func SnapAllLive[T, C, R any](s Stream[T], cells []Cell[C], f func(T, []C) R) Stream[R] {
	return snapshot(s, cells, true, func(x T, cs []C) (R, bool) { return f(x, cs), true })
}

// As replaces each fired value with the value of c.
func As[T, C any](s Stream[T], c Cell[C]) Stream[C] {
	return Snapshot(s, c, func(_ T, v C) C { return v })
}

// AsLive replaces each fired value with the most recent value of c.
func AsLive[T, C any](s Stream[T], c Cell[C]) Stream[C] {
	return SnapLive(s, c, func(_ T, v C) C { return v })
}

// AsConstant replaces each fired value with v.
func AsConstant[T, C any](s Stream[T], v C) Stream[C] {
	return Map(s, func(T) C { return v })
}
