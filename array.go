package frp

import "github.com/samber/lo"

// FlattenArray turns a cell holding cells into a cell of their values.
func FlattenArray[T any](c Cell[[]Cell[T]]) Cell[[]T] {
	return Flatten(MapCell(c, func(cells []Cell[T]) Cell[[]T] {
		return LiftAll(cells, func(ts []T) []T { return ts })
	}))
}

// MapArray maps each element of the array to a cell and flattens the result.
func MapArray[T, U any](c Cell[[]T], f func(T) Cell[U]) Cell[[]U] {
	return FlattenArray(MapCell(c, func(ts []T) []Cell[U] {
		return lo.Map(ts, func(t T, _ int) Cell[U] { return f(t) })
	}))
}

// SelectArray maps each element to a stream and fires the first of them to
// fire, in array order.
func SelectArray[T, U any](c Cell[[]T], f func(T) Stream[U]) Stream[U] {
	return FlattenStream(MapCell(c, func(ts []T) Stream[U] {
		return Select(lo.Map(ts, func(t T, _ int) Stream[U] { return f(t) })...)
	}))
}

// FoldArray folds the values of the cells held by c from left to right.
func FoldArray[T, U any](c Cell[[]Cell[T]], initial U, f func(acc U, x T) U) Cell[U] {
	return Flatten(MapCell(c, func(cells []Cell[T]) Cell[U] {
		return LiftAll(cells, func(ts []T) U {
			return lo.Reduce(ts, func(acc U, t T, _ int) U { return f(acc, t) }, initial)
		})
	}))
}

// FoldAssociative folds the values of the cells held by c with an
// associative f. The cells are combined as a balanced tree, so an update to
// one element recomputes a logarithmic number of nodes.
func FoldAssociative[T any](c Cell[[]Cell[T]], identity T, f func(a, b T) T) Cell[T] {
	return Flatten(MapCell(c, func(cells []Cell[T]) Cell[T] {
		if len(cells) == 0 {
			return Constant(identity)
		}
		return foldTree(cells, f)
	}))
}

func foldTree[T any](cells []Cell[T], f func(a, b T) T) Cell[T] {
	if len(cells) == 1 {
		return cells[0]
	}
	mid := len(cells) / 2
	return Lift(foldTree(cells[:mid], f), foldTree(cells[mid:], f), f)
}
