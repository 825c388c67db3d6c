package frp

import "github.com/AnatoleLucet/frp/internal"

// CellSink is a cell that accepts values from outside the graph.
type CellSink[T any] struct {
	Cell[T]
}

// Send sets the value of the cell, in its own transaction unless one is
// being prepared.
func (s CellSink[T]) Send(v T) {
	internal.Send(s.node, v)
}

// SendAnd sends v and runs f in the same transaction.
func (s CellSink[T]) SendAnd(v T, f func()) {
	internal.SendAnd(s.node, v, f)
}

// Connect makes the sink follow source, taking its current value.
func (s CellSink[T]) Connect(source Cell[T]) CellSink[T] {
	internal.Connect(s.node, source.node)
	return s
}

// ConnectStream makes the sink hold the values fired by source.
func (s CellSink[T]) ConnectStream(source Stream[T]) CellSink[T] {
	internal.Connect(s.node, source.node)
	return s
}

func (s CellSink[T]) sinkNode() *internal.Node { return s.node }

func (s CellSink[T]) Named(name string) CellSink[T] {
	s.node.Named(name)
	return s
}

func (s CellSink[T]) SetEqualityFunc(eq func(a, b T) bool) CellSink[T] {
	s.Cell.SetEqualityFunc(eq)
	return s
}

// StreamSink is a stream that accepts values from outside the graph.
type StreamSink[T any] struct {
	Stream[T]
}

// Send fires the stream, in its own transaction unless one is being prepared.
func (s StreamSink[T]) Send(v T) {
	internal.Send(s.node, v)
}

// SendAnd sends v and runs f in the same transaction.
func (s StreamSink[T]) SendAnd(v T, f func()) {
	internal.SendAnd(s.node, v, f)
}

// Connect makes the sink fire whenever source fires. Only coalescing sinks
// accept more than one source.
func (s StreamSink[T]) Connect(source Stream[T]) StreamSink[T] {
	internal.Connect(s.node, source.node)
	return s
}

func (s StreamSink[T]) sinkNode() *internal.Node { return s.node }

func (s StreamSink[T]) Named(name string) StreamSink[T] {
	s.node.Named(name)
	return s
}
