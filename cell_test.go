package frp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func observe[T any](c Cell[T]) *[]T {
	got := &[]T{}
	c.Observe(func(v T) { *got = append(*got, v) })
	return got
}

func TestCell(t *testing.T) {
	t.Run("sample and send", func(t *testing.T) {
		e := New()
		c := NewCell(e, 1)
		assert.Equal(t, 1, c.Sample())

		c.Send(2)
		assert.Equal(t, 2, c.Sample())
	})

	t.Run("zero values", func(t *testing.T) {
		e := New()
		c := NewCell[error](e, nil)
		assert.Nil(t, c.Sample())

		got := observe(MapCell(c.Cell, func(err error) bool { return err == nil }))
		c.Send(assert.AnError)
		c.Send(nil)

		assert.Equal(t, []bool{true, false, true}, *got)
	})

	t.Run("lift is glitch free", func(t *testing.T) {
		e := New()
		a := NewCell(e, 4)
		b := NewCell(e, 5)
		sum := observe(Lift(a.Cell, b.Cell, add))

		e.Run(func() {
			a.Send(2)
			b.Send(10)
		})

		assert.Equal(t, []int{9, 12}, *sum)
	})

	t.Run("diamond", func(t *testing.T) {
		e := New()
		a := NewCell(e, 1)
		double := MapCell(a.Cell, func(v int) int { return v * 2 })
		triple := MapCell(a.Cell, func(v int) int { return v * 3 })
		got := observe(Lift(double, triple, add))

		a.Send(2)
		a.Send(3)

		assert.Equal(t, []int{5, 10, 15}, *got)
	})

	t.Run("lift all", func(t *testing.T) {
		e := New()
		a, b, c := NewCell(e, "a"), NewCell(e, "b"), NewCell(e, "c")
		joined := LiftAll([]Cell[string]{a.Cell, b.Cell, c.Cell}, func(vs []string) string {
			return strings.Join(vs, "")
		})
		got := observe(joined)

		e.Run(func() {
			a.Send("A")
			c.Send("C")
		})

		assert.Equal(t, []string{"abc", "AbC"}, *got)
		assert.Equal(t, 0, LiftAll(nil, func(vs []int) int { return len(vs) }).Sample())
	})

	t.Run("redundant updates are dropped", func(t *testing.T) {
		e := New()
		c := NewCell(e, 3)
		parity := observe(MapCell(c.Cell, func(v int) int { return v % 2 }))

		c.Send(5)
		c.Send(5)
		c.Send(6)

		assert.Equal(t, []int{1, 0}, *parity)
	})

	t.Run("equality func", func(t *testing.T) {
		e := New()
		c := NewCell(e, "Go").SetEqualityFunc(strings.EqualFold)
		got := observe(c.Cell)

		c.Send("GO")
		c.Send("rust")

		assert.Equal(t, []string{"Go", "rust"}, *got)
		assert.ErrorIs(t, catch(func() { c.SetEqualityFunc(strings.EqualFold) }), ErrEquality)
	})

	t.Run("updates", func(t *testing.T) {
		e := New()
		c := NewCell(e, 1)
		got := collect(c.Updates())

		c.Send(1)
		c.Send(2)

		assert.Equal(t, []int{2}, *got)
	})

	t.Run("constant", func(t *testing.T) {
		c := Constant(4)
		assert.True(t, c.IsClosed())
		assert.Equal(t, 4, c.Sample())

		doubled := MapCell(c, func(v int) int { return v * 2 })
		assert.True(t, doubled.IsClosed())
		assert.Equal(t, 8, doubled.Sample())
		assert.Equal(t, 12, Lift(c, doubled, add).Sample())
	})

	t.Run("hold", func(t *testing.T) {
		e := New()
		s := NewSink[string](e)
		c := s.Hold("init")
		got := observe(c)

		s.Send("a")
		s.Send("a")
		s.Send("b")

		assert.Equal(t, []string{"init", "a", "b"}, *got)
	})

	t.Run("connect", func(t *testing.T) {
		e := New()
		a := NewCell(e, 1)
		sink := NewCell(e, 0)
		sink.Connect(MapCell(a.Cell, func(v int) int { return v * 2 }))
		assert.Equal(t, 2, sink.Sample())

		a.Send(5)
		assert.Equal(t, 10, sink.Sample())
		assert.ErrorIs(t, catch(func() { sink.Connect(a.Cell) }), ErrAlreadyConnected)
	})

	t.Run("connect inside a transaction", func(t *testing.T) {
		e := New()
		source := NewCell(e, 23)
		sink := NewCell(e, 0)
		got := observe(sink.Cell)

		e.Run(func() {
			source.Send(5)
			sink.Connect(source.Cell)
		})
		assert.Equal(t, 5, sink.Sample())

		other := NewCell(e, 1)
		late := NewCell(e, 0)
		e.Run(func() {
			late.Connect(other.Cell)
			other.Send(8)
		})
		assert.Equal(t, 8, late.Sample())

		source.Send(6)
		assert.Equal(t, []int{0, 5, 6}, *got)
	})

	t.Run("connect to a stream that already fired", func(t *testing.T) {
		e := New()
		s := NewSink[int](e)
		dst := NewSink[int](e)
		got := collect(dst.Stream)

		e.Run(func() {
			s.Send(4)
			dst.Connect(s.Stream)
		})
		s.Send(5)

		assert.Equal(t, []int{4, 5}, *got)
	})

	t.Run("accumulator loop through a snapshot", func(t *testing.T) {
		e := New()
		counter := NewCell(e, 0).Named("counter")
		inc := NewSink[int](e)
		counter.ConnectStream(Snapshot(inc.Stream, counter.Cell, func(d, c int) int { return c + d }))
		got := observe(counter.Cell)

		inc.Send(1)
		inc.Send(2)

		assert.Equal(t, 3, counter.Sample())
		assert.Equal(t, []int{0, 1, 3}, *got)

		live := NewCell(e, 0).Named("live")
		err := catch(func() {
			live.ConnectStream(SnapLive(inc.Stream, live.Cell, func(d, c int) int { return c + d }))
		})
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("connect stream", func(t *testing.T) {
		e := New()
		s := NewSink[int](e)
		sink := NewCell(e, 0).ConnectStream(s.Stream)

		s.Send(4)
		assert.Equal(t, 4, sink.Sample())
	})

	t.Run("connect a constant", func(t *testing.T) {
		e := New()
		sink := NewCell(e, 0)
		sink.Connect(Constant(7))

		assert.Equal(t, 7, sink.Sample())
		assert.False(t, sink.IsClosed())
	})

	t.Run("connect closes with its source", func(t *testing.T) {
		e := New()
		a := NewCell(e, 1)
		sink := NewCell(e, 0).Connect(a.Cell)

		a.Close()
		assert.True(t, sink.IsClosed())
		assert.Equal(t, 1, sink.Sample())
		assert.ErrorIs(t, catch(func() { sink.Send(2) }), ErrClosed)
	})

	t.Run("cyclic connect", func(t *testing.T) {
		e := New()
		sink := NewCell(e, 0).Named("sink")
		next := MapCell(sink.Cell, func(v int) int { return v + 1 }).Named("next")

		err := catch(func() { sink.Connect(next) })
		assert.ErrorIs(t, err, ErrCycle)
		assert.Regexp(t, `sink[\s\S]+next`, err.Error())
	})

	t.Run("flatten", func(t *testing.T) {
		e := New()
		x := NewCell(e, 1)
		y := NewCell(e, 2)
		selected := NewCell(e, x.Cell)
		got := observe(Flatten(selected.Cell))

		e.Run(func() {
			selected.Send(y.Cell)
			x.Send(5)
		})
		x.Send(7)
		y.Send(3)

		assert.Equal(t, []int{1, 2, 3}, *got)
	})

	t.Run("flatten of the zero cell", func(t *testing.T) {
		e := New()
		x := NewCell(e, 1)
		selected := NewCell(e, Cell[int]{})
		flat := Flatten(selected.Cell)
		assert.Equal(t, 0, flat.Sample())

		selected.Send(x.Cell)
		assert.Equal(t, 1, flat.Sample())

		selected.Send(Cell[int]{})
		assert.Equal(t, 0, flat.Sample())
	})

	t.Run("flatten of a constant", func(t *testing.T) {
		x := Constant(3)
		assert.Equal(t, 3, Flatten(Constant(x)).Sample())
	})

	t.Run("flatten to a deeper cell", func(t *testing.T) {
		e := New()
		shallow := NewCell(e, 0)
		base := NewCell(e, 0)
		inc := func(v int) int { return v + 1 }
		deep := MapCell(MapCell(MapCell(base.Cell, inc), inc), inc)
		selected := NewCell(e, shallow.Cell)
		got := observe(Flatten(selected.Cell))

		e.Run(func() {
			selected.Send(deep)
			base.Send(10)
		})
		base.Send(20)

		assert.Equal(t, []int{0, 13, 23}, *got)
	})

	t.Run("flatten stream", func(t *testing.T) {
		e := New()
		a, b := NewSink[string](e), NewSink[string](e)
		selected := NewCell(e, a.Stream)
		got := collect(FlattenStream(selected.Cell))

		a.Send("a1")
		b.Send("b1")
		e.Run(func() {
			selected.Send(b.Stream)
			b.Send("b2")
		})
		a.Send("a2")

		assert.Equal(t, []string{"a1", "b2"}, *got)
	})

	t.Run("flatten stream switched while both fire", func(t *testing.T) {
		e := New()
		a, b := NewSink[string](e), NewSink[string](e)
		selected := NewCell(e, a.Stream)
		got := collect(FlattenStream(selected.Cell))

		e.Run(func() {
			a.Send("a")
			selected.Send(b.Stream)
			b.Send("b")
		})
		e.Run(func() {
			b.Send("b2")
			selected.Send(a.Stream)
			a.Send("a2")
		})

		assert.Equal(t, []string{"b", "a2"}, *got)
	})

	t.Run("branch", func(t *testing.T) {
		e := New()
		c := NewCell(e, "a")
		b := BranchCell(c.Cell)
		isA := observe(b.When("a"))
		isB := observe(b.When("b"))

		c.Send("b")
		c.Send("c")

		assert.Equal(t, []bool{true, false}, *isA)
		assert.Equal(t, []bool{false, true, false}, *isB)
		assert.Equal(t, "c", b.Cell().Sample())
	})

	t.Run("branch of a constant", func(t *testing.T) {
		b := BranchCell(Constant(1))
		assert.True(t, b.When(1).Sample())
		assert.False(t, b.When(2).Sample())
	})
}
