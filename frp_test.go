package frp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(error)
		}
	}()
	fn()
	return nil
}

func ExampleLift() {
	e := New()
	width := NewCell(e, 4)
	height := NewCell(e, 5)

	area := Lift(width.Cell, height.Cell, func(w, h int) int { return w * h })
	area.Observe(func(a int) { fmt.Println("area", a) })

	e.Run(func() {
		width.Send(2)
		height.Send(8)
	})

	// Output:
	// area 20
	// area 16
}

func ExampleStream_Hold() {
	e := New()
	clicks := NewSink[string](e)
	last := clicks.Hold("none")

	fmt.Println(last.Sample())
	clicks.Send("ok")
	fmt.Println(last.Sample())

	// Output:
	// none
	// ok
}

func ExampleFoldS() {
	e := New()
	readings := NewSink[int](e)
	peaks := FoldS(readings.Stream, 0, func(peak, r int) int { return max(peak, r) })
	peaks.Listen(func(p int) { fmt.Println("new peak", p) })

	for _, r := range []int{3, 1, 5, 5, 4} {
		readings.Send(r)
	}

	// Output:
	// new peak 3
	// new peak 5
}

func ExampleFlatten() {
	e := New()
	celsius := NewCell(e, 21.5)
	fahrenheit := NewCell(e, 70.7)
	selected := NewCell(e, celsius.Cell)

	shown := Flatten(selected.Cell)
	shown.Observe(func(t float64) { fmt.Println(t) })

	selected.Send(fahrenheit.Cell)
	celsius.Send(22)
	fahrenheit.Send(71.6)

	// Output:
	// 21.5
	// 70.7
	// 71.6
}

func TestEngine(t *testing.T) {
	t.Run("default engine per goroutine", func(t *testing.T) {
		e1, e2 := Default(), Default()
		assert.Same(t, e1.engine, e2.engine)

		done := make(chan *Engine)
		go func() { done <- Default() }()
		other := <-done

		assert.NotSame(t, e1.engine, other.engine)
	})

	t.Run("transactions are atomic", func(t *testing.T) {
		e := New()
		a := NewCell(e, 1)
		b := NewCell(e, 2)
		log := []string{}

		Lift(a.Cell, b.Cell, func(x, y int) int { return x + y }).Listen(func(v int) {
			log = append(log, fmt.Sprintf("sum %d", v))
		})
		e.Run(func() {
			a.Send(10)
			b.Send(20)
			log = append(log, fmt.Sprintf("inside %d", a.Sample()))
		})

		assert.Equal(t, []string{"inside 1", "sum 30"}, log)
		assert.False(t, e.IsBusy())
	})

	t.Run("send and", func(t *testing.T) {
		e := New()
		a := NewCell(e, 0)
		s := NewSink[int](e)
		got := []int{}
		SnapLive(s.Stream, a.Cell, func(x, y int) int { return x + y }).Listen(func(v int) { got = append(got, v) })

		a.SendAnd(5, func() { s.Send(1) })
		assert.Equal(t, []int{6}, got)
	})

	t.Run("listeners see every committed cell", func(t *testing.T) {
		e := New()
		a := NewCell(e, "a")
		b := NewCell(e, "b")
		s := NewSink[int](e)
		seen := ""

		s.Listen(func(int) { seen = a.Sample() + b.Sample() })
		e.Run(func() {
			b.Send("B")
			s.Send(1)
		})

		assert.Equal(t, "aB", seen)
	})

	t.Run("send from a listener is rejected", func(t *testing.T) {
		e := New()
		s := NewSink[int](e)
		other := NewSink[int](e)
		s.Listen(func(v int) { other.Send(v) })

		err := catch(func() { s.Send(1) })
		assert.ErrorIs(t, err, ErrBusy)

		var ue *UsageError
		assert.ErrorAs(t, err, &ue)
	})

	t.Run("engine send and sample", func(t *testing.T) {
		e := New()
		c := NewCell(e, 1)
		s := NewSink[int](e)
		got := collect(s.Stream)

		Send(e, c, 4)
		Send(e, s, 9)
		assert.Equal(t, 4, Sample(e, c.Cell))
		assert.Equal(t, []int{9}, *got)

		e.Run(func() {
			Send(e, c, 6)
			assert.Equal(t, 4, Sample(e, c.Cell))
		})
		assert.Equal(t, 6, Sample(e, c.Cell))
		assert.ErrorIs(t, catch(func() { Sample(e, Cell[int]{s.node}) }), ErrNotCell)
	})

	t.Run("run inside propagation is rejected", func(t *testing.T) {
		e := New()
		a := NewCell(e, 1)
		MapCell(a.Cell, func(v int) int {
			if v > 1 {
				e.Run(func() {})
			}
			return v
		})

		assert.ErrorIs(t, catch(func() { a.Send(2) }), ErrBusy)
		assert.Equal(t, 1, a.Sample())
	})
}
