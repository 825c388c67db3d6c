package script

import (
	"fmt"
	"maps"
	"slices"

	"github.com/AnatoleLucet/frp"
)

type graph struct {
	engine *frp.Engine

	cells   map[string]frp.Cell[int]
	streams map[string]frp.Stream[int]

	cellSinks   map[string]frp.CellSink[int]
	streamSinks map[string]frp.StreamSink[int]

	cellBranches   map[string]frp.CellBranch[int]
	streamBranches map[string]frp.StreamBranch[int]
}

func newGraph(e *frp.Engine) *graph {
	return &graph{
		engine:         e,
		cells:          make(map[string]frp.Cell[int]),
		streams:        make(map[string]frp.Stream[int]),
		cellSinks:      make(map[string]frp.CellSink[int]),
		streamSinks:    make(map[string]frp.StreamSink[int]),
		cellBranches:   make(map[string]frp.CellBranch[int]),
		streamBranches: make(map[string]frp.StreamBranch[int]),
	}
}

// Run builds the scenario graph on a fresh engine and runs its transactions.
func Run(s *Scenario, opts ...frp.Option) (trace *Trace, err error) {
	g := newGraph(frp.New(opts...))
	for _, n := range s.Nodes {
		g.add(n)
	}

	trace = &Trace{Name: s.Name}
	tx := 0
	for _, id := range s.Listen {
		record := func(v int) {
			trace.Events = append(trace.Events, Event{Tx: tx, ID: id, Value: v})
		}
		if c, ok := g.cells[id]; ok {
			c.Listen(record)
		} else {
			g.streams[id].Listen(record)
		}
	}

	for i, values := range s.Transactions {
		tx = i + 1
		if err := g.run(values); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", tx, err)
		}
	}

	// events of a transaction are reported in listen order
	slices.SortStableFunc(trace.Events, func(a, b Event) int {
		if a.Tx != b.Tx {
			return a.Tx - b.Tx
		}
		return slices.Index(s.Listen, a.ID) - slices.Index(s.Listen, b.ID)
	})

	for _, id := range slices.Sorted(maps.Keys(g.cells)) {
		trace.Final = append(trace.Final, Sample{ID: id, Value: g.cells[id].Sample()})
	}

	return trace, nil
}

// run sends values in a single transaction. Usage errors raised by the
// engine are returned.
func (g *graph) run(values map[string]int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()

	g.engine.Run(func() {
		for _, id := range slices.Sorted(maps.Keys(values)) {
			if c, ok := g.cellSinks[id]; ok {
				c.Send(values[id])
			} else {
				g.streamSinks[id].Send(values[id])
			}
		}
	})
	return nil
}

func (g *graph) add(n NodeDef) {
	f := ops[n.Op]

	switch n.Kind {
	case KindCell:
		c := frp.NewCell(g.engine, n.Value).Named(n.ID)
		g.cellSinks[n.ID] = c
		g.setCell(n.ID, c.Cell)

	case KindSink:
		var s frp.StreamSink[int]
		if f != nil {
			s = frp.NewCoalescingSink(g.engine, f)
		} else {
			s = frp.NewSink[int](g.engine)
		}
		g.streamSinks[n.ID] = s
		g.setStream(n.ID, s.Stream)

	case KindMap:
		apply := func(v int) int { return f(v, n.Value) }
		if c, ok := g.cells[n.Of[0]]; ok {
			g.setCell(n.ID, frp.MapCell(c, apply))
		} else {
			g.setStream(n.ID, frp.Map(g.streams[n.Of[0]], apply))
		}

	case KindFilter:
		cmp := cmps[n.Cmp]
		g.setStream(n.ID, g.streams[n.Of[0]].Filter(func(v int) bool { return cmp(v, n.Value) }))

	case KindHold:
		g.setCell(n.ID, g.streams[n.Of[0]].Hold(n.Value))

	case KindFold:
		g.setCell(n.ID, frp.Fold(g.streams[n.Of[0]], n.Value, f))

	case KindFoldS:
		g.setStream(n.ID, frp.FoldS(g.streams[n.Of[0]], n.Value, f))

	case KindUpdates:
		g.setStream(n.ID, g.cells[n.Of[0]].Updates())

	case KindLift:
		g.setCell(n.ID, frp.LiftAll(g.cellsOf(n.Of), f.reduce))

	case KindMerge:
		g.setStream(n.ID, g.streams[n.Of[0]].Merge(g.streams[n.Of[1]], f))

	case KindSelect:
		g.setStream(n.ID, frp.Select(g.streamsOf(n.Of)...))

	case KindMeet:
		g.setStream(n.ID, frp.MeetAll(g.streamsOf(n.Of), f.reduce))

	case KindSnapshot, KindSnapLive:
		snap := frp.SnapshotAll[int, int, int]
		if n.Kind == KindSnapLive {
			snap = frp.SnapAllLive[int, int, int]
		}
		g.setStream(n.ID, snap(g.streams[n.Of[0]], g.cellsOf(n.Of[1:]), func(x int, cs []int) int {
			return f.reduce(append([]int{x}, cs...))
		}))

	case KindGate, KindGateLive:
		s := g.streams[n.Of[0]]
		open := frp.MapCell(g.cells[n.Of[1]], func(v int) bool { return v != 0 })
		if n.Kind == KindGate {
			g.setStream(n.ID, s.Gate(open))
		} else {
			g.setStream(n.ID, s.GateLive(open))
		}

	case KindBranchOn:
		parent := n.Of[0]
		if c, ok := g.cells[parent]; ok {
			b, ok := g.cellBranches[parent]
			if !ok {
				b = frp.BranchCell(c)
				g.cellBranches[parent] = b
			}
			g.setCell(n.ID, frp.MapCell(b.When(n.Value), func(on bool) int {
				if on {
					return 1
				}
				return 0
			}))
		} else {
			b, ok := g.streamBranches[parent]
			if !ok {
				b = frp.BranchStream(g.streams[parent])
				g.streamBranches[parent] = b
			}
			g.setStream(n.ID, b.When(n.Value))
		}
	}
}

func (g *graph) setCell(id string, c frp.Cell[int]) {
	g.cells[id] = c.Named(id)
}

func (g *graph) setStream(id string, s frp.Stream[int]) {
	g.streams[id] = s.Named(id)
}

func (g *graph) cellsOf(ids []string) []frp.Cell[int] {
	cells := make([]frp.Cell[int], len(ids))
	for i, id := range ids {
		cells[i] = g.cells[id]
	}
	return cells
}

func (g *graph) streamsOf(ids []string) []frp.Stream[int] {
	streams := make([]frp.Stream[int], len(ids))
	for i, id := range ids {
		streams[i] = g.streams[id]
	}
	return streams
}
