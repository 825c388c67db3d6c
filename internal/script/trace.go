package script

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"
)

// Event is one listener firing.
type Event struct {
	Tx    int
	ID    string
	Value int
}

// Sample is the committed value of a cell after the last transaction.
type Sample struct {
	ID    string
	Value int
}

// Trace is the observable outcome of running a scenario.
type Trace struct {
	Name   string
	Events []Event
	Final  []Sample
}

// Text renders the trace one line per event, then one line per cell.
func (t *Trace) Text() string {
	var b strings.Builder
	for _, e := range t.Events {
		fmt.Fprintf(&b, "tx %d: %s = %d\n", e.Tx, e.ID, e.Value)
	}
	for _, s := range t.Final {
		fmt.Fprintf(&b, "final: %s = %d\n", s.ID, s.Value)
	}
	return b.String()
}

// JSON renders the trace as an indented JSON object with sorted keys.
func (t *Trace) JSON() string {
	return oj.JSON(t.toMap(), &ojg.Options{Sort: true, Indent: 2}) + "\n"
}

func (t *Trace) toMap() map[string]any {
	return map[string]any{
		"name": t.Name,
		"events": lo.Map(t.Events, func(e Event, _ int) any {
			return map[string]any{"tx": e.Tx, "id": e.ID, "value": e.Value}
		}),
		"final": lo.Map(t.Final, func(s Sample, _ int) any {
			return map[string]any{"id": s.ID, "value": s.Value}
		}),
	}
}
