// Package script builds integer-valued graphs from YAML scenario files and
// replays transactions against them.
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Scenario is a graph definition plus the transactions to run through it.
type Scenario struct {
	Name string `yaml:"name"`

	// Nodes are declared in dependency order: a node may only depend on
	// nodes listed before it.
	Nodes []NodeDef `yaml:"nodes"`

	// Listen lists the nodes whose firings are traced.
	Listen []string `yaml:"listen"`

	// Transactions map cell and sink ids to the value sent to them. Keys are
	// applied in sorted order.
	Transactions []map[string]int `yaml:"transactions"`
}

// NodeDef declares one node of the graph.
type NodeDef struct {
	ID    string   `yaml:"id"`
	Kind  string   `yaml:"kind"`
	Value int      `yaml:"value,omitempty"`
	Op    string   `yaml:"op,omitempty"`
	Cmp   string   `yaml:"cmp,omitempty"`
	Of    []string `yaml:"of,omitempty"`
}

const (
	KindCell     = "cell"
	KindSink     = "sink"
	KindMap      = "map"
	KindFilter   = "filter"
	KindHold     = "hold"
	KindFold     = "fold"
	KindFoldS    = "folds"
	KindUpdates  = "updates"
	KindLift     = "lift"
	KindMerge    = "merge"
	KindSelect   = "select"
	KindMeet     = "meet"
	KindSnapshot = "snapshot"
	KindSnapLive = "snaplive"
	KindGate     = "gate"
	KindGateLive = "gatelive"
	KindBranchOn = "branch-on"
)

type shape int

const (
	shapeStream shape = iota
	shapeCell
	// same shape as the first parent
	shapeParent
)

func (s shape) String() string {
	if s == shapeCell {
		return "cell"
	}
	return "stream"
}

type kindInfo struct {
	out shape
	// parents holds the required shape of each parent. The last entry
	// repeats when variadic is set.
	parents  []shape
	variadic bool
	op       bool
	cmp      bool
}

var kinds = map[string]kindInfo{
	KindCell:     {out: shapeCell},
	KindSink:     {out: shapeStream},
	KindMap:      {out: shapeParent, parents: []shape{shapeParent}, op: true},
	KindFilter:   {out: shapeStream, parents: []shape{shapeStream}, cmp: true},
	KindHold:     {out: shapeCell, parents: []shape{shapeStream}},
	KindFold:     {out: shapeCell, parents: []shape{shapeStream}, op: true},
	KindFoldS:    {out: shapeStream, parents: []shape{shapeStream}, op: true},
	KindUpdates:  {out: shapeStream, parents: []shape{shapeCell}},
	KindLift:     {out: shapeCell, parents: []shape{shapeCell}, variadic: true, op: true},
	KindMerge:    {out: shapeStream, parents: []shape{shapeStream, shapeStream}, op: true},
	KindSelect:   {out: shapeStream, parents: []shape{shapeStream}, variadic: true},
	KindMeet:     {out: shapeStream, parents: []shape{shapeStream}, variadic: true, op: true},
	KindSnapshot: {out: shapeStream, parents: []shape{shapeStream, shapeCell}, variadic: true, op: true},
	KindSnapLive: {out: shapeStream, parents: []shape{shapeStream, shapeCell}, variadic: true, op: true},
	KindGate:     {out: shapeStream, parents: []shape{shapeStream, shapeCell}},
	KindGateLive: {out: shapeStream, parents: []shape{shapeStream, shapeCell}},
	KindBranchOn: {out: shapeParent, parents: []shape{shapeParent}},
}

var ErrInvalid = errors.New("invalid scenario")

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalWithOptions(data, &s, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the graph is well formed: ids are unique, parents are
// declared before use and have the shape their consumer expects.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return invalid("name is required")
	}

	shapes := make(map[string]shape, len(s.Nodes))
	inputs := make(map[string]bool)
	for i, n := range s.Nodes {
		out, err := n.check(shapes)
		if err != nil {
			if n.ID != "" {
				return invalid("nodes[%d] %q: %v", i, n.ID, err)
			}
			return invalid("nodes[%d]: %v", i, err)
		}
		shapes[n.ID] = out
		inputs[n.ID] = n.Kind == KindCell || n.Kind == KindSink
	}

	for _, id := range s.Listen {
		if _, ok := shapes[id]; !ok {
			return invalid("listen: unknown node %q", id)
		}
	}

	for i, tx := range s.Transactions {
		if len(tx) == 0 {
			return invalid("transactions[%d]: empty transaction", i)
		}
		for id := range tx {
			if !inputs[id] {
				return invalid("transactions[%d]: %q is not a cell or sink", i, id)
			}
		}
	}

	return nil
}

func (n NodeDef) check(shapes map[string]shape) (shape, error) {
	if n.ID == "" {
		return 0, errors.New("id is required")
	}
	if _, ok := shapes[n.ID]; ok {
		return 0, errors.New("duplicate id")
	}

	info, ok := kinds[n.Kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", n.Kind)
	}

	switch {
	case info.op && n.Op == "" && n.Kind != KindSink:
		return 0, errors.New("op is required")
	case n.Op != "" && !info.op && n.Kind != KindSink:
		return 0, fmt.Errorf("op is not supported by %s", n.Kind)
	case info.cmp && n.Cmp == "":
		return 0, errors.New("cmp is required")
	case n.Cmp != "" && !info.cmp:
		return 0, fmt.Errorf("cmp is not supported by %s", n.Kind)
	}
	if _, ok := ops[n.Op]; n.Op != "" && !ok {
		return 0, fmt.Errorf("unknown op %q", n.Op)
	}
	if _, ok := cmps[n.Cmp]; n.Cmp != "" && !ok {
		return 0, fmt.Errorf("unknown cmp %q", n.Cmp)
	}

	switch {
	case len(n.Of) < len(info.parents):
		return 0, fmt.Errorf("expected at least %d parents, got %d", len(info.parents), len(n.Of))
	case len(n.Of) > len(info.parents) && !info.variadic:
		return 0, fmt.Errorf("expected %d parents, got %d", len(info.parents), len(n.Of))
	}

	for i, id := range n.Of {
		got, ok := shapes[id]
		if !ok {
			return 0, fmt.Errorf("unknown parent %q", id)
		}

		want := info.parents[min(i, len(info.parents)-1)]
		if want != shapeParent && got != want {
			return 0, fmt.Errorf("parent %q is a %s, expected a %s", id, got, want)
		}
	}

	if info.out == shapeParent {
		return shapes[n.Of[0]], nil
	}
	return info.out, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
