package script

import (
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, name := range []string{"diamond", "streams", "branch"} {
		t.Run(name, func(t *testing.T) {
			s, err := Load(filepath.Join("testdata", name+".yaml"))
			require.NoError(t, err)

			trace, err := Run(s)
			require.NoError(t, err)

			g.Assert(t, name, []byte(trace.Text()))
		})
	}
}

func TestTraceJSON(t *testing.T) {
	s, err := Load("testdata/diamond.yaml")
	require.NoError(t, err)
	trace, err := Run(s)
	require.NoError(t, err)

	v, err := oj.ParseString(trace.JSON())
	require.NoError(t, err)
	obj := v.(map[string]any)

	assert.Equal(t, "diamond", obj["name"])
	assert.Equal(t, []any{
		map[string]any{"tx": int64(1), "id": "sum", "value": int64(10)},
		map[string]any{"tx": int64(3), "id": "sum", "value": int64(15)},
	}, obj["events"])
	assert.Len(t, obj["final"], 4)
}

func TestParse(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		s, err := Parse([]byte("name: empty\n"))
		require.NoError(t, err)

		trace, err := Run(s)
		require.NoError(t, err)
		assert.Empty(t, trace.Text())
	})

	t.Run("unknown fields", func(t *testing.T) {
		_, err := Parse([]byte("name: typo\nnode: []\n"))
		assert.ErrorContains(t, err, "failed to parse YAML")
	})

	invalid := []struct {
		name string
		yaml string
		msg  string
	}{
		{"missing name", `nodes: []`, "name is required"},
		{"missing id", `
name: x
nodes:
  - {kind: cell}`, "nodes[0]: id is required"},
		{"duplicate id", `
name: x
nodes:
  - {id: a, kind: cell}
  - {id: a, kind: sink}`, `nodes[1] "a": duplicate id`},
		{"unknown kind", `
name: x
nodes:
  - {id: a, kind: signal}`, `unknown kind "signal"`},
		{"missing op", `
name: x
nodes:
  - {id: a, kind: cell}
  - {id: b, kind: map, of: [a]}`, "op is required"},
		{"unknown op", `
name: x
nodes:
  - {id: a, kind: cell}
  - {id: b, kind: map, op: div, of: [a]}`, `unknown op "div"`},
		{"unsupported cmp", `
name: x
nodes:
  - {id: a, kind: cell, cmp: gt}`, "cmp is not supported by cell"},
		{"unknown parent", `
name: x
nodes:
  - {id: b, kind: hold, of: [a]}`, `unknown parent "a"`},
		{"wrong parent shape", `
name: x
nodes:
  - {id: a, kind: cell}
  - {id: b, kind: filter, cmp: gt, of: [a]}`, `parent "a" is a cell, expected a stream`},
		{"too many parents", `
name: x
nodes:
  - {id: a, kind: sink}
  - {id: b, kind: sink}
  - {id: c, kind: hold, of: [a, b]}`, "expected 1 parents, got 2"},
		{"too few parents", `
name: x
nodes:
  - {id: a, kind: sink}
  - {id: b, kind: merge, op: add, of: [a]}`, "expected at least 2 parents, got 1"},
		{"unknown listener", `
name: x
listen: [a]`, `listen: unknown node "a"`},
		{"send to a derived node", `
name: x
nodes:
  - {id: a, kind: sink}
  - {id: b, kind: hold, of: [a]}
transactions:
  - {b: 1}`, `transactions[0]: "b" is not a cell or sink`},
		{"empty transaction", `
name: x
transactions:
  - {}`, "transactions[0]: empty transaction"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}
