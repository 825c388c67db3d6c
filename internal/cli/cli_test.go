package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamond = "../script/testdata/diamond.yaml"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "frp", cmd.Use)

	for _, name := range []string{"run", "validate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	_, _, err := execute(t, "run", "--format", "yaml", diamond)
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestRun(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, "run", diamond)
		require.NoError(t, err)
		assert.Equal(t, `tx 1: sum = 10
tx 3: sum = 15
final: a = 3
final: double = 6
final: sum = 15
final: triple = 9
`, out)
	})

	t.Run("several files in parallel", func(t *testing.T) {
		streams := "../script/testdata/streams.yaml"
		out, _, err := execute(t, "run", "--parallel", "2", diamond, streams, diamond)
		require.NoError(t, err)

		assert.Equal(t, 2, bytes.Count([]byte(out), []byte("# diamond\n")))
		assert.Contains(t, out, "# streams\ntx 1: big = 3\n")
		assert.Less(t, bytes.Index([]byte(out), []byte("# streams")), bytes.LastIndex([]byte(out), []byte("# diamond")))
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "run", "--format", "json", diamond)
		require.NoError(t, err)

		v, err := oj.ParseString(out)
		require.NoError(t, err)
		assert.Equal(t, "diamond", v.(map[string]any)["name"])
	})

	t.Run("verbose", func(t *testing.T) {
		_, stderr, err := execute(t, "run", "-v", diamond)
		require.NoError(t, err)
		assert.Contains(t, stderr, "running scenario")
		assert.Contains(t, stderr, "name=diamond")
	})

	t.Run("invalid parallelism", func(t *testing.T) {
		_, _, err := execute(t, "run", "--parallel", "0", diamond)
		assert.ErrorContains(t, err, "invalid parallelism 0")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read scenario file")
	})
}

func TestValidate(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\nlisten: [ghost]\n"), 0o600))

	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, "validate", diamond, bad)
		assert.EqualError(t, err, "1 of 2 scenario(s) invalid")
		assert.Contains(t, out, "ok   "+diamond+"\n")
		assert.Contains(t, out, `FAIL `+bad+`: invalid scenario: listen: unknown node "ghost"`)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "validate", "--format", "json", diamond)
		require.NoError(t, err)

		v, err := oj.ParseString(out)
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"path": diamond, "valid": true}}, v)
	})
}
