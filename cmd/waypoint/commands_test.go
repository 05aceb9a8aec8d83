package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "waypoint version "+waypoint.Version+"\n", out)
}

func TestTraceCommand_Text(t *testing.T) {
	out, err := execute(t, "trace", "--format", "text")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 70)
	assert.Contains(t, lines[0], "start")
	assert.Contains(t, lines[69], "complete")
	assert.Contains(t, lines[69], "map[0:0 1:3 2:2 3:8 4:10]")
}

func TestTraceCommand_JSON(t *testing.T) {
	out, err := execute(t, "trace", "--format", "json")
	require.NoError(t, err)

	var trace domain.Trace
	require.NoError(t, json.Unmarshal([]byte(out), &trace))
	assert.Equal(t, 70, trace.Len())
	assert.Equal(t, domain.DistanceTable{0: 0, 1: 3, 2: 2, 3: 8, 4: 10}, trace.Final())
}

func TestTraceCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "trace", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestPathCommand(t *testing.T) {
	out, err := execute(t, "path", "4", "0")
	require.NoError(t, err)
	assert.Equal(t, "4  10   0 → 2 → 1 → 3 → 4\n0  0    0\n", out)

	_, err = execute(t, "path", "x")
	assert.ErrorContains(t, err, "invalid vertex")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.NotContains(t, out, "classDef")

	out, err = execute(t, "graph", "--step", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "class v1 neighbor;")
	assert.Contains(t, out, "linkStyle 0 ")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	cfg := "start: 0\ndirected: true\ngraph:\n  0: {1: 7}\n  1: {}\n  2: {}\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	out, err := execute(t, "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "0  0    0\n1  7    0 → 1\n2  unreachable\n", out)

	_, err = execute(t, "path", "--config", path, "--log-level", "loud")
	assert.Error(t, err)

	// Reset persistent flags for the other tests.
	_, _ = execute(t, "version", "--config", "waypoint.yaml", "--log-level", "")
}
