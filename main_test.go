package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
logging: {level: error}
roadmap:
  file: %q
  samples: 200
  connection_radius: 2
  bounds: {min_x: 0, min_y: 0, max_x: 10, max_y: 10}
search: {metric: planar}
obstacles: {dir: %q}
`, filepath.Join(dir, "roadmap.json"), filepath.Join(dir, "zones"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCLIBuildThenRoute(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "build", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "200 nodes")

	out, err = runCLI(t, "--config", cfg, "route", "--from-x", "1", "--from-y", "1", "--to-x", "9", "--to-y", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "1.000000,1.000000\n")
	assert.Contains(t, out, "9.000000,9.000000\n")
	assert.Contains(t, out, "distance ")
}

func TestCLIRouteWithoutRoadmap(t *testing.T) {
	cfg := writeCLIConfig(t)
	_, err := runCLI(t, "--config", cfg, "route", "--from-x", "1", "--from-y", "1", "--to-x", "9", "--to-y", "9")
	assert.ErrorIs(t, err, os.ErrNotExist)

	out, err := runCLI(t, "--config", cfg, "route", "--visibility", "--from-x", "1", "--from-y", "1", "--to-x", "9", "--to-y", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "distance 11.314")
}

func TestCLIMaze(t *testing.T) {
	cfg := writeCLIConfig(t)
	maze := filepath.Join(t.TempDir(), "maze.txt")
	require.NoError(t, os.WriteFile(maze, []byte("S#.\n.#.\n..G\n"), 0o644))

	out, err := runCLI(t, "--config", cfg, "maze", maze)
	require.NoError(t, err)
	assert.Equal(t, "S#.\n*#.\n**G\ncost 4.000, 4 steps, expanded 4\n", out)

	_, err = runCLI(t, "--config", cfg, "maze")
	assert.Error(t, err)
}
