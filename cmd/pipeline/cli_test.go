package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/slide-flow/internal/config"
)

// writeTestConfig writes a minimal config rooted in a temp dir and returns its path.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	yaml := fmt.Sprintf(`whisper:
  model_path: %[1]s/model.bin
  binary_path: %[1]s/whisper
  language: en
paths:
  input: %[1]s/input
  output: %[1]s/output
  work: %[1]s/work
logging:
  level: error
`, root)
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path, root
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := stdout
	stdout = buf
	t.Cleanup(func() { stdout = prev })
	return buf
}

func TestRunsCommandOnFreshDatabase(t *testing.T) {
	cfgPath, root := writeTestConfig(t)
	out := captureStdout(t)

	err := newCLIApp().Run([]string{"slideflow", "--config", cfgPath, "runs"})
	require.NoError(t, err)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	assert.Empty(t, runs)

	for _, dir := range []string{"input", "output", "work/transcripts", "work/audio", "work/frames"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}
	assert.FileExists(t, filepath.Join(root, "work", "slideflow.db"))
}

func TestMissingConfig(t *testing.T) {
	err := newCLIApp().Run([]string{"slideflow", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "runs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestSearchRequiresQuery(t *testing.T) {
	err := newCLIApp().Run([]string{"slideflow", "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestRunWithEmptyInput(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	require.NoError(t, newCLIApp().Run([]string{"slideflow", "--config", cfgPath, "run"}))
}

func TestExitCode(t *testing.T) {
	assert.NoError(t, exitCode(0, nil))
	assert.NoError(t, exitCode(0, context.Canceled))
	assert.EqualError(t, exitCode(2, nil), "2 video(s) failed")
	boom := errors.New("boom")
	assert.ErrorIs(t, exitCode(0, boom), boom)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.Input = filepath.Join(root, "in")
	cfg.Paths.Output = filepath.Join(root, "out")
	cfg.Paths.Work = filepath.Join(root, "work")
	cfg.Paths.Archived = filepath.Join(root, "archived")

	require.NoError(t, ensureDirectories(cfg))
	assert.DirExists(t, cfg.Paths.Transcripts())
	assert.NoDirExists(t, cfg.Paths.Archived)

	cfg.Paths.ArchiveInput = true
	require.NoError(t, ensureDirectories(cfg))
	assert.DirExists(t, cfg.Paths.Archived)
}
