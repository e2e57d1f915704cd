package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	calls  []call
	stderr string
	err    error
	onRun  func(args []string)
}

func (f *fakeExecutor) run(name string, args []string) error {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.err != nil {
		return f.err
	}
	if f.onRun != nil {
		f.onRun(args)
	}
	return nil
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return "", f.run(name, args)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return "", f.run(name, args)
}

func (f *fakeExecutor) ExecuteStderr(ctx context.Context, name string, args ...string) (string, error) {
	return f.stderr, f.run(name, args)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{ModelPath: "m.bin", BinaryPath: "whisper-cli", Language: "en"},
		Paths:   config.PathsConfig{Input: "in", Output: "out", Work: t.TempDir()},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func testMedia(cfg *config.Config, exec *fakeExecutor) Media {
	return New(cfg, exec, logger.NewWithWriter(io.Discard, "debug", "text"))
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestExtractAudio(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	exec.onRun = func(args []string) {
		require.NoError(t, os.WriteFile(args[len(args)-1], []byte("RIFF"), 0644))
	}
	m := testMedia(cfg, exec)

	path, err := m.ExtractAudio(context.Background(), "/videos/lec 01.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Paths.Audio(), "lec 01.wav"), path)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "ffmpeg", exec.calls[0].name)
	assert.Equal(t, "16000", argAfter(exec.calls[0].args, "-ar"))

	_, err = m.ExtractAudio(context.Background(), "/videos/lec 01.mp4")
	require.NoError(t, err)
	assert.Len(t, exec.calls, 1, "second run is skipped")
}

func TestExtractAudioFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit 1")}
	_, err := testMedia(testConfig(t), exec).ExtractAudio(context.Background(), "v.mp4")
	assert.ErrorContains(t, err, "ffmpeg extract audio")
}

func TestTranscribe(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	exec.onRun = func(args []string) {
		prefix := argAfter(args, "--output-file")
		require.NoError(t, os.WriteFile(prefix+".txt", []byte("hello"), 0644))
		require.NoError(t, os.WriteFile(prefix+".vtt", []byte("WEBVTT"), 0644))
	}
	m := testMedia(cfg, exec)

	tr, err := m.Transcribe(context.Background(), "a.wav", "lec01")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Paths.Transcripts(), "lec01.txt"), tr.TextPath)
	assert.Equal(t, filepath.Join(cfg.Paths.Transcripts(), "lec01.vtt"), tr.CaptionPath)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "whisper-cli", exec.calls[0].name)
	assert.Contains(t, exec.calls[0].args, "-ovtt")
	assert.Contains(t, exec.calls[0].args, "-otxt")

	_, err = m.Transcribe(context.Background(), "a.wav", "lec01")
	require.NoError(t, err)
	assert.Len(t, exec.calls, 1)
}

func TestTranscribeMissingOutput(t *testing.T) {
	_, err := testMedia(testConfig(t), &fakeExecutor{}).Transcribe(context.Background(), "a.wav", "x")
	assert.ErrorContains(t, err, "is missing")
}

func TestExtractFrames(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{
		stderr: "[Parsed_showinfo_1 @ 0x1] n:   0 pts:  12 pts_time:0.48 pos:1\n" +
			"[Parsed_showinfo_1 @ 0x1] n:   1 pts: 300 pts_time:12.5 pos:2\n" +
			"[Parsed_showinfo_1 @ 0x1] n:   2 pts: 900 pts_time:36 pos:3\n",
	}
	exec.onRun = func(args []string) {
		dir := filepath.Dir(args[len(args)-1])
		for _, n := range []string{"f_0001.jpg", "f_0002.jpg"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte{0xff}, 0644))
		}
	}
	m := testMedia(cfg, exec)

	frames, err := m.ExtractFrames(context.Background(), "v.mp4", "lec01")
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 0.48, frames[0].Time)
	assert.Equal(t, 12.5, frames[1].Time)
	assert.True(t, strings.HasSuffix(frames[1].Path, "f_0002.jpg"))
	assert.Equal(t, "select='gt(scene,0.05)',showinfo", argAfter(exec.calls[0].args, "-vf"))

	again, err := m.ExtractFrames(context.Background(), "v.mp4", "lec01")
	require.NoError(t, err)
	assert.Equal(t, frames, again)
	assert.Len(t, exec.calls, 1, "cached index is reused")
}

func TestPairFrames(t *testing.T) {
	got := pairFrames([]string{"a", "b", "c"}, []float64{1, 2})
	assert.Equal(t, []models.FrameSample{{Time: 1, Path: "a"}, {Time: 2, Path: "b"}}, got)
	assert.Empty(t, pairFrames(nil, []float64{1}))
}
