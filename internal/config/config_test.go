package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/test.bin",
			BinaryPath: "./whisper",
			Language:   "en",
		},
		Paths: PathsConfig{
			Input:  "data/input",
			Output: "data/slides",
		},
	}
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEYS", "OLLAMA_URL", "PRIMARY_MODEL", "FALLBACK_MODELS",
		"CHUNK_WORD_TARGET", "RATE_LIMIT_SECONDS", "POSTGRES_URL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing model path", func(c *Config) { c.Whisper.ModelPath = "" }, true},
		{"missing paths", func(c *Config) { c.Paths = PathsConfig{} }, true},
		{"unknown backend", func(c *Config) { c.Generation.Backend = "openai" }, true},
		{"gemini without keys", func(c *Config) { c.Generation.Backend = "gemini" }, true},
		{"gemini with keys", func(c *Config) {
			c.Generation.Backend = "gemini"
			c.Generation.GeminiAPIKeys = []string{"k1"}
		}, false},
		{"postgres context without url", func(c *Config) {
			c.Context.Enabled = true
			c.Context.Backend = "postgres"
		}, true},
		{"unknown context backend", func(c *Config) { c.Context.Backend = "chroma" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	g := cfg.Generation
	assert.Equal(t, "ollama", g.Backend)
	assert.Equal(t, "http://localhost:11434", g.OllamaURL)
	assert.Equal(t, "qwen2.5-coder:7b", g.Model)
	assert.Equal(t, []string{"llama3:latest"}, g.FallbackModels)
	assert.Equal(t, 2, g.Attempts)
	assert.Equal(t, 300*time.Second, g.Timeout)
	assert.Equal(t, time.Second, g.RetryBackoff)
	assert.Equal(t, 400*time.Millisecond, g.RateLimit)
	assert.Equal(t, 512, g.MaxTokens)
	assert.Zero(t, g.Temperature)

	assert.Equal(t, 450, cfg.Chunking.WordTarget)
	assert.Equal(t, "sqlite", cfg.Context.Backend)
	assert.Equal(t, "nomic-embed-text", cfg.Context.EmbeddingModel)
	assert.Equal(t, 3, cfg.Context.TopK)
	assert.Equal(t, 100, cfg.Context.QueryChars)
	assert.Equal(t, 0.05, cfg.FFmpeg.SceneThreshold)
	assert.Equal(t, 2, cfg.Performance.MaxConcurrent)
	assert.Equal(t, "black", cfg.Render.RevealTheme)
	assert.Equal(t, filepath.Join("data/work", "slideflow.db"), cfg.Paths.Database)
}

func TestModels(t *testing.T) {
	g := GenerationConfig{Model: "qwen", FallbackModels: []string{"llama3", " ", "qwen", "mistral"}}
	assert.Equal(t, []string{"qwen", "llama3", "mistral"}, g.Models())
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"
  prompt: "test"

paths:
  input: "data/input"
  output: "data/slides"

generation:
  model: "mistral"
  fallback_models: ["llama3:latest", "phi3"]
  timeout: 90s
  rate_limit: 250ms

chunking:
  word_target: 300

logging:
  level: "info"
  format: "text"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "models/test.bin", cfg.Whisper.ModelPath)
	assert.Equal(t, "data/input", cfg.Paths.Input)
	assert.Equal(t, []string{"mistral", "llama3:latest", "phi3"}, cfg.Generation.Models())
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Generation.RateLimit)
	assert.Equal(t, 300, cfg.Chunking.WordTarget)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRIMARY_MODEL", "gemma2")
	t.Setenv("FALLBACK_MODELS", "a, b")
	t.Setenv("RATE_LIMIT_SECONDS", "1.5")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
whisper: {model_path: m, binary_path: w, language: en}
paths: {input: in, output: out}
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma2", "a", "b"}, cfg.Generation.Models())
	assert.Equal(t, 1500*time.Millisecond, cfg.Generation.RateLimit)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
