package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Generation  GenerationConfig  `yaml:"generation"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Context     ContextConfig     `yaml:"context"`
	Render      RenderConfig      `yaml:"render"`
	Queue       QueueConfig       `yaml:"queue"`
	Postgres    PostgresConfig    `yaml:"postgres"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	UseGPU     bool   `yaml:"use_gpu"`
}

type FFmpegConfig struct {
	BinaryPath     string  `yaml:"binary_path"`
	SceneThreshold float64 `yaml:"scene_threshold"`
	SampleRate     int     `yaml:"sample_rate"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Work     string `yaml:"work"`
	Archived string `yaml:"archived"`
	Database string `yaml:"database"`
	// ArchiveInput moves a video to Archived once its deck is written.
	ArchiveInput bool `yaml:"archive_input"`
	// KeepAudio keeps extracted WAV files after transcription.
	KeepAudio bool `yaml:"keep_audio"`
}

// Transcripts is where whisper output is cached.
func (p PathsConfig) Transcripts() string { return filepath.Join(p.Work, "transcripts") }

// Audio is where extracted audio is cached.
func (p PathsConfig) Audio() string { return filepath.Join(p.Work, "audio") }

// Frames is the root of per-video frame directories.
func (p PathsConfig) Frames() string { return filepath.Join(p.Work, "frames") }

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// GenerationConfig controls slide generation calls and the model fallback policy.
type GenerationConfig struct {
	Backend        string        `yaml:"backend"`
	OllamaURL      string        `yaml:"ollama_url"`
	Model          string        `yaml:"model"`
	FallbackModels []string      `yaml:"fallback_models"`
	Attempts       int           `yaml:"attempts"`
	Timeout        time.Duration `yaml:"timeout"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	RateLimit      time.Duration `yaml:"rate_limit"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float64       `yaml:"temperature"`
	GeminiAPIKeys  []string      `yaml:"gemini_api_keys"`
}

// Models returns the primary model followed by the fallbacks, without blanks or repeats.
func (g GenerationConfig) Models() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append([]string{g.Model}, g.FallbackModels...) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

type ChunkingConfig struct {
	WordTarget int `yaml:"word_target"`
}

// ContextConfig controls the optional related-context retrieval used in prompts.
type ContextConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Backend        string        `yaml:"backend"`
	EmbeddingModel string        `yaml:"embedding_model"`
	TopK           int           `yaml:"top_k"`
	QueryChars     int           `yaml:"query_chars"`
	MinSnippet     int           `yaml:"min_snippet"`
	Timeout        time.Duration `yaml:"timeout"`
}

type RenderConfig struct {
	RevealTheme  string `yaml:"reveal_theme"`
	MermaidTheme string `yaml:"mermaid_theme"`
	Docx         bool   `yaml:"docx"`
	JSON         bool   `yaml:"json"`
}

type QueueConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	JobsKey   string `yaml:"jobs_key"`
	SeenKey   string `yaml:"seen_key"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

// Load reads a YAML config file. A .env file next to it is loaded first and selected
// environment variables override file values.
func Load(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		c.Generation.GeminiAPIKeys = splitList(v)
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Generation.OllamaURL = v
	}
	if v := os.Getenv("PRIMARY_MODEL"); v != "" {
		c.Generation.Model = v
	}
	if v := os.Getenv("FALLBACK_MODELS"); v != "" {
		c.Generation.FallbackModels = splitList(v)
	}
	if v := os.Getenv("CHUNK_WORD_TARGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHUNK_WORD_TARGET: %w", err)
		}
		c.Chunking.WordTarget = n
	}
	if v := os.Getenv("RATE_LIMIT_SECONDS"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_SECONDS: %w", err)
		}
		c.Generation.RateLimit = time.Duration(secs * float64(time.Second))
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Queue.RedisAddr = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.Language == "" {
		return fmt.Errorf("whisper.language is required")
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	switch c.Generation.Backend {
	case "":
		c.Generation.Backend = "ollama"
	case "ollama":
	case "gemini":
		if len(c.Generation.GeminiAPIKeys) == 0 {
			return fmt.Errorf("generation.gemini_api_keys is required for the gemini backend")
		}
	default:
		return fmt.Errorf("generation.backend must be ollama or gemini, got %q", c.Generation.Backend)
	}

	switch c.Context.Backend {
	case "":
		c.Context.Backend = "sqlite"
	case "sqlite":
	case "postgres":
		if c.Context.Enabled && c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for the postgres context backend")
		}
	default:
		return fmt.Errorf("context.backend must be sqlite or postgres, got %q", c.Context.Backend)
	}

	if c.Paths.Work == "" {
		c.Paths.Work = "data/work"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = filepath.Join(c.Paths.Work, "slideflow.db")
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SceneThreshold <= 0 {
		c.FFmpeg.SceneThreshold = 0.05
	}
	if c.FFmpeg.SampleRate <= 0 {
		c.FFmpeg.SampleRate = 16000
	}

	g := &c.Generation
	if g.OllamaURL == "" {
		g.OllamaURL = "http://localhost:11434"
	}
	if g.Model == "" {
		if g.Backend == "gemini" {
			g.Model = "gemini-2.5-flash"
		} else {
			g.Model = "qwen2.5-coder:7b"
		}
	}
	if g.FallbackModels == nil && g.Backend == "ollama" {
		g.FallbackModels = []string{"llama3:latest"}
	}
	if g.Attempts <= 0 {
		g.Attempts = 2
	}
	if g.Timeout <= 0 {
		g.Timeout = 300 * time.Second
	}
	if g.RetryBackoff <= 0 {
		g.RetryBackoff = time.Second
	}
	if g.RateLimit <= 0 {
		g.RateLimit = 400 * time.Millisecond
	}
	if g.MaxTokens <= 0 {
		g.MaxTokens = 512
	}

	if c.Chunking.WordTarget <= 0 {
		c.Chunking.WordTarget = 450
	}

	if c.Context.EmbeddingModel == "" {
		c.Context.EmbeddingModel = "nomic-embed-text"
	}
	if c.Context.TopK <= 0 {
		c.Context.TopK = 3
	}
	if c.Context.QueryChars <= 0 {
		c.Context.QueryChars = 100
	}
	if c.Context.MinSnippet <= 0 {
		c.Context.MinSnippet = 50
	}
	if c.Context.Timeout <= 0 {
		c.Context.Timeout = 10 * time.Second
	}

	if c.Render.RevealTheme == "" {
		c.Render.RevealTheme = "black"
	}
	if c.Render.MermaidTheme == "" {
		c.Render.MermaidTheme = "default"
	}

	if c.Queue.RedisAddr == "" {
		c.Queue.RedisAddr = "localhost:6379"
	}
	if c.Queue.JobsKey == "" {
		c.Queue.JobsKey = "slideflow:jobs"
	}
	if c.Queue.SeenKey == "" {
		c.Queue.SeenKey = "slideflow:seen"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}
