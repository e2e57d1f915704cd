package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/kgraph"
	"github.com/nguyentantai21042004/slide-flow/internal/llm"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/processor"
	"github.com/nguyentantai21042004/slide-flow/internal/render"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// components is everything a command may need, built from one config file.
type components struct {
	cfg   *config.Config
	log   logger.Logger
	exec  executor.Executor
	db    *store.SQLite
	index store.Index
	graph kgraph.Graph
}

// setup loads the config, prepares directories and opens the stores.
func setup(ctx context.Context, configPath string) (*components, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	if err := ensureDirectories(cfg); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	db, err := store.OpenSQLite(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &components{cfg: cfg, log: log, exec: executor.New(), db: db, index: db}

	if cfg.Context.Backend == "postgres" && cfg.Postgres.URL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open postgres index: %w", err)
		}
		c.index = pg
	}

	emb, err := kgraph.NewOllamaEmbedder(cfg.Generation.OllamaURL, cfg.Context.EmbeddingModel)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	c.graph = kgraph.New(emb, c.index, kgraph.Options{
		TopK:       cfg.Context.TopK,
		QueryChars: cfg.Context.QueryChars,
		MinSnippet: cfg.Context.MinSnippet,
		Timeout:    cfg.Context.Timeout,
	}, log)

	return c, nil
}

func (c *components) Close() {
	if c.index != store.Index(c.db) {
		if err := c.index.Close(); err != nil {
			c.log.Warn(context.Background(), "Failed to close index: %v", err)
		}
	}
	if err := c.db.Close(); err != nil {
		c.log.Warn(context.Background(), "Failed to close database: %v", err)
	}
}

// generator picks the generation backend.
func (c *components) generator() llm.Generator {
	if c.cfg.Generation.Backend == "gemini" {
		return llm.NewGemini(c.cfg.Generation.GeminiAPIKeys, c.log)
	}
	return llm.NewOllama(c.cfg.Generation.OllamaURL, nil, c.log)
}

// processor wires the full per-video pipeline.
func (c *components) processor() processor.Processor {
	g := c.cfg.Generation
	client := llm.New(c.generator(), llm.Options{
		Models:      g.Models(),
		Attempts:    g.Attempts,
		Timeout:     g.Timeout,
		Backoff:     g.RetryBackoff,
		RateLimit:   g.RateLimit,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
	}, c.log)

	var retriever kgraph.Retriever
	if c.cfg.Context.Enabled {
		retriever = c.graph
	}

	deps := processor.Deps{
		Media:     media.New(c.cfg, c.exec, c.log),
		Assembler: assembler.New(client, retriever, c.cfg.Chunking.WordTarget, c.log),
		Renderer: render.New(render.Options{
			RevealTheme:  c.cfg.Render.RevealTheme,
			MermaidTheme: c.cfg.Render.MermaidTheme,
			Docx:         c.cfg.Render.Docx,
			JSON:         c.cfg.Render.JSON,
		}, c.log),
		Runs: c.db,
	}
	if c.cfg.Context.Enabled {
		deps.Indexer = c.graph
	}
	return processor.New(c.cfg, deps, c.log)
}

func (c *components) banner(ctx context.Context, mode string) {
	c.log.Info(ctx, "========================================")
	c.log.Info(ctx, "Slide Flow %s (%s)", Version, mode)
	c.log.Info(ctx, "========================================")
	c.log.Info(ctx, "Input: %s", c.cfg.Paths.Input)
	c.log.Info(ctx, "Output: %s", c.cfg.Paths.Output)
	c.log.Info(ctx, "Generation: %s %v", c.cfg.Generation.Backend, c.cfg.Generation.Models())
	c.log.Info(ctx, "Whisper: %d threads, GPU %t", c.cfg.Whisper.Threads, c.cfg.Whisper.UseGPU)
	c.log.Info(ctx, "Concurrent: %d videos at once", c.cfg.Performance.MaxConcurrent)
	if c.cfg.Context.Enabled {
		c.log.Info(ctx, "Related context: %s index, top %d", c.cfg.Context.Backend, c.cfg.Context.TopK)
	}
	c.log.Info(ctx, "========================================")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Work,
		cfg.Paths.Transcripts(),
		cfg.Paths.Audio(),
		cfg.Paths.Frames(),
	}
	if cfg.Paths.ArchiveInput {
		dirs = append(dirs, cfg.Paths.Archived)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// exitCode turns a batch outcome into a CLI error.
func exitCode(failed int, err error) error {
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d video(s) failed", failed)
	}
	return nil
}
