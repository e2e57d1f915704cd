package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nguyentantai21042004/slide-flow/internal/kgraph"
	"github.com/nguyentantai21042004/slide-flow/internal/llm"
	"github.com/nguyentantai21042004/slide-flow/internal/mcp"
	"github.com/nguyentantai21042004/slide-flow/internal/processor"
	"github.com/nguyentantai21042004/slide-flow/internal/queue"
	"github.com/nguyentantai21042004/slide-flow/internal/watcher"
)

// stdout is where command results are written.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "slideflow",
		Usage:   "Turn lecture videos into slide decks",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "Path to config file", EnvVars: []string{"SLIDEFLOW_CONFIG"}},
		},
		Commands: []*cli.Command{
			runCmd(),
			watchCmd(),
			enqueueCmd(),
			workerCmd(),
			indexCmd(),
			searchCmd(),
			runsCmd(),
			doctorCmd(),
			mcpCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// withComponents runs fn with components built from the --config flag and a context
// cancelled on SIGINT or SIGTERM.
func withComponents(c *cli.Context, fn func(ctx context.Context, comp *components) error) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comp, err := setup(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer comp.Close()

	return fn(ctx, comp)
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Build decks for the given videos, or every video in the input folder",
		ArgsUsage: "[video...]",
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				comp.banner(ctx, "batch")

				videos := c.Args().Slice()
				if len(videos) == 0 {
					var err error
					if videos, err = processor.DiscoverVideos(comp.cfg.Paths.Input); err != nil {
						return fmt.Errorf("list input: %w", err)
					}
				}
				return exitCode(comp.processor().ProcessAll(ctx, videos))
			})
		},
	}
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the input folder and build a deck for each new video",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "backlog", Usage: "Process videos already in the input folder first"},
			&cli.DurationFlag{Name: "settle", Value: 500 * time.Millisecond, Usage: "Wait after a file appears before processing it"},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				comp.banner(ctx, "watch")
				proc := comp.processor()

				if c.Bool("backlog") {
					videos, err := processor.DiscoverVideos(comp.cfg.Paths.Input)
					if err != nil {
						return fmt.Errorf("list input: %w", err)
					}
					if _, err := proc.ProcessAll(ctx, videos); err != nil {
						return err
					}
				}

				w, err := watcher.New(comp.cfg.Paths.Input, proc.Process, comp.log, watcher.Options{
					MaxConcurrent: comp.cfg.Performance.MaxConcurrent,
					Settle:        c.Duration("settle"),
					Filter:        processor.IsVideoFile,
				})
				if err != nil {
					return err
				}
				defer w.Stop()

				comp.log.Info(ctx, "Press Ctrl+C to stop")
				if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				comp.log.Info(ctx, "Slide Flow stopped")
				return nil
			})
		},
	}
}

func enqueueCmd() *cli.Command {
	return &cli.Command{
		Name:      "enqueue",
		Usage:     "Queue videos in Redis for workers",
		ArgsUsage: "[video...]",
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				q, err := queue.New(ctx, comp.cfg.Queue, comp.log)
				if err != nil {
					return err
				}
				defer q.Close()

				videos := c.Args().Slice()
				if len(videos) == 0 {
					if videos, err = processor.DiscoverVideos(comp.cfg.Paths.Input); err != nil {
						return fmt.Errorf("list input: %w", err)
					}
				}

				added := 0
				for _, v := range videos {
					ok, err := q.Enqueue(ctx, v)
					if err != nil {
						return err
					}
					if ok {
						added++
					}
				}
				pending, err := q.Len(ctx)
				if err != nil {
					return err
				}
				return outputJSON(map[string]any{"queued": added, "skipped": len(videos) - added, "pending": pending})
			})
		},
	}
}

func workerCmd() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Process videos queued in Redis",
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				comp.banner(ctx, "worker")
				q, err := queue.New(ctx, comp.cfg.Queue, comp.log)
				if err != nil {
					return err
				}
				defer q.Close()

				err = q.Work(ctx, comp.cfg.Performance.MaxConcurrent, comp.processor().Process)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func indexCmd() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Embed cached transcripts into the related-context index",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory of .txt transcripts (default: the transcript cache)"},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				dir := c.String("dir")
				if dir == "" {
					dir = comp.cfg.Paths.Transcripts()
				}
				n, err := comp.graph.IndexTranscripts(ctx, dir)
				if err != nil {
					return err
				}
				return outputJSON(map[string]any{"dir": dir, "snippets": n})
			})
		},
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search indexed transcripts",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"k"}, Value: 5, Usage: "Maximum hits"},
		},
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return errors.New("search: query is required")
			}
			return withComponents(c, func(ctx context.Context, comp *components) error {
				hits, err := comp.graph.Search(ctx, query, c.Int("limit"))
				if errors.Is(err, kgraph.ErrIndexEmpty) {
					return errors.New("search: index is empty, run 'slideflow index' first")
				}
				if err != nil {
					return err
				}
				return outputJSON(hits)
			})
		},
	}
}

func runsCmd() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Show recent processing runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "video", Usage: "Restrict to one video id"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs"},
		},
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				runs, err := comp.db.Runs(ctx, c.String("video"), c.Int("limit"))
				if err != nil {
					return err
				}
				return outputJSON(runs)
			})
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check external tools and models",
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				var problems []string

				if _, err := comp.exec.Execute(ctx, comp.cfg.FFmpeg.BinaryPath, "-version"); err != nil {
					problems = append(problems, fmt.Sprintf("ffmpeg: %v", err))
				}
				if _, err := os.Stat(comp.cfg.Whisper.BinaryPath); err != nil {
					problems = append(problems, fmt.Sprintf("whisper binary: %v", err))
				}
				if _, err := os.Stat(comp.cfg.Whisper.ModelPath); err != nil {
					problems = append(problems, fmt.Sprintf("whisper model: %v", err))
				}

				var wanted []string
				if comp.cfg.Generation.Backend == "ollama" {
					wanted = append(wanted, comp.cfg.Generation.Models()...)
				}
				if comp.cfg.Context.Enabled {
					wanted = append(wanted, comp.cfg.Context.EmbeddingModel)
				}
				if len(wanted) > 0 {
					missing, err := llm.Preflight(ctx, comp.cfg.Generation.OllamaURL, wanted)
					if err != nil {
						problems = append(problems, err.Error())
					}
					for _, m := range missing {
						problems = append(problems, fmt.Sprintf("model %s is not pulled (ollama pull %s)", m, m))
					}
				}

				for _, p := range problems {
					comp.log.Warn(ctx, "%s", p)
				}
				if len(problems) > 0 {
					return fmt.Errorf("doctor found %d problem(s)", len(problems))
				}
				comp.log.Info(ctx, "All checks passed")
				return nil
			})
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve decks, runs and transcript search over MCP (stdio)",
		Action: func(c *cli.Context) error {
			return withComponents(c, func(ctx context.Context, comp *components) error {
				return mcp.Run(mcp.NewHandlers(comp.graph, comp.db, comp.cfg.Paths.Output), Version)
			})
		},
	}
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
