package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"rankdrift/internal/config"
	"rankdrift/internal/engine"
	"rankdrift/internal/export"
	"rankdrift/internal/logging"
	"rankdrift/internal/playlist"
	"rankdrift/internal/predictor"
	"rankdrift/internal/rows"
)

var classifyFlags = []cli.Flag{
	&cli.StringFlag{Name: "source", Usage: "row table URL or CSV file path"},
	&cli.BoolFlag{Name: "sort", Usage: "group the row table by hash before classifying"},
	&cli.StringFlag{Name: "predictor", Usage: "prediction backend: remote or local"},
	&cli.StringFlag{Name: "predictor-url", Usage: "base URL of the remote prediction service"},
	&cli.StringFlag{Name: "model", Usage: "YAML model file for the local predictor"},
	&cli.DurationFlag{Name: "delay", Usage: "pause before each remote prediction request"},
	&cli.DurationFlag{Name: "timeout", Usage: "remote prediction request timeout"},
	&cli.IntFlag{Name: "max-failures", Usage: "consecutive remote failures before giving up"},
	&cli.StringFlag{Name: "out", Usage: "directory for the playlist JSON files"},
	&cli.StringFlag{Name: "archive", Usage: "zip file to pack the playlists into"},
	&cli.StringFlag{Name: "sqlite", Usage: "sqlite database to store the classified entries in"},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
}

// applyFlags overrides the loaded configuration with the flags that were set
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("sort") {
		cfg.PreSort = c.Bool("sort")
	}
	if c.IsSet("predictor") {
		cfg.Predictor = c.String("predictor")
	}
	if c.IsSet("predictor-url") {
		cfg.PredictorURL = c.String("predictor-url")
	}
	if c.IsSet("model") {
		cfg.ModelPath = c.String("model")
	}
	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("max-failures") {
		cfg.MaxFailures = c.Int("max-failures")
	}
	if c.IsSet("out") {
		cfg.OutDir = c.String("out")
	}
	if c.IsSet("archive") {
		cfg.Archive = c.String("archive")
	}
	if c.IsSet("sqlite") {
		cfg.SQLite = c.String("sqlite")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
}

func classify(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)

	if cfg.OutDir == "" && cfg.Archive == "" && cfg.SQLite == "" {
		err := huh.NewInput().
			Title("Enter the directory to save the playlists").
			Value(&cfg.OutDir).
			Run()
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cfg.PredictorOptions()
	opts.Logger = log
	p, err := predictor.New(cfg.Predictor, opts)
	if err != nil {
		return fmt.Errorf("failed to create predictor %s: %w", cfg.Predictor, err)
	}

	body, err := rows.Open(ctx, cfg.Source, cfg.GitHubToken)
	if err != nil {
		return err
	}
	defer body.Close()

	csvSource, err := rows.NewCSVSource(body)
	if err != nil {
		return err
	}
	var source rows.Source = csvSource
	preMalformed := 0
	if cfg.PreSort {
		sorted, malformed, err := rows.Sorted(csvSource)
		if err != nil {
			return fmt.Errorf("error reading rows: %w", err)
		}
		source, preMalformed = sorted, malformed
	}

	log.Info("Starting classification",
		zap.String("source", cfg.Source),
		zap.String("predictor", p.Name()))

	var (
		collection *playlist.Collection
		summary    engine.Summary
	)
	eng := engine.New(p, engine.WithLogger(log))
	run := func(ctx context.Context) error {
		var err error
		collection, summary, err = eng.Run(ctx, source)
		return err
	}
	err = spinner.New().Title("Classifying...").Context(ctx).ActionWithErr(run).Run()
	summary.Rows += preMalformed
	summary.Malformed += preMalformed
	if err != nil {
		log.Error("Classification aborted, nothing written",
			zap.Int("classified", summary.Classified),
			zap.Error(err))
		return err
	}

	if err := emit(ctx, cfg, collection); err != nil {
		return err
	}

	log.Info("Classification finished",
		zap.Int("rows", summary.Rows),
		zap.Int("runs", summary.Runs),
		zap.Int("classified", summary.Classified),
		zap.Int("skipped", summary.Skipped()),
		zap.Int("predictor_calls", summary.PredictorCalls))
	printSummary(summary)
	return nil
}

func emit(ctx context.Context, cfg config.Config, collection *playlist.Collection) error {
	if cfg.OutDir != "" {
		if err := export.WriteJSON(ctx, cfg.OutDir, collection); err != nil {
			return err
		}
	}
	if cfg.Archive != "" {
		if err := export.WriteArchive(cfg.Archive, collection); err != nil {
			return err
		}
	}
	if cfg.SQLite != "" {
		store, err := export.OpenSQLite(cfg.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(ctx, collection); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(s engine.Summary) {
	fmt.Printf("Processed %d rows in %d songs: %d classified, %d skipped\n", s.Rows, s.Runs, s.Classified, s.Skipped())
	if s.Skipped() > 0 {
		fmt.Printf("  malformed: %d, invalid difficulty: %d, no prediction: %d, out of range: %d\n",
			s.Malformed, s.InvalidDifficulty, s.PredictionFailed, s.OutOfRange)
	}
	if s.SplitRuns > 0 {
		fmt.Printf("Warning: %d songs were split across runs; consider --sort\n", s.SplitRuns)
	}
}

func listBuckets(c *cli.Context) error {
	for _, id := range playlist.AllBucketIDs() {
		fmt.Printf("%-32s %s\n", id.Title(), id.FileName())
	}
	return nil
}
