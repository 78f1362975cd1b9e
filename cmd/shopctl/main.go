// Command shopctl operates a shopcore store from the command line: backup
// export/restore, daily summaries, spreadsheet reports, mutation queue
// inspection, and a serve mode exposing health and metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shopcore/internal/backup"
	blobcore "shopcore/internal/blob/core"
	"shopcore/internal/config"
	"shopcore/internal/core"
	"shopcore/internal/infra/blob"
	"shopcore/internal/infra/blob/s3"
	"shopcore/internal/infra/httpx"
	"shopcore/internal/infra/logger"
	"shopcore/internal/report"
)

const usage = `usage: shopctl [-config file] <command> [flags]

commands:
  serve     run the operational HTTP surface (health, metrics)
  export    write a backup document to a file or blob storage
  restore   restore the store from a file or blob archive
  summary   print the daily summary for a date
  report    write an xlsx report for a date range
  queue     inspect or acknowledge pending mutations
`

type app struct {
	cfg      config.Config
	log      *slog.Logger
	svc      *core.Service
	store    core.PersistentStore
	archiver *backup.Archiver
}

func main() {
	_ = godotenv.Load() // load .env if present

	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := a.run(ctx, cmd, args); err != nil {
		log.Error("command failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
}

func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenStore(core.StorageConfig{
		Driver:      core.StorageDriver(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, engine)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	opts := []core.Option{core.WithLogger(log)}
	if cfg.Metrics.Enabled {
		opts = append(opts, core.WithMetrics(core.NewPrometheusMetricsRecorder(nil)))
	}
	svc := core.NewService(store, opts...)

	blobs, err := blob.Open(ctx, blob.Config{
		Driver: blobcore.Driver(cfg.Blob.Driver),
		Root:   cfg.Blob.Root,
		S3: s3.Config{
			Region:          cfg.Blob.S3.Region,
			Bucket:          cfg.Blob.S3.Bucket,
			Endpoint:        cfg.Blob.S3.Endpoint,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
			PathStyle:       cfg.Blob.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open blob storage: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		svc:      svc,
		store:    store,
		archiver: backup.NewArchiver(store, blobs, log),
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "export":
		return a.export(ctx, args)
	case "restore":
		return a.restore(ctx, args)
	case "summary":
		return a.summary(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "queue":
		return a.queue(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) serve(ctx context.Context) error {
	srv := httpx.New(a.cfg.HTTP.Addr, a.cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			a.log.Error("http server error", "err", err)
		}
	}()
	a.log.Info("serving", "addr", a.cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("graceful shutdown complete")
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "write the document to this file instead of stdout")
	upload := fs.Bool("upload", false, "upload the document to blob storage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *upload {
		info, err := a.archiver.Upload(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%d bytes)\n", info.Key, info.Size)
		return nil
	}

	doc := backup.Export(a.store)
	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return backup.Encode(w, doc)
}

func (a *app) restore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	file := fs.String("file", "", "restore from a local document file")
	key := fs.String("key", "", "restore from a named blob archive")
	latest := fs.Bool("latest", false, "restore from the newest blob archive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		doc, err := backup.Decode(f)
		if err != nil {
			return err
		}
		return backup.Restore(a.store, doc)
	case *key != "":
		return a.archiver.RestoreFrom(ctx, *key)
	case *latest:
		return a.archiver.RestoreLatest(ctx)
	default:
		return fmt.Errorf("restore requires -file, -key, or -latest")
	}
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	dateStr := fs.String("date", "", "day to summarize as YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	date := time.Now()
	if *dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *dateStr, time.Local)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		date = parsed
	}

	engine := report.NewEngine(a.svc)
	s, err := engine.DailySummary(ctx, date)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fromStr := fs.String("from", "", "first day as YYYY-MM-DD")
	toStr := fs.String("to", "", "last day as YYYY-MM-DD (default from)")
	out := fs.String("out", "report.xlsx", "output spreadsheet path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fromStr == "" {
		return fmt.Errorf("report requires -from")
	}
	from, err := time.ParseInLocation("2006-01-02", *fromStr, time.Local)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	to := from
	if *toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", *toStr, time.Local)
		if err != nil {
			return fmt.Errorf("parse to: %w", err)
		}
	}

	engine := report.NewEngine(a.svc)
	summaries, err := engine.RangeSummaries(ctx, from, to)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := report.WriteExcel(f, summaries); err != nil {
		return err
	}
	a.log.Info("report written", "path", *out, "days", len(summaries))
	return nil
}

func (a *app) queue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	ack := fs.String("ack", "", "acknowledge the queue item with this id")
	attempt := fs.String("attempt", "", "mark a replay attempt on the item with this id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *ack != "" {
		return a.svc.AcknowledgeMutation(*ack)
	}
	if *attempt != "" {
		return a.svc.MarkMutationAttempt(*attempt)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, m := range a.svc.PendingMutations() {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}
