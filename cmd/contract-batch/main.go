package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joseph-ayodele/telkom-contracts/internal/async"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/ingest"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir        = flag.String("dir", "", "directory holding <contract>_page_N_results folders (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		jsonDir    = flag.String("json-dir", "", "write one <contract>_extracted_<timestamp>.json per contract here (optional)")
		workers    = flag.Int("workers", 0, "worker count (defaults to BATCH_WORKERS)")
		storeDSN   = flag.String("store", "", "store DSN for extraction runs (optional, overrides STORE_DSN)")
		watch      = flag.Bool("watch", false, "keep running and process new result files as they appear")
		configPath = flag.String("config", "", "YAML config file (optional)")
		logLevel   = flag.String("log-level", "", "debug, info, warn, error")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// If output file not specified, use parent directory with default filename
	if *out == "" {
		parentDir := filepath.Dir(filepath.Clean(*dir))
		*out = filepath.Join(parentDir, "contracts.xlsx")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *storeDSN != "" {
		cfg.Store.DSN = *storeDSN
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs repo.RunRepository
	if cfg.Store.DSN != "" {
		store, err := repo.Open(ctx, repo.ConfigFrom(cfg.Store), logger)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		runs = repo.NewRunRepository(store)
	}

	b := newBatch(pipeline.NewProcessor(pipeline.ConfigFrom(cfg.Extract), logger), runs, *jsonDir, logger)
	queue := async.NewProcessorQueue(b.handle, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithProcessTimeout(cfg.Batch.Timeout),
	)

	groups, stats, err := ingest.DiscoverGroups(*dir, true, logger)
	if err != nil {
		logger.Error("failed to discover result groups", "error", err)
		os.Exit(1)
	}
	logger.Info("discovery complete",
		"groups", stats.Groups,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped)

	if err := b.submit(ctx, queue, groups); err != nil {
		logger.Error("failed to queue groups", "error", err)
		os.Exit(1)
	}
	if err := b.writeWorkbook(*out); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	if *watch {
		if err := watchLoop(ctx, *dir, *out, b, queue, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch stopped", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Batch.Timeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	s := b.summary()
	logger.Info("batch processing complete",
		"groups", len(groups),
		"processed", s.processed,
		"unchanged", s.unchanged,
		"failures", s.failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Contracts found: %d\n", len(groups))
	fmt.Printf("- Contracts processed: %d\n", s.processed)
	if runs != nil {
		fmt.Printf("- Unchanged (already stored): %d\n", s.unchanged)
	}
	fmt.Printf("- Failures: %d\n", s.failures)
	fmt.Printf("- Output: %s\n", *out)
	if *jsonDir != "" {
		fmt.Printf("- JSON: %s\n", *jsonDir)
	}
}

// watchLoop reprocesses groups whose result files change until ctx is done.
func watchLoop(ctx context.Context, root, out string, b *batch, queue *async.ProcessorQueue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{root},
		Debounce: 2 * time.Second,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching for new result files", "dir", root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok {
				logger.Warn("watcher error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				return nil
			}
			changed := map[string]struct{}{}
			collect := func(p string) {
				if name, dir, _, ok := ingest.PageOf(p); ok {
					changed[ingest.DocumentGroup{Name: name, Dir: dir}.Key()] = struct{}{}
				}
			}
			collect(path)
			// coalesce whatever else arrived in the same burst
		drain:
			for {
				select {
				case p, ok := <-events:
					if !ok {
						break drain
					}
					collect(p)
				default:
					break drain
				}
			}
			if len(changed) == 0 {
				continue
			}

			groups, _, err := ingest.DiscoverGroups(root, true, logger)
			if err != nil {
				logger.Error("rescan failed", "error", err)
				continue
			}
			var todo []ingest.DocumentGroup
			for _, g := range groups {
				if _, ok := changed[g.Key()]; ok {
					todo = append(todo, g)
				}
			}
			if err := b.submit(ctx, queue, todo); err != nil {
				return err
			}
			if err := b.writeWorkbook(out); err != nil {
				logger.Error("failed to write output file", "error", err)
			}
		}
	}
}

func loadConfig(path string) (*common.Config, error) {
	if path == "" {
		return common.LoadConfig(), nil
	}
	return common.LoadConfigFile(path)
}
