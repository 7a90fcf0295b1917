package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/async"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/ingest"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
	"github.com/joseph-ayodele/telkom-contracts/internal/schema"
)

// batch collects one record per document group; reprocessing a group replaces its record.
type batch struct {
	proc     *pipeline.Processor
	runs     repo.RunRepository
	exporter *export.Service
	jsonDir  string
	logger   *slog.Logger

	pending sync.WaitGroup

	mu        sync.Mutex
	results   map[string]*entity.ContractRecord
	processed int
	unchanged int
	failures  int
}

type batchSummary struct {
	processed, unchanged, failures int
}

func newBatch(proc *pipeline.Processor, runs repo.RunRepository, jsonDir string, logger *slog.Logger) *batch {
	return &batch{
		proc:     proc,
		runs:     runs,
		exporter: export.NewService(logger),
		jsonDir:  jsonDir,
		logger:   logger,
		results:  map[string]*entity.ContractRecord{},
	}
}

// submit queues groups and waits until all of them have been handled.
func (b *batch) submit(ctx context.Context, queue async.Queue, groups []ingest.DocumentGroup) error {
	for _, g := range groups {
		b.pending.Add(1)
		err := queue.Enqueue(ctx, async.Job{Key: g.Key(), Page1: g.Page1, Page2: g.Page2})
		if err != nil {
			b.pending.Done()
			return fmt.Errorf("enqueue %s: %w", g.Name, err)
		}
	}
	b.pending.Wait()
	return nil
}

func (b *batch) handle(ctx context.Context, job async.Job) (err error) {
	defer b.pending.Done()
	defer func() {
		if err != nil {
			b.mu.Lock()
			b.failures++
			b.mu.Unlock()
		}
	}()

	ctx, _ = common.NewRunContext(ctx)
	logger := common.LoggerFromContext(ctx, b.logger).With("group", job.Key)

	var hash string
	if b.runs != nil {
		if hash, err = ingest.HashFiles(append(append([]string{}, job.Page1...), job.Page2...)); err != nil {
			return err
		}
		if rec, ok := b.storedRecord(ctx, hash, logger); ok {
			b.mu.Lock()
			b.results[job.Key] = rec
			b.unchanged++
			b.mu.Unlock()
			return nil
		}
	}

	outcome := b.proc.ProcessFiles(common.WithLogger(ctx, b.logger), job.Page1, job.Page2)
	for _, le := range outcome.LoadErrors {
		logger.Warn("batch.load.skipped", "error", le)
	}
	if outcome.Status == constants.RunStatusFailed {
		return fmt.Errorf("no readable result files for %s", job.Key)
	}
	rec := outcome.Record
	if err := schema.ValidateRecord(rec); err != nil {
		logger.Warn("schema.validate.failed", "error", err)
	}

	if b.jsonDir != "" {
		name := job.Key
		if rec.Contract.ContractNumber != nil {
			name = *rec.Contract.ContractNumber
		} else if n, _, _, ok := ingest.PageOf(firstOf(job.Page1, job.Page2)); ok {
			name = n
		}
		path, err := export.WriteRecordJSON(b.jsonDir, name, rec)
		if err != nil {
			return err
		}
		logger.Info("batch.json.written", "path", path)
	}

	if b.runs != nil {
		run, err := repo.RunFromRecord(job.Key, hash, rec, outcome.Status)
		if err != nil {
			return err
		}
		if err := b.runs.SaveRun(ctx, run); err != nil {
			return err
		}
	}

	b.mu.Lock()
	b.results[job.Key] = rec
	b.processed++
	b.mu.Unlock()
	return nil
}

// storedRecord returns the record of an earlier run over identical inputs.
func (b *batch) storedRecord(ctx context.Context, hash string, logger *slog.Logger) (*entity.ContractRecord, bool) {
	run, err := b.runs.FindByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			logger.Warn("batch.store.lookup_failed", "error", err)
		}
		return nil, false
	}
	rec, err := export.UnmarshalRecord(run.Record)
	if err != nil {
		logger.Warn("batch.store.corrupt_record", "run_id", run.ID, "error", err)
		return nil, false
	}
	logger.Info("batch.group.unchanged", "run_id", run.ID)
	return rec, true
}

func (b *batch) records() []*entity.ContractRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.results))
	for k := range b.results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*entity.ContractRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.results[k])
	}
	return out
}

func (b *batch) writeWorkbook(path string) error {
	xlsx, err := b.exporter.BatchXLSX(b.records())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (b *batch) summary() batchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return batchSummary{processed: b.processed, unchanged: b.unchanged, failures: b.failures}
}

func firstOf(lists ...[]string) string {
	for _, l := range lists {
		if len(l) > 0 {
			return l[0]
		}
	}
	return ""
}
