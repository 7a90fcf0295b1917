// Package server exposes the extraction engine over HTTP and gRPC.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	"github.com/joseph-ayodele/telkom-contracts/internal/repository"
	"github.com/joseph-ayodele/telkom-contracts/internal/schema"
)

// ContractService is the transport-neutral core behind both servers.
// runs may be nil, in which case nothing is persisted and run lookups fail with not found.
type ContractService struct {
	proc     *pipeline.Processor
	runs     repository.RunRepository
	exporter *export.Service
	logger   *slog.Logger
}

func NewContractService(proc *pipeline.Processor, runs repository.RunRepository, exporter *export.Service, logger *slog.Logger) *ContractService {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	return &ContractService{proc: proc, runs: runs, exporter: exporter, logger: logger}
}

// ExtractResult is a record plus the id of its stored run, if one was saved.
type ExtractResult struct {
	Record *entity.ContractRecord
	RunID  *uuid.UUID
}

// ExtractPage1 builds a record from one page-1 document and stores it when a store is configured.
// Storage failures are logged; the record is still returned.
func (s *ContractService) ExtractPage1(ctx context.Context, raw document.RawDocument, source, hash string) ExtractResult {
	ctx, runID := common.NewRunContext(ctx)
	logger := common.LoggerFromContext(ctx, s.logger)

	rec := s.proc.ExtractPage1(common.WithLogger(ctx, s.logger), document.Normalize(raw))
	rec.SourceFiles = append(rec.SourceFiles, source)
	s.validate(logger, rec)

	out := ExtractResult{Record: rec}
	if id, ok := s.save(ctx, logger, runID, source, hash, rec); ok {
		out.RunID = &id
	}
	return out
}

// MergePage2 folds a page-2 document into a copy of rec.
func (s *ContractService) MergePage2(ctx context.Context, rec *entity.ContractRecord, raw document.RawDocument, source, hash string) ExtractResult {
	ctx, runID := common.NewRunContext(ctx)
	logger := common.LoggerFromContext(ctx, s.logger)

	page2 := s.proc.ExtractPage2(common.WithLogger(ctx, s.logger), document.Normalize(raw))
	page2.SourceFiles = []string{source}
	merged := pipeline.Merge(rec, page2)
	s.validate(logger, merged)

	out := ExtractResult{Record: merged}
	if id, ok := s.save(ctx, logger, runID, source, hash, merged); ok {
		out.RunID = &id
	}
	return out
}

func (s *ContractService) validate(logger *slog.Logger, rec *entity.ContractRecord) {
	if err := schema.ValidateRecord(rec); err != nil {
		logger.Warn("schema.validate.failed", "error", err)
	}
}

func (s *ContractService) save(ctx context.Context, logger *slog.Logger, runID, source, hash string, rec *entity.ContractRecord) (uuid.UUID, bool) {
	if s.runs == nil {
		return uuid.Nil, false
	}
	run, err := repository.RunFromRecord(source, hash, rec, pipeline.RecordStatus(rec))
	if err != nil {
		logger.Error("store.run.encode_failed", "error", err)
		return uuid.Nil, false
	}
	if id, err := uuid.Parse(runID); err == nil {
		run.ID = id
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		logger.Error("store.run.save_failed", "error", err)
		return uuid.Nil, false
	}
	return run.ID, true
}

func (s *ContractService) GetRun(ctx context.Context, id uuid.UUID) (*entity.ExtractionRun, error) {
	if s.runs == nil {
		return nil, errStoreDisabled
	}
	return s.runs.GetRun(ctx, id)
}

func (s *ContractService) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*entity.ExtractionRun, error) {
	if s.runs == nil {
		return nil, errStoreDisabled
	}
	return s.runs.ListRuns(ctx, filter)
}

// RunXLSX renders the stored record of a run as a workbook.
func (s *ContractService) RunXLSX(ctx context.Context, id uuid.UUID) ([]byte, *entity.ExtractionRun, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rec, err := export.UnmarshalRecord(run.Record)
	if err != nil {
		return nil, nil, common.NewAppError("RUN_CORRUPT", "decode stored record", fmt.Errorf("%w: %v", common.ErrInternal, err))
	}
	b, err := s.exporter.RecordXLSX(rec)
	if err != nil {
		return nil, nil, err
	}
	return b, run, nil
}

var errStoreDisabled = common.NewAppError("STORE_DISABLED", "no run store configured", common.ErrNotFound)
