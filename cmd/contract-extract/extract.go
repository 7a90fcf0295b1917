package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
	"github.com/joseph-ayodele/telkom-contracts/internal/schema"
)

func newPage1Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "page1 <input.json> [output.json]",
		Short: "Extract a contract record from a page-1 result file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			doc := document.Normalize(document.Decode(data))
			rec := a.processor().ExtractPage1(ctx, doc)
			rec.SourceFiles = append(rec.SourceFiles, args[0])

			return a.finish(ctx, cmd, rec, args[0], repo.ContentHash(data), outputArg(args, 1))
		},
	}
}

func newMerge2Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge2 <existing.json> <page2.json> [output.json]",
		Short: "Merge page-2 dates and contacts into an existing record",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			existingData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			existing, err := export.UnmarshalRecord(existingData)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			page2Data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			page2 := a.processor().ExtractPage2(ctx, document.Normalize(document.Decode(page2Data)))
			page2.SourceFiles = []string{args[1]}
			rec := pipeline.Merge(existing, page2)

			return a.finish(ctx, cmd, rec, args[1], repo.ContentHash(existingData, page2Data), outputArg(args, 2))
		},
	}
}

// finish validates, optionally stores, and writes the record to out or stdout.
func (a *app) finish(ctx context.Context, cmd *cobra.Command, rec *entity.ContractRecord, source, hash, out string) error {
	if err := schema.ValidateRecord(rec); err != nil {
		a.logger.Warn("schema.validate.failed", "error", err)
	}

	runs, err := a.runs(ctx)
	if err != nil {
		return err
	}
	if runs != nil {
		run, err := repo.RunFromRecord(source, hash, rec, pipeline.RecordStatus(rec))
		if err != nil {
			return err
		}
		// SaveRun logs store.run.saved
		if err := runs.SaveRun(ctx, run); err != nil {
			return err
		}
	}

	b, err := export.MarshalRecord(rec)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Record written to %s\n", out)
	return nil
}

func outputArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
