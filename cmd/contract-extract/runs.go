package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored extraction runs",
	}
	cmd.AddCommand(newRunsListCmd(a), newRunsShowCmd(a))
	return cmd
}

func (a *app) requireRuns(cmd *cobra.Command) (repo.RunRepository, error) {
	runs, err := a.runs(cmd.Context())
	if err != nil {
		return nil, err
	}
	if runs == nil {
		return nil, fmt.Errorf("no store configured: pass --store or set STORE_DSN")
	}
	return runs, nil
}

func newRunsListCmd(a *app) *cobra.Command {
	var (
		limit  int
		method string
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := a.requireRuns(cmd)
			if err != nil {
				return err
			}
			list, err := runs.ListRuns(cmd.Context(), repo.RunFilter{
				Limit:         limit,
				PaymentMethod: method,
				Status:        constants.RunStatus(status),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tCONTRACT\tCUSTOMER\tPAYMENT\tSCORE")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Status,
					utils.StrOrEmpty(r.ContractNumber),
					utils.Truncate(utils.StrOrEmpty(r.CustomerName), 40),
					r.PaymentMethod,
					r.ConfidenceScore,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", repo.DefaultRunLimit, "maximum rows")
	cmd.Flags().StringVar(&method, "method", "", "filter by payment method")
	cmd.Flags().StringVar(&status, "status", "", "filter by run status")
	return cmd
}

func newRunsShowCmd(a *app) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the stored record of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			runs, err := a.requireRuns(cmd)
			if err != nil {
				return err
			}
			run, err := runs.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			rec, err := export.UnmarshalRecord(run.Record)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				b, err := a.exporter().RecordXLSX(rec)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", xlsxPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Workbook written to %s\n", xlsxPath)
			}

			b, err := export.MarshalRecord(rec)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the record as a workbook")
	return cmd
}
