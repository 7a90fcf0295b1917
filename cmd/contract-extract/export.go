package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <record.json>...",
		Short: "Render one or more records as an Excel workbook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs := make([]*entity.ContractRecord, 0, len(args))
			for _, path := range args {
				rec, err := export.ReadRecordFile(path)
				if err != nil {
					return err
				}
				recs = append(recs, rec)
			}

			var (
				b   []byte
				err error
			)
			if len(recs) == 1 {
				b, err = a.exporter().RecordXLSX(recs[0])
			} else {
				b, err = a.exporter().BatchXLSX(recs)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = export.XLSXFileName(contractName(recs))
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s (%d record(s))\n", out, len(recs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx path")
	return cmd
}

func contractName(recs []*entity.ContractRecord) string {
	if len(recs) == 1 && recs[0].Contract.ContractNumber != nil {
		return *recs[0].Contract.ContractNumber
	}
	return "contracts"
}
