package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
)

type app struct {
	configPath string
	logLevel   string
	storeDSN   string
	logOut     io.Writer // stderr unless set; stdout carries the record

	cfg    *common.Config
	logger *slog.Logger
	store  *repo.Store
}

func newRootCmd() *cobra.Command {
	return newAppCmd(&app{logOut: os.Stderr})
}

func newAppCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "contract-extract",
		Short:         "Extract structured contract data from layout-engine JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.store.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.storeDSN, "store", "", "store DSN (overrides STORE_DSN)")

	root.AddCommand(
		newPage1Cmd(a),
		newMerge2Cmd(a),
		newExportCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := common.LoadConfigFile(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.storeDSN != "" {
		cfg.Store.DSN = a.storeDSN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if a.logOut == nil {
		a.logOut = os.Stderr
	}
	a.logger = common.NewLogger(cfg.Log, a.logOut)
	slog.SetDefault(a.logger)
	return nil
}

// runs opens the store on first use; it returns nil when no DSN is configured.
func (a *app) runs(ctx context.Context) (repo.RunRepository, error) {
	if a.cfg.Store.DSN == "" {
		return nil, nil
	}
	if a.store == nil {
		store, err := repo.Open(ctx, repo.ConfigFrom(a.cfg.Store), a.logger)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	return repo.NewRunRepository(a.store), nil
}

func (a *app) processor() *pipeline.Processor {
	return pipeline.NewProcessor(pipeline.ConfigFrom(a.cfg.Extract), a.logger)
}

func (a *app) exporter() *export.Service {
	return export.NewService(a.logger)
}
