package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/pipeline"
	repo "github.com/joseph-ayodele/telkom-contracts/internal/repository"
	"github.com/joseph-ayodele/telkom-contracts/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Parse()

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(2)
	}

	logger := common.NewLogger(cfg.Log, os.Stdout)
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

		if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
			logger.Error("failed to ping store", "error", err)
			os.Exit(1)
		}
		runs = repo.NewRunRepository(store)
	} else {
		logger.Warn("no store configured, extraction runs will not be persisted")
	}

	proc := pipeline.NewProcessor(pipeline.ConfigFrom(cfg.Extract), logger)
	svc := server.NewContractService(proc, runs, export.NewService(logger), logger)

	httpSrv := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: server.NewHTTPServer(svc, server.HTTPConfig{
			CORSOrigins:    cfg.Server.CORSOrigins,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		}, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := server.NewGRPC(svc, cfg.Server.MaxUploadBytes, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
