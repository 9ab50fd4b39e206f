package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/internal/config"
	"github.com/actionsum/focustime/internal/daemon"
	"github.com/actionsum/focustime/internal/logging"
	"github.com/actionsum/focustime/internal/reporter"
	"github.com/actionsum/focustime/internal/tracker"
	"github.com/actionsum/focustime/pkg/detector"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "focustime"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   appName,
		Short: "Per-window focus time tracker",
		Long: `focustime polls the focused window title and prints how long each
title has held focus since start.

` + config.Usage(),
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx)
		},
	}
}

func run(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	log, err := logging.New(logging.FromAppConfig(cfg.Log))
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer func() { _ = log.Sync() }()
	logger := log.Logger

	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := dm.Release(); err != nil {
			logger.Warn("failed to remove PID file", zap.Error(err))
		}
	}()

	probe, err := detector.New(cfg.Probe.Backend, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create active window probe")
	}
	defer func() {
		if err := probe.Close(); err != nil {
			logger.Warn("failed to close probe", zap.Error(err))
		}
	}()

	tr := tracker.New(probe, tracker.WithLogger(logger.Named("tracker")))
	svc := tracker.NewService(cfg, tr, logger.Named("tracker"))
	rep := reporter.New(cfg, tr, os.Stdout, logger.Named("reporter"))

	logger.Info("focustime started",
		zap.String("version", version),
		zap.Int("pid", os.Getpid()),
		zap.String("config", cfg.String()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("tracker stopped with error", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := rep.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("reporter stopped with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("received shutdown signal")
	svc.Stop()
	wg.Wait()

	tr.Cleanup()
	logger.Info("focustime stopped")
	return nil
}
