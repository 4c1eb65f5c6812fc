package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"switchboard/internal/analysis"
	"switchboard/internal/callrecord"
	"switchboard/internal/config"
	"switchboard/internal/costtrack"
	"switchboard/internal/daemon"
	"switchboard/internal/logging"
	"switchboard/internal/notify"
	"switchboard/internal/queue"
	"switchboard/internal/scrub"
	"switchboard/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run and inspect the background pipeline",
	}

	daemonCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the pipeline daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx)
		},
	})

	return daemonCmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext) error {
	if ctx == nil {
		return fmt.Errorf("command context is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "switchboard.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager, err := buildPipelineManager(cfg, store)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("switchboard daemon shutting down")
	d.Stop()
	return nil
}

// buildPipelineManager wires the five stage handlers in execution order.
func buildPipelineManager(cfg *config.Config, store *queue.Store) (*workflow.Manager, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("config and store are required")
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	manager := workflow.NewManager(cfg, store, logger)
	manager.ConfigureStages(workflow.StageSet{
		Recorder:    callrecord.New(cfg, store, logger),
		Scrubber:    scrub.New(cfg, store, logger),
		Analyzer:    analysis.New(cfg, store, logger),
		CostTracker: costtrack.New(cfg, store, logger),
		Notifier:    notify.New(cfg, store, logger),
	})
	return manager, nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
