package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quill/internal/daemon"
	"quill/internal/logging"
	"quill/internal/pipeline"
	"quill/internal/preflight"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/workflow"
)

// newDaemonRunCommand runs the daemon in the foreground. It is the same
// wiring as the quilld binary, reachable from the CLI for systemd units
// and interactive debugging.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the transcription daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			for _, result := range preflight.RunAll(signalCtx, cfg) {
				if !result.Passed {
					logger.Warn("preflight check failed",
						logging.String("check", result.Name),
						logging.String("detail", result.Detail))
				}
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			caps := pipeline.DefaultCapabilities(cfg)
			stages := pipeline.Stages(cfg, store, caps)
			manager := workflow.NewManager(cfg, store, logger, nil, progress.NewRegistry(), stages)

			d, err := daemon.New(cfg, store, logger, manager)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			if addr := d.APIAddr(); addr != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "API listening on %s\n", addr)
			}

			<-signalCtx.Done()
			d.Stop()
			return nil
		},
	}
}
