package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/logging"
	"quill/internal/pipeline"
	"quill/internal/preflight"
	"quill/internal/progress"
	"quill/internal/queue"
	"quill/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, result := range preflight.RunAll(ctx, cfg) {
		if !result.Passed {
			logger.Warn("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
		}
	}
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		if !dep.Available && !dep.Optional {
			logger.Warn("external tool missing",
				logging.String("tool", dep.Name),
				logging.String("detail", dep.Detail))
		}
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}
	defer store.Close()

	caps := pipeline.DefaultCapabilities(cfg)
	stages := pipeline.Stages(cfg, store, caps)
	manager := workflow.NewManager(cfg, store, logger, nil, progress.NewRegistry(), stages)

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}
	if addr := d.APIAddr(); addr != "" {
		logger.Info("api listening", logging.String("addr", addr))
	}

	<-ctx.Done()
	logger.Info("quilld shutting down")
	d.Stop()
}
