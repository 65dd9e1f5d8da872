package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jlux98/SchachMotor-sub001/pkg/config"
	"github.com/jlux98/SchachMotor-sub001/pkg/uci"
)

var cfgPath = flag.String("config", "", "path to a config file")

func main() {
	flag.Parse()
	cfg, err := config.Setup(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup configuration:", err)
		os.Exit(1)
	}
	// stdout belongs to the protocol, the logger writes to stderr
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	controller, err := uci.NewController(cfg.EngineOptions(), cfg.Depth, logger)
	if err != nil {
		logger.Fatalw("Failed to create controller", "error", err)
	}
	logger.Infow("engine ready", "strategy", cfg.Strategy, "depth", cfg.Depth)
	if err := controller.Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		logger.Errorw("controller stopped", "error", err)
	}
}
