package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jlux98/SchachMotor-sub001/pkg/config"
	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
	"github.com/jlux98/SchachMotor-sub001/pkg/server"
)

var cfgPath = flag.String("config", "", "path to a config file")

func main() {
	flag.Parse()
	cfg, err := config.Setup(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup configuration:", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel, logger)

	srv, err := newHTTPServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to create engine", "error", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("Failed to shut down server", "error", err)
		}
	}()

	logger.Infof("Server is running on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

// newHTTPServer wires the engine configured by cfg into the analysis API
func newHTTPServer(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*http.Server, error) {
	eng, err := engine.NewEngine(cfg.EngineOptions(), logger)
	if err != nil {
		return nil, err
	}
	handler := server.NewHandler(eng, cfg.Depth, logger)
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}, nil
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
