package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/config"
	"github.com/yhkl-dev/SaavnCLI/library"
	"github.com/yhkl-dev/SaavnCLI/logger"
	"github.com/yhkl-dev/SaavnCLI/playback"
	"github.com/yhkl-dev/SaavnCLI/player"
	"github.com/yhkl-dev/SaavnCLI/saavn"
	"github.com/yhkl-dev/SaavnCLI/search"
	"github.com/yhkl-dev/SaavnCLI/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "saavncli: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, loader, err := config.Load(args)
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "saavncli.log")
	}
	logFile, err := logger.OpenFile(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetLevel(cfg.Log.Level)

	loader.Watch(func(next *config.Config) {
		logger.SetLevel(next.Log.Level)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	client := saavn.Init(cfg.Catalog.BaseURL, cfg.Catalog.GetTimeout(), cfg.Catalog.PageSize,
		saavn.WithRetry(cfg.Catalog.MaxRetries, cfg.Catalog.GetRetryBackoff()))
	catalog := library.NewSaavnLibrary(client)

	var connect player.Connector
	switch cfg.Player.Backend {
	case config.BackendBeep:
		connect = player.NewBeepConnector(client.Download)
	default:
		connect = player.NewMPVConnector()
	}
	logger.Info("using %s backend against %s", cfg.Player.Backend, cfg.Catalog.BaseURL)

	errs := apperr.NewHandler()
	controller := playback.New(ctx, connect,
		playback.WithPollInterval(cfg.Player.GetPollInterval()),
		playback.WithConnectTimeout(cfg.Player.GetConnectTimeout()),
		playback.WithErrorHandler(errs))

	pipeline := search.New(ctx, catalog,
		search.WithDebounce(cfg.Search.GetDebounce()),
		search.WithLimit(cfg.Search.ResultLimit),
		search.WithPaging(catalog, cfg.Catalog.PageSize))

	app := ui.NewApp(ctx, cfg, catalog, controller, pipeline, errs)
	runErr := app.Run()

	logger.Info("exiting, releasing resources...")
	cancel()
	pipeline.Close()

	released := make(chan error, 1)
	go func() { released <- controller.Release() }()
	select {
	case err := <-released:
		runErr = multierr.Append(runErr, err)
	case <-time.After(2 * time.Second):
		logger.Warn("player did not shut down in time")
	}

	if runErr != nil {
		logger.Error("saavncli stopped with error: %v", runErr)
	}
	return runErr
}
