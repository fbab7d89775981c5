package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/ascend/internal/api"
	"github.com/terraincognita07/ascend/internal/textgen"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	location := cfg.Location()
	time.Local = location

	database, closeDatabase, err := openDatabase(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer closeDatabase()

	var cache textgen.Cache = textgen.NoopCache{}
	if cfg.TextGen.URL != "" && cfg.TextGen.CacheMaxEntries > 0 {
		ristrettoCache, err := textgen.NewRistrettoCache(cfg.TextGen.CacheMaxEntries, cfg.TextGen.CacheTTL)
		if err != nil {
			return fmt.Errorf("textgen cache init failed: %w", err)
		}
		defer ristrettoCache.Close()
		cache = ristrettoCache
	}
	generator := textgen.NewClient(textgen.Options{
		URL:       cfg.TextGen.URL,
		Token:     cfg.TextGen.Token,
		Timeout:   cfg.TextGen.Timeout,
		MaxTokens: cfg.TextGen.MaxTokens,
	}, cache, logger)

	handler, err := api.NewHandler(database, api.Options{
		SecretKey: cfg.SecretKey(),
		TokenTTL:  cfg.Server.TokenTTL,
		Location:  location,
		Logger:    logger,
		Generator: generator,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler)

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("Ascend listening",
		"addr", cfg.Address(),
		"db", cfg.Database.Path,
		"tz", location.String(),
		"textgen", generator.Enabled(),
	)
	if err := app.Listen(cfg.Address()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
