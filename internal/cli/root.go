package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/ascend/internal/config"
	"github.com/terraincognita07/ascend/internal/db"
	"github.com/terraincognita07/ascend/internal/logging"
	"gorm.io/gorm"
)

func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "ascend",
		Short: "Personal productivity tracker with XP, streaks and focus insights",
		Long: `Ascend tracks tasks, habits, goals and focus sessions behind a JSON API,
and turns them into XP, levels, achievements and burnout signals.

Configuration is read from an optional TOML file (--config or ASCEND_CONFIG)
and overridden by ASCEND_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("ASCEND_CONFIG"), "path to a TOML config file")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newResetPasswordCommand(&configPath),
		newCorrectXPCommand(&configPath),
	)
	return root
}

func loadRuntime(configPath string) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func openDatabase(dbPath string, logger *log.Logger) (*gorm.DB, func(), error) {
	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	return database, func() { _ = sqlDB.Close() }, nil
}
