package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return RunMigrateCommand(cmd.OutOrStdout(), cfg.Database.Path, logger)
		},
	}
}

// RunMigrateCommand opens the database, which applies every embedded
// migration not yet recorded.
func RunMigrateCommand(out io.Writer, dbPath string, logger *log.Logger) error {
	_, closeDatabase, err := openDatabase(dbPath, logger)
	if err != nil {
		return err
	}
	defer closeDatabase()

	color.New(color.FgGreen).Fprintln(out, "✓ Database is up to date")
	fmt.Fprintf(out, "  %s\n", color.New(color.Faint).Sprint(dbPath))
	return nil
}
