package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/ascend/internal/db"
	"github.com/terraincognita07/ascend/internal/services"
	"gorm.io/gorm"
)

func newCorrectXPCommand(configPath *string) *cobra.Command {
	var (
		email string
		xp    int64
	)

	command := &cobra.Command{
		Use:   "correct-xp",
		Short: "Set a user's XP total and recompute the level",
		Long: `correct-xp is the administrative path for XP corrections. It is the only
operation that can lower a user's XP; the level is recomputed from the new total.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return RunCorrectXPCommand(cmd.OutOrStdout(), cfg.Database.Path, email, xp, logger)
		},
	}
	command.Flags().StringVar(&email, "email", "", "account email")
	command.Flags().Int64Var(&xp, "xp", 0, "new XP total (>= 0)")
	_ = command.MarkFlagRequired("email")
	_ = command.MarkFlagRequired("xp")
	return command
}

func RunCorrectXPCommand(out io.Writer, dbPath string, email string, xp int64, logger *log.Logger) error {
	normalizedEmail := services.NormalizeAuthEmail(email)
	if normalizedEmail == "" {
		return errors.New("a valid email is required")
	}

	database, closeDatabase, err := openDatabase(dbPath, logger)
	if err != nil {
		return err
	}
	defer closeDatabase()

	repositories := db.NewRepositories(database)
	user, err := repositories.Users.FindByNormalizedEmail(normalizedEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	gamification := services.NewGamificationService(repositories.Users, repositories.Achievements, repositories.Habits, logger)
	award, err := gamification.CorrectXP(user.ID, xp)
	if err != nil {
		return fmt.Errorf("correct xp: %w", err)
	}

	color.New(color.FgGreen).Fprintf(out, "✓ XP corrected for %s\n", normalizedEmail)
	fmt.Fprintf(out, "XP: %d -> %d, level: %d -> %d\n", user.XP, award.XP, user.Level, award.Level)
	return nil
}
