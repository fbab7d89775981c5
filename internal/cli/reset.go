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
)

func newResetPasswordCommand(configPath *string) *cobra.Command {
	var email string

	command := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace a user's password with a random temporary one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return RunResetPasswordCommand(cmd.OutOrStdout(), cfg.Database.Path, email, logger)
		},
	}
	command.Flags().StringVar(&email, "email", "", "account email")
	_ = command.MarkFlagRequired("email")
	return command
}

func RunResetPasswordCommand(out io.Writer, dbPath string, email string, logger *log.Logger) error {
	if services.NormalizeAuthEmail(email) == "" {
		return errors.New("a valid email is required")
	}

	database, closeDatabase, err := openDatabase(dbPath, logger)
	if err != nil {
		return err
	}
	defer closeDatabase()

	temporaryPassword, err := services.NewAuthService(db.NewUserRepository(database), logger).ResetPassword(email)
	if errors.Is(err, services.ErrUserNotFound) {
		return fmt.Errorf("user %s not found", services.NormalizeAuthEmail(email))
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	color.New(color.FgGreen).Fprintln(out, "✓ Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "Ask the user to change it after signing in.")
	return nil
}
