package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/config"
)

var (
	adminEmail     string
	adminFirstName string
	adminLastName  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin identity in the configured store",
	Long: `Create an admin identity. The password is prompted for without echo,
or read from the first line of stdin when stdin is not a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreBackend == config.StoreMemory {
			return errors.New("admin create needs a persistent store (postgres or bolt)")
		}

		password, err := promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := auth.NewService(st, auth.Options{JWTSecret: cfg.JWTSecret, Logger: logger})
		if err != nil {
			return err
		}
		id, _, err := svc.CreateAdmin(cmd.Context(), auth.SignUpRequest{
			Email:     adminEmail,
			Password:  password,
			FirstName: adminFirstName,
			LastName:  adminLastName,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", id.Email, id.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	adminCreateCmd.Flags().StringVar(&adminFirstName, "first-name", "Admin", "First name")
	adminCreateCmd.Flags().StringVar(&adminLastName, "last-name", "User", "Last name")
	_ = adminCreateCmd.MarkFlagRequired("email")
}
