package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pingate-bank/web/internal/config"
	"pingate-bank/web/internal/logging"
)

var (
	configPath string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bankweb",
	Short: "PinGate Bank web server",
	Long: `bankweb serves the PinGate Bank web app: identity sign-in, the PIN gate
in front of the customer pages, and the admin console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("BANKWEB_CONFIG")
		}
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $BANKWEB_CONFIG)")
}
