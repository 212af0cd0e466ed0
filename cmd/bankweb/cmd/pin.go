package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pingate-bank/web/internal/pin"
)

var pinLegacy bool

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "PIN utilities",
}

var pinHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the stored digest for a PIN",
	Long: `Print the pin_hash value for a six-digit PIN, for seeding profiles by hand.
The PIN is prompted for, or read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "PIN: ")
		if err != nil {
			return err
		}
		if err := pin.Validate(p); err != nil {
			return err
		}

		var h pin.Hasher = pin.NewArgon2idHasher(cfg.Argon2)
		if pinLegacy {
			h = &pin.LegacySHA256{Salt: pin.LegacySalt}
		}
		digest, err := h.Hash(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
	pinCmd.AddCommand(pinHashCmd)
	pinHashCmd.Flags().BoolVar(&pinLegacy, "legacy", false, "Print the legacy salted SHA-256 digest")
}
