package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k3dev/k3dev/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long:  "Loads the configuration and reports every hard error and lint warning found in it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result := config.Validate(cfg)
		for _, warning := range result.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", warning)
		}
		for _, valErr := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", valErr)
		}

		if !result.IsValid() {
			return fmt.Errorf("configuration is invalid: %d error(s)", len(result.Errors))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid (%d warning(s))\n", len(result.Warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
