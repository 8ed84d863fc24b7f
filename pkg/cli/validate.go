package cli

import (
	"fmt"

	"github.com/konveyor/makerun/pkg/config"
	"github.com/konveyor/makerun/pkg/util"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long:  `Check if a configuration file is valid without running anything.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log := util.GetLogger()

			log.Info("Validating configuration", "file", path)

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if err := config.Validate(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration is valid: %s (tool %s, build file %s)\n", path, cfg.Tool.Binary, cfg.Tool.BuildFile)
			return nil
		},
	}

	return validateCmd
}
