package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var targetsOutput string

// NewTargetsCmd creates the targets command
func NewTargetsCmd() *cobra.Command {
	targetsCmd := &cobra.Command{
		Use:   "targets",
		Short: "List the targets make knows about",
		Long: `Ask make for its database in the resolved working directory and list
the targets it defines, sorted by name. Special targets such as .PHONY and
pattern rules are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(targetsOutput, OutputFormatConsole, OutputFormatJSON, OutputFormatYAML)
			if err != nil {
				return err
			}

			s, cfg, err := newSession()
			if err != nil {
				return err
			}

			wctx, err := workspaceContext()
			if err != nil {
				return err
			}

			c, dir, err := s.DiscoverTargets(cmd.Context(), wctx)
			if err != nil {
				return describeError(err, cfg.Tool.BuildFile)
			}

			out, err := FormatTargets(&TargetList{Dir: dir.Path(), Targets: c.Names()}, format)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
				return fmt.Errorf("failed to write targets: %w", err)
			}
			return nil
		},
	}

	targetsCmd.Flags().StringVarP(&targetsOutput, "output", "o", string(OutputFormatConsole), "Output format (console, json, yaml)")

	return targetsCmd
}
