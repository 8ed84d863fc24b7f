package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/konveyor/makerun/pkg/catalog"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var pickOutput string

// NewPickCmd creates the pick command
func NewPickCmd() *cobra.Command {
	pickCmd := &cobra.Command{
		Use:   "pick [target]",
		Short: "Pick a discovered target and run it",
		Long: `List the targets make knows about in the resolved working directory,
let you pick one and run it.

When a target is given it is checked against the discovered targets and run
without prompting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(pickOutput, OutputFormatConsole, OutputFormatJSON, OutputFormatYAML, OutputFormatJUnit)
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

			var choice catalog.Target
			if len(args) == 1 {
				choice = catalog.Target(args[0])
			} else {
				c, dir, err := s.DiscoverTargets(cmd.Context(), wctx)
				if err != nil {
					return describeError(err, cfg.Tool.BuildFile)
				}
				if c.Len() == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No targets found in %s\n", dir.Path())
					return nil
				}

				choice, err = selectTarget(c)
				if errors.Is(err, errPromptAborted) {
					return nil
				}
				if err != nil {
					return err
				}
			}

			h, err := s.RunWithDiscoveredTarget(cmd.Context(), wctx, choice, observerFor(cmd, format))
			if err != nil {
				return describeError(err, cfg.Tool.BuildFile)
			}

			return finishRun(cmd, cfg, h, format)
		},
	}

	pickCmd.Flags().StringVarP(&pickOutput, "output", "o", string(OutputFormatConsole), "Report format (console, json, yaml, junit)")

	return pickCmd
}

// selectTarget shows a searchable list of the catalog's targets
func selectTarget(c *catalog.Catalog) (catalog.Target, error) {
	names := c.Names()

	prompt := promptui.Select{
		Label: "Select target",
		Items: names,
		Size:  15,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(names[index]), strings.ToLower(strings.TrimSpace(input)))
		},
	}

	_, result, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return "", errPromptAborted
	}
	if err != nil {
		return "", fmt.Errorf("failed to select target: %w", err)
	}
	return catalog.Target(result), nil
}
