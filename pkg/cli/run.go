package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/konveyor/makerun/pkg/config"
	"github.com/konveyor/makerun/pkg/runner"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	runPrompt bool
	runOutput string
)

// errPromptAborted means the user dismissed a prompt
var errPromptAborted = errors.New("prompt aborted")

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [target...]",
		Short: "Run make with the given targets",
		Long: `Run make in the resolved working directory.

Targets are separated by whitespace; no targets runs the default target.
With --prompt the targets are read interactively instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(runOutput, OutputFormatConsole, OutputFormatJSON, OutputFormatYAML, OutputFormatJUnit)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			if runPrompt {
				input, err = promptTargets()
				if errors.Is(err, errPromptAborted) {
					return nil
				}
				if err != nil {
					return err
				}
			}

			s, cfg, err := newSession()
			if err != nil {
				return err
			}

			wctx, err := workspaceContext()
			if err != nil {
				return err
			}

			h, err := s.RunWithTypedTarget(cmd.Context(), wctx, input, observerFor(cmd, format))
			if err != nil {
				return describeError(err, cfg.Tool.BuildFile)
			}

			return finishRun(cmd, cfg, h, format)
		},
	}

	runCmd.Flags().BoolVarP(&runPrompt, "prompt", "i", false, "Ask for the targets interactively")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", string(OutputFormatConsole), "Report format (console, json, yaml, junit)")

	return runCmd
}

// promptTargets asks for a whitespace separated target list
func promptTargets() (string, error) {
	prompt := promptui.Prompt{
		Label: "target",
	}

	result, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return "", errPromptAborted
	}
	if err != nil {
		return "", fmt.Errorf("failed to read target: %w", err)
	}
	return result, nil
}

// observerFor streams build output to stdout, or to stderr when stdout
// carries a machine readable report
func observerFor(cmd *cobra.Command, format OutputFormat) runner.Observer {
	out := cmd.OutOrStdout()
	if format != OutputFormatConsole {
		out = cmd.ErrOrStderr()
	}
	return lineObserver(out, cmd.ErrOrStderr())
}

// finishRun waits for the build, writes the report and the notification
func finishRun(cmd *cobra.Command, cfg *config.Config, h *runner.Handle, format OutputFormat) error {
	outcome := h.Wait()

	notifyOut := cmd.OutOrStdout()
	if format != OutputFormatConsole {
		report, err := FormatOutcome(outcome, format)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		notifyOut = cmd.ErrOrStderr()
	}

	return notify(notifyOut, cfg.Tool.Binary, outcome)
}
