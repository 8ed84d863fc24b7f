package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/konveyor/makerun/pkg/runner"
	"github.com/konveyor/makerun/pkg/session"
	"github.com/konveyor/makerun/pkg/util"
	"github.com/konveyor/makerun/pkg/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [target...]",
		Short: "Run targets again whenever the Makefile changes",
		Long: `Run make with the given targets, then run it again every time the
Makefile in the working directory is saved. A save during a build cancels it
and starts over. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := util.GetLogger()

			s, cfg, err := newSession(session.WithCancelPrevious(true))
			if err != nil {
				return err
			}

			wctx, err := workspaceContext()
			if err != nil {
				return err
			}

			dir, err := s.ResolveDirectory(wctx)
			if err != nil {
				return describeError(err, cfg.Tool.BuildFile)
			}

			w, err := watch.New(dir.BuildFile(), cfg.GetWatchDebounce())
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := cmd.Context()
			input := strings.Join(args, " ")

			// Notifications of a finished run and output of the next one share
			// the terminal
			var outMu sync.Mutex
			out := lockedWriter{mu: &outMu, w: cmd.OutOrStdout()}
			errOut := lockedWriter{mu: &outMu, w: cmd.ErrOrStderr()}
			observer := lineObserver(out, errOut)

			var wg sync.WaitGroup
			defer wg.Wait()

			start := func() {
				h, err := s.RunWithTypedTarget(ctx, wctx, input, observer)
				if err != nil {
					fmt.Fprintln(errOut, describeError(err, cfg.Tool.BuildFile))
					return
				}
				wg.Add(1)
				go func(h *runner.Handle) {
					defer wg.Done()
					outcome := h.Wait()
					// A superseded run reports nothing
					if outcome.Status == runner.Canceled && ctx.Err() == nil {
						return
					}
					if err := notify(out, cfg.Tool.Binary, outcome); err != nil {
						log.V(1).Info("Build did not pass", "run", outcome.RunID, "error", err.Error())
					}
				}(h)
			}

			start()
			err = w.Run(ctx, func() {
				fmt.Fprintf(out, "\n%s changed, running again\n", cfg.Tool.BuildFile)
				start()
			})

			if active := s.Active(); active != nil {
				active.Cancel()
			}
			return err
		},
	}

	return watchCmd
}
