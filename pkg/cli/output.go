package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/konveyor/makerun/pkg/catalog"
	"github.com/konveyor/makerun/pkg/runner"
	"github.com/konveyor/makerun/pkg/session"
	"github.com/konveyor/makerun/pkg/workspace"
)

// lineObserver prints build output as it arrives. Stdout lines go to out
// unless the report itself is written there.
func lineObserver(out, errOut io.Writer) runner.Observer {
	return runner.ObserverFunc(func(runID, stream, line string) {
		if stream == runner.StreamStderr {
			fmt.Fprintln(errOut, line)
			return
		}
		fmt.Fprintln(out, line)
	})
}

// lockedWriter serializes writes that share mu. Each Fprintln above is a
// single Write, so lines from different runs never interleave.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// notify prints the pass/fail line for a finished build and returns an error
// when the build did not pass
func notify(w io.Writer, binary string, outcome *runner.BuildOutcome) error {
	tool := filepath.Base(binary)

	switch outcome.Status {
	case runner.Success:
		fmt.Fprintln(w, color.GreenString("✓ %s is done", tool))
		return nil
	case runner.Failure:
		fmt.Fprintln(w, color.RedString("✗ %s failed", tool))
		return fmt.Errorf("%s exited with code %d", tool, outcome.ExitCode)
	case runner.SpawnError:
		fmt.Fprintln(w, color.RedString("✗ %s could not be started", tool))
		return fmt.Errorf("failed to start %s: %w", tool, outcome.Err)
	case runner.Canceled:
		fmt.Fprintln(w, color.YellowString("⊘ %s was canceled", tool))
		return fmt.Errorf("%s canceled: %w", tool, outcome.Err)
	default:
		return fmt.Errorf("unknown build status %d", outcome.Status)
	}
}

// describeError turns session errors into messages for the user
func describeError(err error, buildFile string) error {
	var discoveryErr *catalog.DiscoveryError
	var staleErr *session.StaleTargetError

	switch {
	case errors.Is(err, workspace.ErrDirectoryNotFound):
		return fmt.Errorf("no %s found next to --file or in any --root; point makerun at a different folder: %w", buildFile, err)
	case errors.As(err, &discoveryErr):
		return fmt.Errorf("could not list targets, is the build tool installed? %w", err)
	case errors.As(err, &staleErr):
		return fmt.Errorf("target %q is not defined anymore, list targets again: %w", staleErr.Target, err)
	case errors.Is(err, session.ErrBuildInProgress):
		return fmt.Errorf("wait for the running build to finish: %w", err)
	default:
		return err
	}
}
