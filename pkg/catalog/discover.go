package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/konveyor/makerun/pkg/util"
	"github.com/konveyor/makerun/pkg/workspace"
)

// DiscoveryError means the build tool could not be run to dump its database.
// It is distinct from a dump that lists no targets.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover targets in %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discoverer asks the build tool for its database and parses the targets out
// of it
type Discoverer struct {
	// Binary is the build tool
	Binary string

	// Args make the tool print its database without building
	Args []string

	// Timeout bounds the dump; zero means no limit
	Timeout time.Duration

	// Env is added to the inherited environment
	Env []string
}

// NewDiscoverer creates a discoverer for binary with the given dump args
func NewDiscoverer(binary string, args []string, timeout time.Duration) *Discoverer {
	return &Discoverer{
		Binary:  binary,
		Args:    append([]string(nil), args...),
		Timeout: timeout,
	}
}

// Discover runs the tool in dir and returns the targets it knows about
func (d *Discoverer) Discover(ctx context.Context, dir workspace.Directory) (*Catalog, error) {
	dump, err := d.Dump(ctx, dir)
	if err != nil {
		return nil, err
	}

	c := Parse(dump)
	util.GetLogger().V(1).Info("Discovered targets", "dir", dir.Path(), "count", c.Len())
	return c, nil
}

// Dump runs the tool in dir and returns its database as text. A nonzero exit
// status is expected (make -q reports whether targets are up to date) and is
// not an error.
func (d *Discoverer) Dump(ctx context.Context, dir workspace.Directory) (string, error) {
	log := util.GetLogger()
	log.V(1).Info("Dumping build database", "binary", d.Binary, "args", d.Args, "dir", dir.Path())

	execCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, d.Binary, d.Args...)
	cmd.Dir = dir.Path()
	// The section markers are translated under other locales
	cmd.Env = append(append(os.Environ(), d.Env...), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		log.V(1).Info("Build database stderr", "output", stderr.String())
	}

	if err != nil {
		if ctxErr := execCtx.Err(); ctxErr != nil {
			return "", &DiscoveryError{Dir: dir.Path(), Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", &DiscoveryError{Dir: dir.Path(), Err: err}
		}
		log.V(1).Info("Build database dump exited nonzero", "exitCode", exitErr.ExitCode())
	}

	return stdout.String(), nil
}
