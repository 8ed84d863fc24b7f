package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/konveyor/makerun/pkg/util"
)

// waitDelay bounds how long a finished run waits for children that still
// hold its output pipes
const waitDelay = 2 * time.Second

// Runner spawns the build tool
type Runner struct {
	// Binary is the build tool
	Binary string

	// Env is added to the inherited environment
	Env []string

	// EnvFile is a dotenv file, relative to the working directory unless
	// absolute, loaded into the environment when it exists
	EnvFile string

	// Timeout bounds a run; zero means no limit
	Timeout time.Duration
}

// NewRunner creates a runner for binary
func NewRunner(binary string) *Runner {
	return &Runner{Binary: binary}
}

// Handle tracks a started run
type Handle struct {
	runID   string
	cancel  context.CancelFunc
	done    chan struct{}
	outcome *BuildOutcome
}

// RunID returns the id of the run
func (h *Handle) RunID() string {
	return h.runID
}

// Done is closed once the outcome is available
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run has finished and returns its outcome
func (h *Handle) Wait() *BuildOutcome {
	<-h.done
	return h.outcome
}

// Cancel kills the build tool if it is still running. It is safe to call
// more than once and after the run has finished.
func (h *Handle) Cancel() {
	h.cancel()
}

// Run executes the request and blocks until it has finished
func (r *Runner) Run(ctx context.Context, req BuildRequest, observer Observer) *BuildOutcome {
	return r.Start(ctx, req, observer).Wait()
}

// Start spawns the build tool for req and returns without waiting for it.
// Targets are passed as separate arguments, never through a shell. A tool
// that cannot be started yields a SpawnError outcome before any output is
// delivered.
func (r *Runner) Start(ctx context.Context, req BuildRequest, observer Observer) *Handle {
	log := util.GetLogger()

	var runCtx context.Context
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	h := &Handle{
		runID:  uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	outcome := &BuildOutcome{
		RunID:    h.runID,
		Dir:      req.Dir().Path(),
		Targets:  req.Targets(),
		ExitCode: -1,
		Started:  time.Now(),
	}
	sink := &lineSink{runID: h.runID, observer: observer}

	finish := func() {
		outcome.Lines = sink.snapshot()
		outcome.Duration = time.Since(outcome.Started)
		h.outcome = outcome
		cancel()
		LogOutcome(log, outcome)
		close(h.done)
	}

	log.Info("Starting build", "run", h.runID, "binary", r.Binary, "targets", outcome.Targets, "dir", outcome.Dir)

	if req.Dir().IsZero() {
		outcome.Status = SpawnError
		outcome.Err = errors.New("build request has no working directory")
		finish()
		return h
	}

	env, err := r.environ(req.Dir().Path())
	if err != nil {
		outcome.Status = SpawnError
		outcome.Err = err
		finish()
		return h
	}

	cmd := exec.CommandContext(runCtx, r.Binary, outcome.Targets...)
	cmd.Dir = outcome.Dir
	cmd.Env = env
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	stdout := &lineWriter{stream: StreamStdout, sink: sink}
	stderr := &lineWriter{stream: StreamStderr, sink: sink}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			outcome.Status = Canceled
			outcome.Err = ctxErr
		} else {
			outcome.Status = SpawnError
			outcome.Err = fmt.Errorf("failed to start %s: %w", r.Binary, err)
		}
		finish()
		return h
	}

	go func() {
		err := cmd.Wait()
		stdout.flush()
		stderr.flush()
		classify(outcome, cmd, err, runCtx.Err())
		finish()
	}()

	return h
}

// classify sets the terminal status from the result of cmd.Wait
func classify(outcome *BuildOutcome, cmd *exec.Cmd, waitErr, ctxErr error) {
	if cmd.ProcessState != nil {
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case waitErr == nil:
		outcome.Status = Success
	case ctxErr != nil:
		outcome.Status = Canceled
		outcome.Err = ctxErr
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// The tool exited but left children holding its output open
		if cmd.ProcessState != nil && cmd.ProcessState.Success() {
			outcome.Status = Success
		} else {
			outcome.Status = Failure
		}
	default:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			outcome.Err = waitErr
		}
		outcome.Status = Failure
	}
}

// environ builds the child environment
func (r *Runner) environ(dir string) ([]string, error) {
	env := append(os.Environ(), r.Env...)
	if r.EnvFile == "" {
		return env, nil
	}

	path := r.EnvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			util.GetLogger().V(1).Info("Env file not found, skipping", "file", path)
			return env, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}

	return env, nil
}

// LogOutcome logs the outcome details
func LogOutcome(log logr.Logger, outcome *BuildOutcome) {
	kv := []interface{}{
		"run", outcome.RunID,
		"status", outcome.Status.String(),
		"exitCode", outcome.ExitCode,
		"duration", outcome.Duration,
		"lines", len(outcome.Lines),
	}
	if outcome.Err != nil {
		kv = append(kv, "error", outcome.Err.Error())
	}

	log.Info("Build finished", kv...)
}
