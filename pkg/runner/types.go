package runner

import (
	"time"

	"github.com/konveyor/makerun/pkg/workspace"
)

// Status is the terminal state of a build run
type Status int

const (
	// Success means the tool exited with code 0
	Success Status = iota

	// Failure means the tool ran and exited nonzero
	Failure

	// SpawnError means the tool could not be started at all
	SpawnError

	// Canceled means the run was canceled or timed out
	Canceled
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case SpawnError:
		return "spawn-error"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Output streams of the build tool
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Observer receives output lines while a build is running. Calls for one run
// never overlap, and lines of one stream arrive in order.
type Observer interface {
	OnOutputLine(runID, stream, line string)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(runID, stream, line string)

// OnOutputLine calls f
func (f ObserverFunc) OnOutputLine(runID, stream, line string) {
	f(runID, stream, line)
}

// BuildRequest is one invocation of the build tool. It is immutable.
type BuildRequest struct {
	dir     workspace.Directory
	targets []string
}

// NewBuildRequest creates a request for targets in dir. No targets means the
// tool's default target. Blank target names are dropped.
func NewBuildRequest(dir workspace.Directory, targets ...string) BuildRequest {
	kept := make([]string, 0, len(targets))
	for _, t := range targets {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return BuildRequest{dir: dir, targets: kept}
}

// Dir returns the working directory
func (r BuildRequest) Dir() workspace.Directory {
	return r.dir
}

// Targets returns a copy of the target list
func (r BuildRequest) Targets() []string {
	return append([]string{}, r.targets...)
}

// BuildOutcome contains the result of a finished build run
type BuildOutcome struct {
	// RunID identifies the run in logs and observer calls
	RunID string

	// Dir where the tool ran
	Dir string

	// Targets passed to the tool
	Targets []string

	// Status is the terminal state
	Status Status

	// ExitCode from the process, -1 when it never exited normally
	ExitCode int

	// Err is the cause for SpawnError and Canceled
	Err error

	// Lines is the output in arrival order, stdout and stderr interleaved
	Lines []string

	// Started is when the run began
	Started time.Time

	// Duration of the run
	Duration time.Duration
}

// Succeeded reports whether the build passed
func (o *BuildOutcome) Succeeded() bool {
	return o.Status == Success
}
