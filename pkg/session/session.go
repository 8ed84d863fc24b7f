package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/konveyor/makerun/pkg/catalog"
	"github.com/konveyor/makerun/pkg/config"
	"github.com/konveyor/makerun/pkg/runner"
	"github.com/konveyor/makerun/pkg/util"
	"github.com/konveyor/makerun/pkg/workspace"
)

// Resolver finds the working directory
type Resolver interface {
	Resolve(wctx workspace.Context) (workspace.Directory, error)
}

// Discoverer lists the targets of a directory
type Discoverer interface {
	Discover(ctx context.Context, dir workspace.Directory) (*catalog.Catalog, error)
}

// Starter spawns builds
type Starter interface {
	Start(ctx context.Context, req runner.BuildRequest, observer runner.Observer) *runner.Handle
}

// Session ties directory resolution, target discovery and build runs
// together. It runs at most one build at a time. Nothing is cached between
// calls.
type Session struct {
	resolver   Resolver
	discoverer Discoverer
	starter    Starter

	// cancelPrevious makes a new run cancel the active one instead of
	// failing with ErrBuildInProgress
	cancelPrevious bool

	mu     sync.Mutex
	active *runner.Handle
}

// Option configures a Session
type Option func(*Session)

// WithCancelPrevious sets whether a new run cancels the active one
func WithCancelPrevious(cancel bool) Option {
	return func(s *Session) {
		s.cancelPrevious = cancel
	}
}

// WithResolver replaces the directory resolver
func WithResolver(r Resolver) Option {
	return func(s *Session) {
		s.resolver = r
	}
}

// WithDiscoverer replaces the target discoverer
func WithDiscoverer(d Discoverer) Option {
	return func(s *Session) {
		s.discoverer = d
	}
}

// WithStarter replaces the build runner
func WithStarter(st Starter) Option {
	return func(s *Session) {
		s.starter = st
	}
}

// New creates a session from cfg
func New(cfg *config.Config, opts ...Option) *Session {
	r := runner.NewRunner(cfg.Tool.Binary)
	r.EnvFile = cfg.Build.EnvFile
	r.Timeout = cfg.GetBuildTimeout()

	s := &Session{
		resolver:       workspace.NewResolver(cfg.Tool.BuildFile),
		discoverer:     catalog.NewDiscoverer(cfg.Tool.Binary, cfg.Discovery.Args, cfg.GetDiscoveryTimeout()),
		starter:        r,
		cancelPrevious: cfg.Build.OnBusy == config.OnBusyCancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseTargetInput splits typed input into targets. Blank input means the
// default target and yields no targets at all.
func ParseTargetInput(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return []string{}
	}
	return strings.Fields(trimmed)
}

// ResolveDirectory finds the working directory for wctx
func (s *Session) ResolveDirectory(wctx workspace.Context) (workspace.Directory, error) {
	return s.resolver.Resolve(wctx)
}

// DiscoverTargets resolves the working directory and lists its targets
func (s *Session) DiscoverTargets(ctx context.Context, wctx workspace.Context) (*catalog.Catalog, workspace.Directory, error) {
	dir, err := s.ResolveDirectory(wctx)
	if err != nil {
		return nil, workspace.Directory{}, err
	}

	c, err := s.discoverer.Discover(ctx, dir)
	if err != nil {
		return nil, dir, err
	}
	return c, dir, nil
}

// RunWithTypedTarget runs the whitespace separated targets in input, or the
// default target when input is blank
func (s *Session) RunWithTypedTarget(ctx context.Context, wctx workspace.Context, input string, observer runner.Observer) (*runner.Handle, error) {
	dir, err := s.ResolveDirectory(wctx)
	if err != nil {
		return nil, err
	}

	return s.start(ctx, runner.NewBuildRequest(dir, ParseTargetInput(input)...), observer)
}

// RunWithDiscoveredTarget runs a target picked from a catalog. The catalog is
// discovered again first; a target that disappeared in the meantime is a
// *StaleTargetError.
func (s *Session) RunWithDiscoveredTarget(ctx context.Context, wctx workspace.Context, choice catalog.Target, observer runner.Observer) (*runner.Handle, error) {
	if err := s.checkBusy(); err != nil {
		return nil, err
	}

	c, dir, err := s.DiscoverTargets(ctx, wctx)
	if err != nil {
		return nil, err
	}

	if !c.Contains(choice) {
		return nil, &StaleTargetError{Target: choice, Dir: dir.Path()}
	}

	return s.start(ctx, runner.NewBuildRequest(dir, string(choice)), observer)
}

// Active returns the running build, or nil
func (s *Session) Active() *runner.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || isDone(s.active) {
		return nil
	}
	return s.active
}

// checkBusy fails with ErrBuildInProgress when a build is running and the
// session does not cancel it. start checks again under the same lock.
func (s *Session) checkBusy() error {
	if s.cancelPrevious {
		return nil
	}
	if active := s.Active(); active != nil {
		return fmt.Errorf("%w: run %s", ErrBuildInProgress, active.RunID())
	}
	return nil
}

// start launches req unless another build is running
func (s *Session) start(ctx context.Context, req runner.BuildRequest, observer runner.Observer) (*runner.Handle, error) {
	log := util.GetLogger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.active; prev != nil && !isDone(prev) {
		if !s.cancelPrevious {
			return nil, fmt.Errorf("%w: run %s", ErrBuildInProgress, prev.RunID())
		}
		log.Info("Canceling previous build", "run", prev.RunID())
		prev.Cancel()
		// The previous run's output must be complete before the next starts
		prev.Wait()
	}

	s.active = s.starter.Start(ctx, req, observer)
	return s.active, nil
}

func isDone(h *runner.Handle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
