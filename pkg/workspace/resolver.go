package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/konveyor/makerun/pkg/util"
)

// ErrDirectoryNotFound is returned when no candidate directory contains the
// build file
var ErrDirectoryNotFound = errors.New("no directory contains the build file")

// Context is what the host knows about the user's workspace
type Context struct {
	// CurrentFile is the file being edited, empty when there is none
	CurrentFile string

	// Roots are the workspace root directories, in priority order
	Roots []string
}

// Directory is a working directory that contained the build file when it was
// resolved
type Directory struct {
	path      string
	buildFile string
}

// Path returns the directory path
func (d Directory) Path() string {
	return d.path
}

// BuildFile returns the path of the build file inside the directory
func (d Directory) BuildFile() string {
	return filepath.Join(d.path, d.buildFile)
}

// IsZero reports whether d was never resolved
func (d Directory) IsZero() bool {
	return d.path == ""
}

func (d Directory) String() string {
	return d.path
}

// Resolver picks the directory most likely to hold the build file
type Resolver struct {
	BuildFile string
}

// NewResolver creates a resolver for the given build file name
func NewResolver(buildFile string) *Resolver {
	return &Resolver{BuildFile: buildFile}
}

// Resolve returns the current file's directory when it contains the build
// file, otherwise the first root that does. Only immediate children are
// probed.
func (r *Resolver) Resolve(wctx Context) (Directory, error) {
	log := util.GetLogger()

	var probed []string

	if wctx.CurrentFile != "" {
		dir := filepath.Dir(wctx.CurrentFile)
		probed = append(probed, dir)
		if r.hasBuildFile(dir) {
			log.V(1).Info("Resolved directory from current file", "dir", dir)
			return Directory{path: dir, buildFile: r.BuildFile}, nil
		}
	}

	for _, root := range wctx.Roots {
		if root == "" {
			continue
		}
		probed = append(probed, root)
		if r.hasBuildFile(root) {
			log.V(1).Info("Resolved directory from workspace root", "dir", root)
			return Directory{path: root, buildFile: r.BuildFile}, nil
		}
	}

	return Directory{}, fmt.Errorf("%w: %s not found in %v", ErrDirectoryNotFound, r.BuildFile, probed)
}

// hasBuildFile reports whether dir has a regular build file entry
func (r *Resolver) hasBuildFile(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, r.BuildFile))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
