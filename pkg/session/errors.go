package session

import (
	"errors"
	"fmt"

	"github.com/konveyor/makerun/pkg/catalog"
)

// ErrBuildInProgress is returned when a build is requested while the session
// is still running another one and the session rejects concurrent runs
var ErrBuildInProgress = errors.New("a build is already in progress")

// StaleTargetError means the chosen target is no longer in the freshly
// discovered catalog
type StaleTargetError struct {
	Target catalog.Target
	Dir    string
}

func (e *StaleTargetError) Error() string {
	return fmt.Sprintf("target %q is no longer defined in %s", e.Target, e.Dir)
}
