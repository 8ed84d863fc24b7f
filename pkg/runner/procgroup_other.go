//go:build !unix

package runner

import "os/exec"

// killProcessGroup is a no-op; cancellation only kills the tool itself
func killProcessGroup(cmd *exec.Cmd) {}
