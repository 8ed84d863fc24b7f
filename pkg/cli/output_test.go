package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/konveyor/makerun/pkg/runner"
)

func TestLockedWriter_RunsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	out := lockedWriter{mu: &mu, w: &buf}
	errOut := lockedWriter{mu: &mu, w: &buf}
	observer := lineObserver(out, errOut)

	const lines = 200
	var wg sync.WaitGroup
	for run := 0; run < 3; run++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			stream := runner.StreamStdout
			if run == 1 {
				stream = runner.StreamStderr
			}
			for i := 0; i < lines; i++ {
				observer.OnOutputLine(fmt.Sprint(run), stream, fmt.Sprintf("run %d line %d", run, i))
			}
			_ = notify(out, "make", &runner.BuildOutcome{Status: runner.Success})
		}(run)
	}
	wg.Wait()

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != 3*lines+3 {
		t.Fatalf("got %d lines, want %d", len(got), 3*lines+3)
	}
	for _, line := range got {
		if !strings.HasPrefix(line, "run ") && !strings.Contains(line, "make is done") {
			t.Errorf("mangled line %q", line)
		}
	}
}
