package runner

import (
	"bytes"
	"strings"
	"sync"
)

// maxLineLength is the longest line kept pending; longer output without a
// newline is delivered in pieces of this size
const maxLineLength = 64 * 1024

// lineSink collects the lines of one run and forwards them to the observer
type lineSink struct {
	mu       sync.Mutex
	runID    string
	observer Observer
	lines    []string
}

func (s *lineSink) emit(stream, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	if s.observer != nil {
		s.observer.OnOutputLine(s.runID, stream, line)
	}
}

func (s *lineSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.lines...)
}

// lineWriter splits one output stream into lines
type lineWriter struct {
	stream string
	sink   *lineSink
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	consumed := 0
	for {
		i := bytes.IndexByte(w.buf[consumed:], '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[consumed : consumed+i])
		w.sink.emit(w.stream, strings.TrimSuffix(line, "\r"))
		consumed += i + 1
	}
	for len(w.buf)-consumed >= maxLineLength {
		w.sink.emit(w.stream, string(w.buf[consumed:consumed+maxLineLength]))
		consumed += maxLineLength
	}
	w.buf = append(w.buf[:0], w.buf[consumed:]...)

	return len(p), nil
}

// flush emits a trailing line that had no newline
func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.sink.emit(w.stream, strings.TrimSuffix(string(w.buf), "\r"))
		w.buf = nil
	}
}
