package runner

import (
	"reflect"
	"strings"
	"testing"
)

func TestLineWriter(t *testing.T) {
	long := strings.Repeat("x", maxLineLength)

	tests := []struct {
		name   string
		writes []string
		want   []string
	}{
		{
			name:   "split across writes",
			writes: []string{"hel", "lo\nwor", "ld\n"},
			want:   []string{"hello", "world"},
		},
		{
			name:   "crlf",
			writes: []string{"a\r\nb\r\n"},
			want:   []string{"a", "b"},
		},
		{
			name:   "trailing line without newline",
			writes: []string{"a\nb"},
			want:   []string{"a", "b"},
		},
		{
			name:   "no newline is cut at the limit",
			writes: []string{long[:10], long[10:], "tail"},
			want:   []string{long, "tail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &lineSink{}
			w := &lineWriter{stream: StreamStdout, sink: sink}
			for _, s := range tt.writes {
				if n, err := w.Write([]byte(s)); err != nil || n != len(s) {
					t.Fatalf("Write() = %d, %v", n, err)
				}
			}
			if len(w.buf) >= maxLineLength {
				t.Errorf("pending buffer is %d bytes, want less than %d", len(w.buf), maxLineLength)
			}
			w.flush()

			if got := sink.snapshot(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %d %q..., want %d lines", len(got), firstBytes(got), len(tt.want))
			}
		})
	}
}

func firstBytes(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) > 20 {
			l = l[:20]
		}
		out[i] = l
	}
	return out
}
