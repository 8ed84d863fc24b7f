package catalog

import (
	"strings"
)

const (
	// regionStart opens the files section of a make database dump
	regionStart = "# File"

	// regionEnd closes the database dump
	regionEnd = "# Finished Make data base"
)

// Parse extracts the target names from the plain-text database printed by
// make -p. Only the files section is considered. Each blank-line separated
// block there names a target before its first colon. A dump without the
// section yields an empty catalog.
func Parse(dump string) *Catalog {
	c := New()

	lines := strings.Split(strings.ReplaceAll(dump, "\r\n", "\n"), "\n")

	end := -1
	for i, line := range lines {
		if strings.HasPrefix(line, regionEnd) {
			end = i
			break
		}
	}
	if end < 0 {
		return c
	}

	// Included makefiles echo their own headers; the last one before the end
	// marker starts the section that counts.
	start := -1
	for i := end - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], regionStart) {
			start = i
			break
		}
	}
	if start < 0 {
		return c
	}

	inBlock := false
	for _, line := range lines[start+1 : end] {
		if strings.TrimSpace(line) == "" {
			inBlock = false
			continue
		}
		if inBlock {
			continue
		}
		inBlock = true
		c.Add(Target(candidate(line)))
	}

	return c
}

// candidate returns the part of a block's first line before its first colon.
// Leading whitespace is kept so that recipe lines never pass as targets.
func candidate(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimRight(line, " \t")
}
