package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// Target is the name of an invokable build target
type Target string

// Valid reports whether the name can be passed to the build tool as a single
// target. Comments, special targets (.PHONY and friends), pattern rules and
// names with whitespace are not valid targets.
func (t Target) Valid() bool {
	name := string(t)
	if name == "" {
		return false
	}
	if !isASCIIAlnum(name[0]) {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return r == '%' || unicode.IsSpace(r)
	})
}

// isASCIIAlnum matches [[:alnum:]] in the C locale
func isASCIIAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func (t Target) String() string {
	return string(t)
}

// Catalog is a set of targets keyed by exact name
type Catalog struct {
	targets map[Target]struct{}
}

// New creates a catalog holding the valid targets among names
func New(names ...string) *Catalog {
	c := &Catalog{targets: make(map[Target]struct{}, len(names))}
	for _, name := range names {
		c.Add(Target(name))
	}
	return c
}

// Add inserts t if it is valid and reports whether it was inserted
func (c *Catalog) Add(t Target) bool {
	if !t.Valid() {
		return false
	}
	if _, ok := c.targets[t]; ok {
		return false
	}
	c.targets[t] = struct{}{}
	return true
}

// Contains reports whether t is in the catalog
func (c *Catalog) Contains(t Target) bool {
	if c == nil {
		return false
	}
	_, ok := c.targets[t]
	return ok
}

// Len returns the number of targets
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.targets)
}

// Targets returns the targets sorted lexically
func (c *Catalog) Targets() []Target {
	if c == nil {
		return nil
	}
	out := make([]Target, 0, len(c.targets))
	for t := range c.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the target names sorted lexically
func (c *Catalog) Names() []string {
	targets := c.Targets()
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return names
}
