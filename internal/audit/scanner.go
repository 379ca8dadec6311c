package audit

import (
	"strings"

	"bennypowers.dev/cssaudit/internal/rules"
)

// PrivatePrefix marks implementation-private custom properties, which are never reported
const PrivatePrefix = "--__"

// Usages maps a custom property name to the context labels that reference
// it. Labels may repeat until the index is finalized.
type Usages map[string][]string

// Merge appends other's labels to u, adding names u doesn't have yet
func (u Usages) Merge(other Usages) {
	for name, labels := range other {
		u[name] = append(u[name], labels...)
	}
}

// Scanner extracts var() references from declarations
type Scanner struct {
	prefixes []string
}

// NewScanner returns a scanner that skips PrivatePrefix and any extra prefixes
func NewScanner(ignorePrefixes ...string) *Scanner {
	prefixes := []string{PrivatePrefix}
	for _, p := range ignorePrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Scanner{prefixes: prefixes}
}

// Ignored reports whether name starts with a skipped prefix
func (s *Scanner) Ignored(name string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Scan records every context for each property referenced by the declarations.
// A property referenced twice in one block gets the contexts twice.
func (s *Scanner) Scan(contexts []string, decls []rules.Declaration) Usages {
	usages := Usages{}
	for _, decl := range decls {
		if !decl.Unresolved() {
			continue
		}
		for _, name := range decl.VarNames() {
			if s.Ignored(name) {
				continue
			}
			if _, ok := usages[name]; !ok {
				usages[name] = []string{}
			}
			usages[name] = append(usages[name], contexts...)
		}
	}
	return usages
}
