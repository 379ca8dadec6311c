package audit_test

import (
	"testing"

	"bennypowers.dev/cssaudit/internal/audit"
	"bennypowers.dev/cssaudit/internal/parser/css"
	"bennypowers.dev/cssaudit/internal/rules"
	"github.com/stretchr/testify/assert"
)

// decl builds a declaration the way the CSS parser does
func decl(property, value string) rules.Declaration {
	d := rules.Declaration{Property: property, Raw: value}
	if tokens := css.Tokenize(value); css.HasVar(tokens) {
		d.Tokens = tokens
	}
	return d
}

func TestScan(t *testing.T) {
	scanner := audit.NewScanner()

	t.Run("one label per context", func(t *testing.T) {
		usages := scanner.Scan([]string{".a", ".b"}, []rules.Declaration{decl("color", "var(--x)")})
		assert.Equal(t, audit.Usages{"--x": {".a", ".b"}}, usages)
	})

	t.Run("repeats are kept", func(t *testing.T) {
		usages := scanner.Scan([]string{".a"}, []rules.Declaration{
			decl("border", "var(--w) solid var(--w)"),
		})
		assert.Equal(t, audit.Usages{"--w": {".a", ".a"}}, usages)
	})

	t.Run("fallback references", func(t *testing.T) {
		usages := scanner.Scan([]string{".a"}, []rules.Declaration{decl("color", "var(--x, var(--y))")})
		assert.Equal(t, audit.Usages{"--x": {".a"}, "--y": {".a"}}, usages)
	})

	t.Run("private prefix is skipped", func(t *testing.T) {
		usages := scanner.Scan([]string{".a"}, []rules.Declaration{decl("color", "var(--__internal)")})
		assert.Empty(t, usages)
	})

	t.Run("resolved declarations are ignored", func(t *testing.T) {
		usages := scanner.Scan([]string{".a"}, []rules.Declaration{decl("color", "red")})
		assert.Empty(t, usages)
	})

	t.Run("no declarations", func(t *testing.T) {
		assert.Empty(t, scanner.Scan([]string{".a"}, nil))
	})
}

func TestScannerIgnorePrefixes(t *testing.T) {
	scanner := audit.NewScanner("--rh-", "")

	assert.True(t, scanner.Ignored("--__x"))
	assert.True(t, scanner.Ignored("--rh-color"))
	assert.False(t, scanner.Ignored("--brand"))

	usages := scanner.Scan([]string{".a"}, []rules.Declaration{
		decl("color", "var(--rh-color, var(--brand))"),
	})
	assert.Equal(t, audit.Usages{"--brand": {".a"}}, usages)
}

func TestUsagesMerge(t *testing.T) {
	u := audit.Usages{"--a": {".x"}}
	u.Merge(audit.Usages{"--a": {".x", ".y"}, "--b": {".z"}})

	assert.Equal(t, audit.Usages{
		"--a": {".x", ".x", ".y"},
		"--b": {".z"},
	}, u)
}
