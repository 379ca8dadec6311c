package audit_test

import (
	"errors"
	"io/fs"
	"testing"

	"bennypowers.dev/cssaudit/internal/audit"
	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser"
	"bennypowers.dev/cssaudit/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// files is an in-memory ReadFunc
type files map[string]string

func (f files) read(path string) ([]byte, error) {
	content, ok := f[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(content), nil
}

func run(t *testing.T, f files, paths ...string) audit.Index {
	t.Helper()
	index, err := audit.Run(paths, f.read, audit.Options{})
	require.NoError(t, err)
	return index
}

func TestRunScenarios(t *testing.T) {
	t.Run("two selectors share a property", func(t *testing.T) {
		index := run(t, files{"a.css": `.b { color: var(--x); }
.a { color: var(--x); }`}, "a.css")

		assert.Equal(t, audit.Index{{Name: "--x", Labels: []string{".a", ".b"}}}, index)
	})

	t.Run("private properties are filtered", func(t *testing.T) {
		index := run(t, files{"a.css": `.a { color: var(--__internal); }`}, "a.css")
		assert.Empty(t, index)
	})

	t.Run("media prefix", func(t *testing.T) {
		index := run(t, files{"a.css": `@media (min-width: 40rem) { .a { width: var(--w); } }`}, "a.css")
		assert.Equal(t, audit.Index{{Name: "--w", Labels: []string{"@media (min-width: 40rem)\n    .a"}}}, index)
	})

	t.Run("scope is reported and skipped", func(t *testing.T) {
		buf := captureLog(t, log.LevelInfo)

		index := run(t, files{"a.css": `@scope {
  .a { color: var(--x); }
}`}, "a.css")

		assert.Empty(t, index)
		assert.Equal(t, "[css-audit] WARN: a.css:1: @scope is not supported\n", buf.String())
	})

	t.Run("scope with a root is reported and skipped", func(t *testing.T) {
		buf := captureLog(t, log.LevelInfo)

		index := run(t, files{"a.css": `@scope (.card) {
  img { color: var(--x); }
}`}, "a.css")

		assert.Empty(t, index)
		assert.Equal(t, "[css-audit] WARN: a.css:1: @scope is not supported: (.card)\n", buf.String())
	})
}

func TestRunRealWorldForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   audit.Index
	}{
		{
			name:   "scope with root and limit",
			source: `@scope (.card) to (.content) { img { color: var(--x); } } .a { color: var(--y); }`,
			want:   audit.Index{{Name: "--y", Labels: []string{".a"}}},
		},
		{
			name:   "quoted keyframes name",
			source: `@keyframes "fade" { from { opacity: var(--o); } }`,
			want:   audit.Index{{Name: "--o", Labels: []string{"@keyframes fade"}}},
		},
		{
			name:   "single quoted keyframes name",
			source: `@keyframes 'fade' { to { opacity: var(--o); } }`,
			want:   audit.Index{{Name: "--o", Labels: []string{"@keyframes fade"}}},
		},
		{
			name:   "dotted layer name",
			source: `@layer a.b { .a { color: var(--x); } }`,
			want:   audit.Index{{Name: "--x", Labels: []string{"@layer a.b\n    .a"}}},
		},
		{
			name:   "range media query",
			source: `@media (400px <= width <= 700px) { .a { color: var(--x); } }`,
			want:   audit.Index{{Name: "--x", Labels: []string{"@media (400px <= width <= 700px)\n    .a"}}},
		},
		{
			name:   "nested rule with ampersand",
			source: `.a { color: var(--x); &:hover { color: var(--y); } }`,
			want:   audit.Index{{Name: "--x", Labels: []string{".a"}}},
		},
		{
			name:   "selector list inside a pseudo-class",
			source: `:is(.a, .b) > p { color: var(--x); }`,
			want:   audit.Index{{Name: "--x", Labels: []string{":is(.a, .b) > p"}}},
		},
		{
			name:   "comment markers inside an attribute selector",
			source: `[data-x="/*"] { color: var(--x); }`,
			want:   audit.Index{{Name: "--x", Labels: []string{`[data-x="/*"]`}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureLog(t, log.LevelError)
			index, err := audit.Run([]string{"a.css"}, files{"a.css": tt.source}.read, audit.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, index)
		})
	}
}

func TestRunOtherExtensionsAsCSS(t *testing.T) {
	f := files{
		"theme.pcss": `.a { color: var(--x); }`,
		"styles":     `.b { color: var(--x); }`,
	}

	index := run(t, f, "theme.pcss", "styles")
	assert.Equal(t, audit.Index{{Name: "--x", Labels: []string{".a", ".b"}}}, index)
}

func TestRunAcrossFiles(t *testing.T) {
	f := files{
		"one.css":   `.a { color: var(--fg); } .b { background: var(--bg); }`,
		"two.css":   `.a { color: var(--fg); } .c { color: var(--fg); }`,
		"page.html": `<div style="color: var(--fg)"></div>`,
	}

	forward := run(t, f, "one.css", "two.css", "page.html")
	backward := run(t, f, "page.html", "two.css", "one.css")

	assert.Equal(t, audit.Index{
		{Name: "--bg", Labels: []string{".b"}},
		{Name: "--fg", Labels: []string{".a", ".c", "[style]"}},
	}, forward)
	assert.Equal(t, forward, backward)
}

func TestRunMatchesStylesheets(t *testing.T) {
	source := `.a { color: var(--x); } @media print { .b { color: var(--y); } }`
	f := files{"a.css": source}

	sheets, err := parser.ParseFile("a.css", source)
	require.NoError(t, err)

	assert.Equal(t, audit.Stylesheets(sheets, audit.Options{}), run(t, f, "a.css"))
}

func TestStylesheetsIgnorePrefixes(t *testing.T) {
	sheets := []*rules.Stylesheet{sheet(style(1, ".a", decl("color", "var(--rh-x, var(--y))")))}

	index := audit.Stylesheets(sheets, audit.Options{IgnorePrefixes: []string{"--rh-"}})
	assert.Equal(t, audit.Index{{Name: "--y", Labels: []string{".a"}}}, index)
}

func TestRunErrors(t *testing.T) {
	t.Run("no paths", func(t *testing.T) {
		index, err := audit.Run(nil, files{}.read, audit.Options{})
		assert.ErrorIs(t, err, audit.ErrNoStylesheets)
		assert.Nil(t, index)
	})

	t.Run("unreadable path", func(t *testing.T) {
		_, err := audit.Run([]string{"ok.css", "missing.css"}, files{"ok.css": ".a{}"}.read, audit.Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, audit.ErrReadFailed)
		assert.ErrorIs(t, err, fs.ErrNotExist)

		var readErr *audit.ReadError
		require.True(t, errors.As(err, &readErr))
		assert.Equal(t, "missing.css", readErr.Path)
	})

	t.Run("unparsable stylesheet", func(t *testing.T) {
		_, err := audit.Run([]string{"bad.css"}, files{"bad.css": ".a { color: var(--x);"}.read, audit.Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, audit.ErrParseFailed)

		var parseErr *audit.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "bad.css", parseErr.Path)
		assert.Contains(t, err.Error(), "failed to parse bad.css:")
	})
}
