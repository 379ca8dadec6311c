package parser_test

import (
	"errors"
	"testing"

	"bennypowers.dev/cssaudit/internal/parser"
	"bennypowers.dev/cssaudit/internal/parser/css"
	"bennypowers.dev/cssaudit/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want parser.Language
	}{
		{"a.css", parser.CSS},
		{"dir/A.CSS", parser.CSS},
		{"index.html", parser.HTML},
		{"index.htm", parser.HTML},
		{"el.js", parser.JavaScript},
		{"el.mjs", parser.JavaScript},
		{"el.ts", parser.JavaScript},
		{"el.tsx", parser.JavaScript},
		{"Card.jsx", parser.JavaScript},
		{"data.json", parser.Unknown},
		{"Makefile", parser.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.LanguageForPath(tt.path))
		})
	}
}

func TestExtensions(t *testing.T) {
	exts := parser.Extensions()
	assert.IsIncreasing(t, exts)
	assert.Contains(t, exts, ".css")
	assert.Contains(t, exts, ".html")
	assert.Contains(t, exts, ".tsx")
}

func varNames(sheets []*rules.Stylesheet) []string {
	var names []string
	for _, sheet := range sheets {
		for _, r := range sheet.Rules {
			if style, ok := r.(*rules.StyleRule); ok {
				for _, d := range style.Declarations {
					names = append(names, d.VarNames()...)
				}
			}
		}
	}
	return names
}

func TestParseFileCSS(t *testing.T) {
	sheets, err := parser.ParseFile("button.css", `.button { color: var(--color-primary); }`)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "button.css", sheets[0].Source)
	assert.Equal(t, []string{"--color-primary"}, varNames(sheets))
}

func TestParseFileCSSSyntaxError(t *testing.T) {
	_, err := parser.ParseFile("broken.css", `.button { color: var(--color-primary);`)
	require.Error(t, err)

	var syntaxErr *css.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestParseFileHTML(t *testing.T) {
	sheets, err := parser.ParseFile("index.html", `<style>.button { color: var(--text-color); }</style>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"--text-color"}, varNames(sheets))
}

func TestParseFileJavaScript(t *testing.T) {
	content := "const s = css`\n  .button { color: var(--text-color); }\n`;"

	for _, path := range []string{"a.js", "a.jsx", "a.ts", "a.tsx"} {
		t.Run(path, func(t *testing.T) {
			sheets, err := parser.ParseFile(path, content)
			require.NoError(t, err)
			assert.Equal(t, []string{"--text-color"}, varNames(sheets))
		})
	}
}

func TestParseFileOtherExtensionsAreCSS(t *testing.T) {
	for _, path := range []string{"theme.pcss", "app.postcss", "styles"} {
		t.Run(path, func(t *testing.T) {
			sheets, err := parser.ParseFile(path, `.a { color: var(--x); }`)
			require.NoError(t, err)
			require.Len(t, sheets, 1)
			assert.Equal(t, path, sheets[0].Source)
			assert.Equal(t, []string{"--x"}, varNames(sheets))
		})
	}

	_, err := parser.ParseFile("styles", `.a { color: var(--x);`)
	var syntaxErr *css.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}
