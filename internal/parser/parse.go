package parser

import (
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/cssaudit/internal/parser/css"
	"bennypowers.dev/cssaudit/internal/parser/html"
	"bennypowers.dev/cssaudit/internal/parser/js"
	"bennypowers.dev/cssaudit/internal/rules"
)

// Language is the kind of document a stylesheet is read from
type Language int

const (
	// Unknown is the zero value. Files of unknown language are parsed as CSS.
	Unknown Language = iota
	CSS
	HTML
	JavaScript
)

func (l Language) String() string {
	switch l {
	case CSS:
		return "css"
	case HTML:
		return "html"
	case JavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// languages maps lowercase file extensions to the parser they use.
// TypeScript and JSX share the JavaScript parser: only tagged templates matter.
var languages = map[string]Language{
	".css":  CSS,
	".html": HTML,
	".htm":  HTML,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".jsx":  JavaScript,
	".ts":   JavaScript,
	".mts":  JavaScript,
	".tsx":  JavaScript,
}

// LanguageForPath returns the language of a file by its extension
func LanguageForPath(path string) Language {
	return languages[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the supported file extensions, sorted
func Extensions() []string {
	exts := make([]string, 0, len(languages))
	for ext := range languages {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// ParseFile parses the stylesheets of one document. HTML and JS/TS documents
// yield one stylesheet per embedded CSS region; regions that fail to parse
// are skipped with a warning. Any other file, whatever its extension, is a
// single stylesheet and a syntax error in it is returned.
func ParseFile(path, content string) ([]*rules.Stylesheet, error) {
	switch LanguageForPath(path) {
	case HTML:
		p := html.AcquireParser()
		defer html.ReleaseParser(p)
		return p.ParseStylesheets(content, path), nil

	case JavaScript:
		p := js.AcquireParser()
		defer js.ReleaseParser(p)
		return p.ParseStylesheets(content, path), nil

	default:
		p := css.AcquireParser()
		defer css.ReleaseParser(p)
		sheet, err := p.Parse(content, path)
		if err != nil {
			return nil, err
		}
		return []*rules.Stylesheet{sheet}, nil
	}
}

// ClosePools releases every pooled tree-sitter parser
func ClosePools() {
	html.ClosePool()
	js.ClosePool()
}
