package js

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser/css"
	htmlparser "bennypowers.dev/cssaudit/internal/parser/html"
	"bennypowers.dev/cssaudit/internal/rules"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// substitution stands in for a ${...} expression when template segments are
// rejoined. A comment is valid anywhere CSS allows whitespace.
const substitution = "/**/"

// Parser handles parsing JS/TS to extract CSS from tagged template literals
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // matches css<Type>`...` (generic form parsed by JS grammar as binary_expression)
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		// Generic form: css<Type>`...` is valid TypeScript but tree-sitter-javascript
		// parses it as nested binary expressions rather than a call with type arguments.
		genericQuery, qerr := sitter.NewQuery(jsLang, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
			genericQuery:  genericQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
	if p.genericQuery != nil {
		p.genericQuery.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// ParseTemplates finds css/html tagged template literals and splits them at ${...} boundaries.
// Handles both standard form (css`...`) and generic form (css<Type>`...`).
func (p *Parser) ParseTemplates(source string) []TemplateRegion {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var regions []TemplateRegion

	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		regions = runTemplateQuery(query, root, sourceBytes, regions)
	}

	return regions
}

// runTemplateQuery executes a single tree-sitter query against the parsed tree,
// appending matching css/html tagged template regions
func runTemplateQuery(query *sitter.Query, root *sitter.Node, sourceBytes []byte, regions []TemplateRegion) []TemplateRegion {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tagName string
		var templateNode sitter.Node
		foundTemplate := false

		for _, capture := range match.Captures {
			switch query.CaptureNames()[capture.Index] {
			case "tag":
				tagName = string(sourceBytes[capture.Node.StartByte():capture.Node.EndByte()])
			case "template":
				templateNode = capture.Node
				foundTemplate = true
			}
		}

		if tagName != "css" && tagName != "html" {
			continue
		}
		if !foundTemplate {
			continue
		}

		if segments := extractSegments(&templateNode, sourceBytes); len(segments) > 0 {
			regions = append(regions, TemplateRegion{
				Segments:  segments,
				Tag:       tagName,
				StartLine: templateNode.StartPosition().Row,
			})
		}
	}

	return regions
}

// extractSegments splits a template_string node into literal text segments
// (string_fragment nodes), skipping ${...} substitutions
func extractSegments(templateNode *sitter.Node, sourceBytes []byte) []Segment {
	var segments []Segment

	for i := uint(0); i < templateNode.ChildCount(); i++ {
		child := templateNode.Child(i)
		if child.Kind() == "string_fragment" {
			segments = append(segments, Segment{
				Content:   string(sourceBytes[child.StartByte():child.EndByte()]),
				StartLine: child.StartPosition().Row,
				StartCol:  child.StartPosition().Column,
			})
		}
	}

	return segments
}

// ParseStylesheets parses the CSS of every css`` and html`` tagged template
// in JS/TS source. Line numbers refer to the JS/TS source. A template that
// fails to parse is logged and skipped.
func (p *Parser) ParseStylesheets(source, name string) []*rules.Stylesheet {
	templates := p.ParseTemplates(source)
	if len(templates) == 0 {
		return nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	var sheets []*rules.Stylesheet
	for _, tmpl := range templates {
		switch tmpl.Tag {
		case "css":
			sheet, err := cssParser.Parse(tmpl.Text(substitution), name)
			if err != nil {
				log.Warn("%s:%d: skipping css template: %v", name, tmpl.StartLine+1, err)
				continue
			}
			sheets = append(sheets, sheet)
		case "html":
			sheets = append(sheets, parseHTMLTemplate(tmpl, name)...)
		}
	}
	return sheets
}

// parseHTMLTemplate extracts CSS from the markup of an html tagged template
func parseHTMLTemplate(tmpl TemplateRegion, name string) []*rules.Stylesheet {
	htmlParser := htmlparser.AcquireParser()
	defer htmlparser.ReleaseParser(htmlParser)

	return htmlParser.ParseStylesheets(tmpl.Text(""), name)
}

// Text rejoins the template's literal segments with sep in place of each
// ${...} expression. Segments are padded with newlines so that line numbers
// in the result match the JS/TS source.
func (r TemplateRegion) Text(sep string) string {
	var sb strings.Builder
	line := uint(0)
	for i, seg := range r.Segments {
		if i > 0 {
			sb.WriteString(sep)
		}
		for line < seg.StartLine {
			sb.WriteByte('\n')
			line++
		}
		sb.WriteString(seg.Content)
		line += uint(strings.Count(seg.Content, "\n"))
	}
	return sb.String()
}
