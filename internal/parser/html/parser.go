package html

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser/css"
	"bennypowers.dev/cssaudit/internal/rules"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// AttributeSelector labels declarations found in style="..." attributes
const AttributeSelector = "[style]"

// Parser handles parsing HTML to extract CSS regions
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
	attrQuery  *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		attrQuery, qerr := sitter.NewQuery(htmlLang, `
			(attribute
				(attribute_name) @attr_name
				(quoted_attribute_value (attribute_value) @attr_value)
				(#eq? @attr_name "style"))
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile attribute query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
			attrQuery:  attrQuery,
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
	if p.styleQuery != nil {
		p.styleQuery.Close()
	}
	if p.attrQuery != nil {
		p.attrQuery.Close()
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

// ParseCSSRegions extracts CSS regions from HTML source, style tags first,
// then style attributes, each in document order
func (p *Parser) ParseCSSRegions(source string) []CSSRegion {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var regions []CSSRegion

	// Find <style> tag contents
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(p.styleQuery, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			regions = append(regions, CSSRegion{
				Content:   string(sourceBytes[node.StartByte():node.EndByte()]),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
				Type:      StyleTag,
			})
		}
	}

	// Find style="..." attribute values
	cursor2 := sitter.NewQueryCursor()
	defer cursor2.Close()

	attrMatches := cursor2.Matches(p.attrQuery, root, sourceBytes)
	for match := attrMatches.Next(); match != nil; match = attrMatches.Next() {
		for _, capture := range match.Captures {
			if p.attrQuery.CaptureNames()[capture.Index] != "attr_value" {
				continue
			}
			node := capture.Node
			regions = append(regions, CSSRegion{
				Content:   string(sourceBytes[node.StartByte():node.EndByte()]),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
				Type:      StyleAttribute,
			})
		}
	}

	return regions
}

// ParseStylesheets parses every CSS region of an HTML document. Each <style>
// element becomes one stylesheet; style attributes are wrapped in a
// [style]{...} rule so their declarations are labelled with
// AttributeSelector. Line numbers refer to the HTML document.
//
// A region that fails to parse is logged and skipped, so one broken
// attribute does not hide the rest of the page.
func (p *Parser) ParseStylesheets(source, name string) []*rules.Stylesheet {
	regions := p.ParseCSSRegions(source)
	if len(regions) == 0 {
		return nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	sheets := make([]*rules.Stylesheet, 0, len(regions))
	for _, region := range regions {
		sheet, err := cssParser.Parse(region.CSS(), name)
		if err != nil {
			log.Warn("%s:%d: skipping %s: %v", name, region.StartLine+1, region.Type, err)
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

// CSS returns the region as standalone CSS, padded with newlines so that
// line numbers match the enclosing document
func (r CSSRegion) CSS() string {
	pad := strings.Repeat("\n", int(r.StartLine)) //nolint:gosec // G115: region positions from tree-sitter are bounded by file size
	if r.Type == StyleAttribute {
		return pad + AttributeSelector + "{" + r.Content + "}"
	}
	return pad + r.Content
}
