package css

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/cssaudit/internal/rules"
	tdcss "github.com/tdewolff/parse/v2/css"
)

// Parser builds rule trees from CSS source. Parsers keep their token buffer
// between uses, so they are pooled.
type Parser struct {
	tokens []token
}

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		return &Parser{}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.tokens = p.tokens[:0]
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Parse parses CSS source into a stylesheet. The name is recorded as the
// stylesheet's Source.
//
// Rules are read the way CSS Syntax Level 3 consumes them: an at-rule runs to
// a semicolon or to the end of its block, and anything else is a style rule
// whose prelude runs to a block. Selectors, preludes and values are kept as
// text, so any at-rule form is accepted. A block that is never closed, a
// style rule without a block, a declaration without a colon or a stray "}"
// at the top level means the rule structure is unknown, and Parse returns a
// *SyntaxError for the first one.
func (p *Parser) Parse(source, name string) (*rules.Stylesheet, error) {
	p.tokens = lex(p.tokens[:0], source)

	b := &builder{tokens: p.tokens}
	list := b.ruleList(nil)
	if b.err != nil {
		return nil, b.err
	}
	return &rules.Stylesheet{Source: name, Rules: list}, nil
}

// builder converts the token stream into rules, remembering the first
// structural error
type builder struct {
	tokens []token
	pos    int
	err    *SyntaxError
}

func (b *builder) done() bool {
	return b.pos >= len(b.tokens)
}

func (b *builder) cur() token {
	return b.tokens[b.pos]
}

// skipTrivia moves past whitespace, comments and HTML comment markers
func (b *builder) skipTrivia() {
	for !b.done() {
		switch b.cur().tt {
		case tdcss.WhitespaceToken, tdcss.CommentToken, tdcss.CDOToken, tdcss.CDCToken:
			b.pos++
		default:
			return
		}
	}
}

// ruleList reads rules until the end of input, or through the "}" that
// closes the block opened by open
func (b *builder) ruleList(open *token) []rules.Rule {
	var list []rules.Rule
	for {
		b.skipTrivia()
		if b.done() {
			if open != nil {
				b.unclosed(*open)
			}
			return list
		}

		t := b.cur()
		switch t.tt {
		case tdcss.RightBraceToken:
			b.pos++
			if open != nil {
				return list
			}
			b.fail(t, `unexpected "}"`)
		case tdcss.SemicolonToken:
			b.pos++
		case tdcss.AtKeywordToken:
			list = append(list, b.atRule())
		default:
			if rule := b.styleRule(); rule != nil {
				list = append(list, rule)
			}
		}
	}
}

// prelude consumes component values up to a "{" or ";" at depth zero, and
// stops in front of a "}" closing an enclosing block. It returns the prelude
// and the "{" opening the rule's block, or nil when the rule has none.
func (b *builder) prelude() ([]token, *token) {
	start := b.pos
	depth := 0
	for ; !b.done(); b.pos++ {
		switch b.cur().tt {
		case tdcss.LeftParenthesisToken, tdcss.LeftBracketToken, tdcss.FunctionToken:
			depth++
		case tdcss.RightParenthesisToken, tdcss.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case tdcss.LeftBraceToken:
			if depth == 0 {
				b.pos++
				return b.tokens[start : b.pos-1], &b.tokens[b.pos-1]
			}
			depth++
		case tdcss.RightBraceToken:
			if depth == 0 {
				return b.tokens[start:b.pos], nil
			}
			depth--
		case tdcss.SemicolonToken:
			if depth == 0 {
				b.pos++
				return b.tokens[start : b.pos-1], nil
			}
		}
	}
	return b.tokens[start:b.pos], nil
}

// skipBlock consumes tokens through the "}" matching open
func (b *builder) skipBlock(open token) {
	depth := 0
	for ; !b.done(); b.pos++ {
		switch b.cur().tt {
		case tdcss.LeftBraceToken:
			depth++
		case tdcss.RightBraceToken:
			if depth == 0 {
				b.pos++
				return
			}
			depth--
		}
	}
	b.unclosed(open)
}

// atRule reads an at-rule and dispatches on its keyword
func (b *builder) atRule() rules.Rule {
	at := b.cur()
	b.pos++
	keyword := strings.ToLower(at.text)
	toks, open := b.prelude()
	prelude := serialize(toks)

	if open != nil {
		switch keyword {
		case "@media":
			return &rules.MediaRule{Group: b.group(at, prelude, open)}
		case "@supports":
			return &rules.SupportsRule{Group: b.group(at, prelude, open)}
		case "@container":
			return &rules.ContainerRule{Group: b.group(at, prelude, open)}
		case "@layer":
			return &rules.LayerBlockRule{Group: b.group(at, prelude, open)}
		case "@keyframes", "@-webkit-keyframes", "@-moz-keyframes", "@-o-keyframes":
			return b.keyframesRule(at, unquote(prelude), open)
		}
		b.skipBlock(*open)
	}

	switch keyword {
	case "@scope":
		return b.unsupported(at, rules.Scope, prelude)
	case "@starting-style":
		return b.unsupported(at, rules.StartingStyle, prelude)
	case "@property":
		return b.unsupported(at, rules.Property, prelude)
	case "@custom-media":
		return b.unsupported(at, rules.CustomMedia, prelude)
	}
	return &rules.IgnoredRule{Pos: pos(at), Keyword: keyword}
}

func (b *builder) group(at token, prelude string, open *token) rules.Group {
	return rules.Group{Pos: pos(at), Prelude: prelude, Rules: b.ruleList(open)}
}

func (b *builder) unsupported(at token, kind rules.UnsupportedKind, prelude string) *rules.UnsupportedRule {
	return &rules.UnsupportedRule{Pos: pos(at), Kind: kind, Prelude: prelude}
}

func (b *builder) styleRule() rules.Rule {
	first := b.cur()
	toks, open := b.prelude()
	if open == nil {
		b.fail(first, fmt.Sprintf(`expected "{" after %q`, excerpt(serialize(toks))))
		return nil
	}
	r := &rules.StyleRule{Pos: pos(first), Selectors: selectors(toks)}
	r.Declarations, r.Nested = b.block(*open)
	return r
}

// keyframesRule reads the steps of a @keyframes block. The name is an
// identifier or a string, already unquoted.
func (b *builder) keyframesRule(at token, name string, open *token) *rules.KeyframesRule {
	r := &rules.KeyframesRule{Pos: pos(at), Name: name}
	for {
		b.skipTrivia()
		if b.done() {
			b.unclosed(*open)
			return r
		}
		t := b.cur()
		if t.tt == tdcss.RightBraceToken {
			b.pos++
			return r
		}

		toks, step := b.prelude()
		if step == nil {
			if selector := serialize(toks); selector != "" {
				b.fail(t, fmt.Sprintf(`expected "{" after %q`, excerpt(selector)))
			}
			continue
		}
		decls, _ := b.block(*step)
		r.Keyframes = append(r.Keyframes, rules.Keyframe{
			Selector:     serialize(toks),
			Declarations: decls,
		})
	}
}

// block reads a style rule's declaration block through its closing "}".
// Rules written inside the block come back as Nesting rules.
func (b *builder) block(open token) ([]rules.Declaration, []rules.Rule) {
	var (
		decls  []rules.Declaration
		nested []rules.Rule
	)
	for {
		b.skipTrivia()
		if b.done() {
			b.unclosed(open)
			return decls, nested
		}

		t := b.cur()
		switch t.tt {
		case tdcss.RightBraceToken:
			b.pos++
			return decls, nested
		case tdcss.SemicolonToken:
			b.pos++
			continue
		case tdcss.AtKeywordToken:
			b.pos++
			toks, inner := b.prelude()
			prelude := strings.ToLower(t.text)
			if rest := serialize(toks); rest != "" {
				prelude += " " + rest
			}
			if inner != nil {
				b.skipBlock(*inner)
			}
			nested = append(nested, &rules.UnsupportedRule{Pos: pos(t), Kind: rules.Nesting, Prelude: prelude})
			continue
		}

		toks, inner := b.prelude()
		if inner != nil {
			b.skipBlock(*inner)
			nested = append(nested, &rules.UnsupportedRule{
				Pos:     pos(t),
				Kind:    rules.Nesting,
				Prelude: strings.Join(selectors(toks), ", "),
			})
			continue
		}
		if decl, ok := b.declaration(toks); ok {
			decls = append(decls, decl)
		}
	}
}

// declaration splits a declaration at its first colon. The value excludes
// a trailing !important.
func (b *builder) declaration(toks []token) (rules.Declaration, bool) {
	colon := -1
	for i, t := range toks {
		if t.tt == tdcss.ColonToken {
			colon = i
			break
		}
	}
	property := serialize(toks[:max(colon, 0)])
	if colon < 0 || property == "" {
		b.fail(toks[0], fmt.Sprintf("expected declaration, found %q", excerpt(serialize(toks))))
		return rules.Declaration{}, false
	}

	raw := serialize(withoutImportant(toks[colon+1:]))
	decl := rules.Declaration{
		Property: property,
		Raw:      raw,
	}
	if tokens := Tokenize(raw); HasVar(tokens) {
		decl.Tokens = tokens
	}
	return decl, true
}

// selectors splits a selector list at the commas outside of parentheses and
// brackets, so ":is(.a, .b)" stays one selector
func selectors(toks []token) []string {
	var list []string
	depth, start := 0, 0
	flush := func(end int) {
		if s := serialize(toks[start:end]); s != "" {
			list = append(list, s)
		}
	}
	for i, t := range toks {
		switch t.tt {
		case tdcss.LeftParenthesisToken, tdcss.LeftBracketToken, tdcss.FunctionToken:
			depth++
		case tdcss.RightParenthesisToken, tdcss.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case tdcss.CommaToken:
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(toks))
	return list
}

// withoutImportant drops a trailing "! important" from a value
func withoutImportant(toks []token) []token {
	last := lastSignificant(toks, len(toks))
	if last < 0 || toks[last].tt != tdcss.IdentToken || !strings.EqualFold(toks[last].text, "important") {
		return toks
	}
	bang := lastSignificant(toks, last)
	if bang < 0 || toks[bang].tt != tdcss.DelimToken || toks[bang].text != "!" {
		return toks
	}
	return toks[:bang]
}

// lastSignificant returns the index of the last token before end that is
// not whitespace or a comment, or -1
func lastSignificant(toks []token, end int) int {
	for i := end - 1; i >= 0; i-- {
		if tt := toks[i].tt; tt != tdcss.WhitespaceToken && tt != tdcss.CommentToken {
			return i
		}
	}
	return -1
}

// unclosed records a block that reached the end of input
func (b *builder) unclosed(open token) {
	b.fail(open, `unclosed "{"`)
}

// fail records the first structural error
func (b *builder) fail(t token, reason string) {
	if b.err != nil {
		return
	}
	b.err = &SyntaxError{Line: t.line, Column: t.column, Reason: reason}
}

func excerpt(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}

func pos(t token) rules.Pos {
	return rules.Pos{LineNo: t.line}
}
