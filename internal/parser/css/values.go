package css

import (
	"strings"

	"bennypowers.dev/cssaudit/internal/rules"
	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
)

// token is a lexer token with its 1-based source position. Column counts bytes.
type token struct {
	tt     tdcss.TokenType
	text   string
	line   int
	column int
}

// lex appends the tokens of source to dst, whitespace and comments included
func lex(dst []token, source string) []token {
	lexer := tdcss.NewLexer(parse.NewInput(strings.NewReader(source)))
	line, column := 1, 1
	for {
		tt, data := lexer.Next()
		if tt == tdcss.ErrorToken {
			return dst
		}
		text := string(data)
		dst = append(dst, token{tt: tt, text: text, line: line, column: column})
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				line++
				column = 1
			} else {
				column++
			}
		}
	}
}

// serialize joins tokens as text. Runs of whitespace and comments become a
// single space and are dropped at either end; strings are kept verbatim.
func serialize(toks []token) string {
	var sb strings.Builder
	space := false
	for _, t := range toks {
		if t.tt == tdcss.WhitespaceToken || t.tt == tdcss.CommentToken {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteString(t.text)
	}
	return sb.String()
}

// Tokenize lexes a declaration value. A custom property name that is the
// first argument of var() becomes a TokenVar; everything else, whitespace
// included, is kept as TokenText so the tokens concatenate back to the value.
func Tokenize(value string) []rules.Token {
	var tokens []rules.Token
	expectName := false
	for _, t := range lex(nil, value) {
		switch {
		case t.tt == tdcss.WhitespaceToken || t.tt == tdcss.CommentToken:
			// var( --name ) is valid; keep waiting for the name
		case expectName && isCustomPropertyName(t.tt, t.text):
			tokens = append(tokens, rules.Token{Type: rules.TokenVar, Value: t.text})
			expectName = false
			continue
		default:
			expectName = t.tt == tdcss.FunctionToken && strings.EqualFold(t.text, "var(")
		}
		tokens = append(tokens, rules.Token{Type: rules.TokenText, Value: t.text})
	}
	return tokens
}

// HasVar reports whether any token is a var() reference
func HasVar(tokens []rules.Token) bool {
	for _, t := range tokens {
		if t.Type == rules.TokenVar {
			return true
		}
	}
	return false
}

func isCustomPropertyName(tt tdcss.TokenType, text string) bool {
	if tt != tdcss.CustomPropertyNameToken && tt != tdcss.IdentToken {
		return false
	}
	return strings.HasPrefix(text, "--")
}

// unquote removes surrounding quotes from a string
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
