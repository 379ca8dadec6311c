package rules

// TokenType is the type of a value token
type TokenType int

const (
	// TokenText is any token that is not a variable reference
	TokenText TokenType = iota
	// TokenVar is a var() reference; its Value is the referenced property name
	TokenVar
)

// Token is one token of a declaration value
type Token struct {
	Type  TokenType
	Value string
}

// Declaration is a property/value pair.
//
// Values that reference custom properties keep their token list. Values
// without references are considered resolved and only keep their text.
type Declaration struct {
	Property string
	// Raw is the value text as written, without "!important"
	Raw string
	// Tokens is nil for resolved values
	Tokens []Token
}

// Unresolved reports whether the declaration carries a raw token list
func (d Declaration) Unresolved() bool {
	return d.Tokens != nil
}

// VarNames returns the property names referenced by var() tokens, in order,
// including repeats
func (d Declaration) VarNames() []string {
	var names []string
	for _, t := range d.Tokens {
		if t.Type == TokenVar {
			names = append(names, t.Value)
		}
	}
	return names
}
