package css

import "fmt"

// SyntaxError reports CSS whose rule structure could not be recovered
type SyntaxError struct {
	// Line and Column are 1-based
	Line   int
	Column int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Reason)
}
