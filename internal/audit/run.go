package audit

import (
	"errors"
	"fmt"

	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser"
	"bennypowers.dev/cssaudit/internal/parser/css"
	"bennypowers.dev/cssaudit/internal/rules"
)

// ReadFunc returns the contents of an input path
type ReadFunc func(path string) ([]byte, error)

// Options configures a run
type Options struct {
	Nesting Nesting
	// IgnorePrefixes are skipped in addition to PrivatePrefix
	IgnorePrefixes []string
}

// Stylesheets walks already parsed stylesheets in order and returns the
// finalized index
func Stylesheets(sheets []*rules.Stylesheet, opts Options) Index {
	scanner := NewScanner(opts.IgnorePrefixes...)
	agg := NewAggregator()
	for _, sheet := range sheets {
		agg.Add(Walk(sheet, scanner, opts.Nesting))
	}
	return agg.Finalize()
}

// Run reads, parses and walks every path in order. The first read or parse
// failure aborts the run.
func Run(paths []string, read ReadFunc, opts Options) (Index, error) {
	if len(paths) == 0 {
		return nil, ErrNoStylesheets
	}

	scanner := NewScanner(opts.IgnorePrefixes...)
	agg := NewAggregator()
	for _, path := range paths {
		content, err := read(path)
		if err != nil {
			return nil, NewReadError(path, err)
		}

		sheets, err := parser.ParseFile(path, string(content))
		if err != nil {
			var syntaxErr *css.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, NewParseError(path, syntaxErr.Line, syntaxErr.Column, syntaxErr.Reason)
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
		}

		log.Debug("%s: %d stylesheet(s)", path, len(sheets))
		for _, sheet := range sheets {
			agg.Add(Walk(sheet, scanner, opts.Nesting))
		}
	}
	return agg.Finalize(), nil
}
