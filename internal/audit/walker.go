package audit

import (
	"fmt"
	"strings"

	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/rules"
)

// Nesting controls how far the walker descends into grouping rules
type Nesting int

const (
	// Shallow scans only style rules directly inside a grouping rule
	Shallow Nesting = iota
	// Deep descends through grouping rules at any depth, accumulating their prefixes
	Deep
)

func (n Nesting) String() string {
	if n == Deep {
		return "deep"
	}
	return "shallow"
}

// ParseNesting converts "shallow" or "deep" to a Nesting. The empty string is Shallow.
func ParseNesting(name string) (Nesting, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "shallow":
		return Shallow, nil
	case "deep":
		return Deep, nil
	default:
		return Shallow, fmt.Errorf("unknown nesting mode %q", name)
	}
}

// labelIndent separates a grouping rule's prefix from the label nested inside it
const labelIndent = "\n    "

// walker collects the usages of one stylesheet
type walker struct {
	scanner *Scanner
	nesting Nesting
	source  string
	usages  Usages
	// prefix is the accumulated context of the enclosing grouping rules
	prefix string
}

var _ rules.Visitor = (*walker)(nil)

// Walk collects the usages of every rule in a stylesheet. Unsupported rules
// are reported with log.Warn and contribute nothing.
func Walk(sheet *rules.Stylesheet, scanner *Scanner, nesting Nesting) Usages {
	w := &walker{
		scanner: scanner,
		nesting: nesting,
		source:  sheet.Source,
		usages:  Usages{},
	}
	for _, r := range sheet.Rules {
		r.Accept(w)
	}
	return w.usages
}

func (w *walker) label(context string) string {
	if w.prefix == "" {
		return context
	}
	return w.prefix + labelIndent + context
}

func (w *walker) VisitStyle(r *rules.StyleRule) {
	labels := make([]string, len(r.Selectors))
	for i, sel := range r.Selectors {
		labels[i] = w.label(sel)
	}
	w.usages.Merge(w.scanner.Scan(labels, r.Declarations))

	for _, nested := range r.Nested {
		nested.Accept(w)
	}
}

func (w *walker) VisitKeyframes(r *rules.KeyframesRule) {
	labels := []string{w.label(r.Context())}
	for _, kf := range r.Keyframes {
		w.usages.Merge(w.scanner.Scan(labels, kf.Declarations))
	}
}

func (w *walker) VisitMedia(r *rules.MediaRule) { w.group(r.Context(), r.Children()) }

func (w *walker) VisitSupports(r *rules.SupportsRule) { w.group(r.Context(), r.Children()) }

func (w *walker) VisitContainer(r *rules.ContainerRule) { w.group(r.Context(), r.Children()) }

func (w *walker) VisitLayerBlock(r *rules.LayerBlockRule) { w.group(r.Context(), r.Children()) }

func (w *walker) VisitUnsupported(r *rules.UnsupportedRule) {
	if r.Prelude == "" {
		log.Warn("%s:%d: %s is not supported", w.source, r.Line(), r.Kind)
		return
	}
	log.Warn("%s:%d: %s is not supported: %s", w.source, r.Line(), r.Kind, r.Prelude)
}

func (w *walker) VisitIgnored(r *rules.IgnoredRule) {
	log.Debug("%s:%d: ignoring %s", w.source, r.Line(), r.Keyword)
}

// group walks the body of a grouping rule under its context prefix. In
// Shallow mode only the direct style rules of the body are scanned.
func (w *walker) group(context string, children []rules.Rule) {
	saved := w.prefix
	w.prefix = w.label(context)
	defer func() { w.prefix = saved }()

	for _, child := range children {
		if w.nesting == Shallow {
			style, ok := child.(*rules.StyleRule)
			if !ok {
				log.Debug("%s:%d: skipping rule nested in %s", w.source, child.Line(), context)
				continue
			}
			w.VisitStyle(style)
			continue
		}
		child.Accept(w)
	}
}
