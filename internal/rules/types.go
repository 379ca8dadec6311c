// Package rules is the parsed form of a stylesheet that the audit walks.
//
// The set of rule kinds is closed. Every kind implements Rule by accepting a
// Visitor, and Visitor has one method per kind, so adding a kind fails to
// compile until every visitor handles it.
package rules

// Rule is a single entry of a stylesheet or of a grouping rule's body
type Rule interface {
	// Accept dispatches to the Visitor method for the concrete rule kind
	Accept(v Visitor)
	// Line is the 1-based line of the rule in its source
	Line() int
}

// Visitor handles each rule kind
type Visitor interface {
	VisitStyle(r *StyleRule)
	VisitKeyframes(r *KeyframesRule)
	VisitMedia(r *MediaRule)
	VisitSupports(r *SupportsRule)
	VisitContainer(r *ContainerRule)
	VisitLayerBlock(r *LayerBlockRule)
	VisitUnsupported(r *UnsupportedRule)
	VisitIgnored(r *IgnoredRule)
}

// Stylesheet is an ordered list of rules from one source
type Stylesheet struct {
	// Source identifies where the stylesheet came from (a path, optionally with a region suffix)
	Source string
	Rules  []Rule
}

// Pos holds the source line of a rule
type Pos struct {
	LineNo int
}

// Line returns the 1-based source line
func (p Pos) Line() int { return p.LineNo }

// StyleRule is a selector list with a declaration block
type StyleRule struct {
	Pos
	// Selectors holds one serialized selector per comma-separated entry
	Selectors    []string
	Declarations []Declaration
	// Nested holds rules nested directly inside the style rule's block
	Nested []Rule
}

// Accept implements Rule
func (r *StyleRule) Accept(v Visitor) { v.VisitStyle(r) }

// Keyframe is one step of a @keyframes rule
type Keyframe struct {
	// Selector is the serialized step selector ("from", "to", "50%")
	Selector     string
	Declarations []Declaration
}

// KeyframesRule is a @keyframes rule
type KeyframesRule struct {
	Pos
	Name      string
	Keyframes []Keyframe
}

// Accept implements Rule
func (r *KeyframesRule) Accept(v Visitor) { v.VisitKeyframes(r) }

// Context returns the context label for usages inside the keyframes
func (r *KeyframesRule) Context() string {
	return "@keyframes " + r.Name
}

// Group is the shared body of conditional and grouping rules
type Group struct {
	Pos
	// Prelude is the serialized text between the at-keyword and the block
	Prelude string
	Rules   []Rule
}

// Children returns the rules inside the group
func (g *Group) Children() []Rule { return g.Rules }

// MediaRule is a @media rule
type MediaRule struct{ Group }

// Accept implements Rule
func (r *MediaRule) Accept(v Visitor) { v.VisitMedia(r) }

// Context returns the context label prefix for rules inside the group
func (r *MediaRule) Context() string { return atPrefix("@media", r.Prelude) }

// SupportsRule is a @supports rule
type SupportsRule struct{ Group }

// Accept implements Rule
func (r *SupportsRule) Accept(v Visitor) { v.VisitSupports(r) }

// Context returns the context label prefix for rules inside the group
func (r *SupportsRule) Context() string { return atPrefix("@supports", r.Prelude) }

// ContainerRule is a @container rule. The prelude includes the container name when present.
type ContainerRule struct{ Group }

// Accept implements Rule
func (r *ContainerRule) Accept(v Visitor) { v.VisitContainer(r) }

// Context returns the context label prefix for rules inside the group
func (r *ContainerRule) Context() string { return atPrefix("@container", r.Prelude) }

// LayerBlockRule is a @layer rule with a block. Prelude is empty for anonymous layers.
type LayerBlockRule struct{ Group }

// Accept implements Rule
func (r *LayerBlockRule) Accept(v Visitor) { v.VisitLayerBlock(r) }

// Context returns the context label prefix for rules inside the group
func (r *LayerBlockRule) Context() string { return atPrefix("@layer", r.Prelude) }

func atPrefix(keyword, prelude string) string {
	if prelude == "" {
		return keyword
	}
	return keyword + " " + prelude
}

// UnsupportedKind identifies a rule kind the audit reports and skips
type UnsupportedKind int

const (
	// CustomMedia is a @custom-media rule
	CustomMedia UnsupportedKind = iota
	// Scope is a @scope rule
	Scope
	// Nesting is a style rule nested inside another style rule
	Nesting
	// StartingStyle is a @starting-style rule
	StartingStyle
	// Property is a @property rule
	Property
)

// String returns the name used in warnings
func (k UnsupportedKind) String() string {
	switch k {
	case CustomMedia:
		return "@custom-media"
	case Scope:
		return "@scope"
	case Nesting:
		return "nesting"
	case StartingStyle:
		return "@starting-style"
	case Property:
		return "@property"
	default:
		return "unknown"
	}
}

// UnsupportedRule is a rule whose usages are not extracted
type UnsupportedRule struct {
	Pos
	Kind UnsupportedKind
	// Prelude is the serialized prelude, or the selector for nested style rules
	Prelude string
}

// Accept implements Rule
func (r *UnsupportedRule) Accept(v Visitor) { v.VisitUnsupported(r) }

// IgnoredRule is any other at-rule (@import, @font-face, @page, layer statements, unknown rules)
type IgnoredRule struct {
	Pos
	// Keyword is the at-keyword including "@"
	Keyword string
}

// Accept implements Rule
func (r *IgnoredRule) Accept(v Visitor) { v.VisitIgnored(r) }
