package html

// RegionType identifies the kind of CSS region found in HTML
type RegionType int

const (
	// UnknownRegion is the zero value, indicating an uninitialized region type
	UnknownRegion RegionType = iota
	// StyleTag represents CSS inside a <style> element
	StyleTag
	// StyleAttribute represents CSS inside a style="..." attribute
	StyleAttribute
)

func (t RegionType) String() string {
	switch t {
	case StyleTag:
		return "<style> element"
	case StyleAttribute:
		return "style attribute"
	default:
		return "unknown region"
	}
}

// CSSRegion represents a region of CSS content found in an HTML document
type CSSRegion struct {
	Content string
	// StartLine and StartCol are 0-indexed
	StartLine uint
	StartCol  uint
	Type      RegionType
}
