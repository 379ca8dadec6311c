// Package render writes a finalized usage index as text, JSON or an HTML report.
package render

import (
	"fmt"
	"io"
	"strings"

	"bennypowers.dev/cssaudit/internal/audit"
)

// Format selects the renderer
type Format int

const (
	// Terminal prints each property followed by its indented labels
	Terminal Format = iota
	// JSON prints an array of {"selector", "rules"} objects
	JSON
	// HTML prints a standalone browsable report
	HTML
	// None computes the index but prints nothing
	None
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case HTML:
		return "html"
	case None:
		return "none"
	default:
		return "terminal"
	}
}

// ParseFormat returns the format with the given name. Unrecognized names,
// including the empty string, select Terminal.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON
	case "html":
		return HTML
	case "none":
		return None
	default:
		return Terminal
	}
}

// Render writes the index in the given format
func Render(w io.Writer, format Format, index audit.Index) error {
	switch format {
	case JSON:
		return renderJSON(w, index)
	case HTML:
		return renderHTML(w, index)
	case None:
		return nil
	default:
		return renderTerminal(w, index)
	}
}

func renderTerminal(w io.Writer, index audit.Index) error {
	var sb strings.Builder
	for i, entry := range index {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(entry.Name)
		sb.WriteByte('\n')
		for _, label := range entry.Labels {
			sb.WriteString("  ")
			sb.WriteString(label)
			sb.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing terminal output: %w", err)
	}
	return nil
}
