package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"bennypowers.dev/cssaudit/internal/audit"
	"github.com/zeebo/xxh3"
)

//go:embed template.html
var reportHTML string

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// section is one property of the HTML report
type section struct {
	ID     string
	Name   string
	Labels []string
}

// AnchorID returns the element id of a property's heading. Ids come from a
// 64-bit xxh3 hash of the name; collisions are not detected.
func AnchorID(name string) string {
	return fmt.Sprintf("selector-%x", xxh3.HashString(name))
}

func renderHTML(w io.Writer, index audit.Index) error {
	sections := make([]section, 0, len(index))
	for _, entry := range index {
		sections = append(sections, section{
			ID:     AnchorID(entry.Name),
			Name:   entry.Name,
			Labels: entry.Labels,
		})
	}
	if err := reportTemplate.Execute(w, sections); err != nil {
		return fmt.Errorf("writing HTML output: %w", err)
	}
	return nil
}
