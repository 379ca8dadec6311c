package render

import (
	"encoding/json"
	"fmt"
	"io"

	"bennypowers.dev/cssaudit/internal/audit"
)

// Usage is the JSON form of one index entry. The property name is under
// "selector" and its labels under "rules", the shape existing consumers of
// the report read.
type Usage struct {
	Selector string   `json:"selector"`
	Rules    []string `json:"rules"`
}

func renderJSON(w io.Writer, index audit.Index) error {
	usages := make([]Usage, 0, len(index))
	for _, entry := range index {
		rules := entry.Labels
		if rules == nil {
			rules = []string{}
		}
		usages = append(usages, Usage{Selector: entry.Name, Rules: rules})
	}

	data, err := json.MarshalIndent(usages, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	return nil
}
