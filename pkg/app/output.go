package app

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteOutput renders v in the context's output format. table renders the
// human readable form.
func (c *Context) WriteOutput(v any, table func(w io.Writer) error) error {
	if c.Quiet {
		return nil
	}
	return FormatOutput(c.Stdout, c.OutputFormat, v, table)
}

// FormatOutput renders v to w as JSON, YAML or, through table, as text
func FormatOutput(w io.Writer, format string, v any, table func(w io.Writer) error) error {
	switch format {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(v)
	case OutputTable:
		return table(w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
