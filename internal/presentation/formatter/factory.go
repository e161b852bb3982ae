package formatter

import "fmt"

// Formats lists the accepted output format names; tsv is the default.
var Formats = []string{"tsv", "json", "table", "csv"}

// New returns the formatter registered under name.
func New(name string) (Formatter, error) {
	switch name {
	case "", "tsv":
		return NewTSVFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "table":
		return NewTableFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: %v)", name, Formats)
	}
}
