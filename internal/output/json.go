package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// JSONTo writes data as indented JSON.
func JSONTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Output writes data in the specified format.
func Output(w io.Writer, format string, data any) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatTable, "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
