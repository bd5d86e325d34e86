package reviews

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeReport writes the report as indented JSON, leaving non-ascii and
// html characters as they are.
func EncodeReport(w io.Writer, report Report) error {
	if report.Reviews == nil {
		report.Reviews = []Review{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func WriteReport(path string, report Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeReport(f, report)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
