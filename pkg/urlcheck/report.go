package urlcheck

import (
	"bytes"
	"fmt"
	"io"
)

// WriteReport prints problems in a human-readable list.
func WriteReport(w io.Writer, problems []Problem) error {
	var buf bytes.Buffer
	if len(problems) == 0 {
		buf.WriteString("No problematic URLs found.\n")
	} else {
		buf.WriteString("Problematic URLs (Error404 or fetch problems):\n\n")
		for _, p := range problems {
			fmt.Fprintf(&buf, "- line %d: plant=\"%s\", url=%s\n  reason: %s\n", p.Line, p.Plant, p.URL, p.Reason)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
