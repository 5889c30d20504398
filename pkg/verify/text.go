package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteText renders a report for a terminal. Passing cases are listed only
// when verbose is set; failures always carry their full detail.
func WriteText(w io.Writer, r *Report, verbose bool) error {
	var b strings.Builder

	for _, d := range r.Domains {
		switch d.Status {
		case StatusSkipped:
			fmt.Fprintf(&b, "%s: skipped (%s)\n", d.Domain, d.Reason)
			continue
		case StatusError:
			if len(d.Cases) == 0 {
				fmt.Fprintf(&b, "%s: ERROR %s\n", d.Domain, d.Error)
				continue
			}
		}

		fmt.Fprintf(&b, "%s (%s): %s\n", d.Domain, d.Command, strings.ToUpper(string(d.Status)))
		for _, c := range d.Cases {
			if c.Status == StatusPass && !verbose {
				continue
			}
			writeCase(&b, c)
		}
	}

	t := r.Totals()
	device := r.Device
	if device == "" {
		device = "device"
	}
	fmt.Fprintf(&b, "\n%s: %d passed, %d failed, %d errors\n", device, t.Pass, t.Fail, t.Error)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCase(b *strings.Builder, c CaseResult) {
	switch c.Status {
	case StatusPass:
		fmt.Fprintf(b, "  PASS   %s\n", c.Label)
		return
	case StatusFail:
		fmt.Fprintf(b, "  FAIL   %s [%s]\n", c.Label, c.Kind)
	default:
		fmt.Fprintf(b, "  ERROR  %s\n", c.Label)
	}

	detail := c.Message
	if c.Err != nil {
		detail = c.Err.Error()
	}
	for _, line := range strings.Split(detail, "\n") {
		if line != "" {
			fmt.Fprintf(b, "         %s\n", line)
		}
	}
}

// WriteJSON renders a report as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
