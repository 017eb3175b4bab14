package diffcalc

import (
	"fmt"
	"strings"
)

// FormatReport renders a Result as plain text.
func FormatReport(r Result) string {
	switch r.Status {
	case StatusNeedsInput:
		return r.Message + "\n"
	case StatusError:
		return "Error: " + r.Message + "\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "f(x)  = %s\n", r.Function)
	fmt.Fprintf(&sb, "f'(x) = %s\n", r.Derivative)
	fmt.Fprintf(&sb, "Estimated derivative at x = %g (h = %g) is: %.6f\n", r.Point, r.Step, r.Estimate)
	fmt.Fprintf(&sb, "Exact derivative: %.6f\n", r.Exact)
	fmt.Fprintf(&sb, "Absolute Error: %.6e\n", r.AbsoluteError)
	return sb.String()
}

// FormatSweep renders sweep rows as an aligned table.
func FormatSweep(rows []SweepRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s  %-20s  %s\n", "h", "estimate", "abs error")
	for _, row := range rows {
		fmt.Fprintf(&sb, "%-12.3e  %-20.12f  %.6e\n", row.Step, row.Estimate, row.AbsoluteError)
	}
	return sb.String()
}
