// Package report renders evaluation reports as a terminal summary, detail
// tables and an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/potooio/cleancheck/internal/evaluator"
)

const (
	labelWidth = 20
	countWidth = 10
	rowWidth   = labelWidth + countWidth + 5
)

// palette holds the SprintFuncs used by the summary banner.
type palette struct {
	border   func(a ...any) string
	heading  func(a ...any) string
	positive func(a ...any) string
	negative func(a ...any) string
	missed   func(a ...any) string
}

func newPalette(colorize bool) palette {
	return palette{
		border:   sprint(colorize, color.FgHiBlack),
		heading:  sprint(colorize, color.FgWhite, color.Bold),
		positive: sprint(colorize, color.FgGreen),
		negative: sprint(colorize, color.FgRed),
		missed:   sprint(colorize, color.FgYellow),
	}
}

func sprint(colorize bool, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// WriteSummary writes the boxed "Results" banner with TP/FP/FN counts.
func WriteSummary(w io.Writer, r *evaluator.Report, colorize bool) error {
	p := newPalette(colorize)
	rule := p.border(strings.Repeat("*", rowWidth))
	star := p.border("*")

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s%s%s\n", star, p.heading(center("Results", rowWidth-2)), star)
	fmt.Fprintln(&b, rule)

	rows := []struct {
		label string
		count int
		paint func(a ...any) string
	}{
		{"True Positive", r.Result.TruePositives, p.positive},
		{"False Positive", r.Result.FalsePositives, p.negative},
		{"False Negative", r.Result.FalseNegatives, p.missed},
	}
	for _, row := range rows {
		count := fmt.Sprintf("%-*s", countWidth, strconv.Itoa(row.count))
		fmt.Fprintf(&b, "%s %-*s%s %s%s\n", star, labelWidth, row.label, star, row.paint(count), star)
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// center pads s with spaces to width, extra space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
