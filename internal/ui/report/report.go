// Package report renders the model check table.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/earlyedge/internal/ui/theme"
)

// Row is the check result for one screen.
type Row struct {
	Modality   string
	Model      string
	Kind       string
	Features   int
	Classes    []string
	Calibrated bool
	Err        error
}

var columns = []string{"Screen", "Model", "Classifier", "Features", "Classes", "Status"}

func (r Row) cells() []string {
	if r.Err != nil {
		return []string{r.Modality, "-", "-", "-", "-", theme.Failed.Render("✗ failed")}
	}
	status := theme.OK.Render("✓ ok")
	if !r.Calibrated {
		status = theme.Warn.Render("✓ uncalibrated")
	}
	return []string{
		r.Modality,
		r.Model,
		r.Kind,
		fmt.Sprint(r.Features),
		strings.Join(r.Classes, ", "),
		status,
	}
}

// Render lays rows out as an aligned table followed by the error of each
// failed row.
func Render(rows []Row) string {
	table := make([][]string, 0, len(rows)+1)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = theme.Header.Render(c)
	}
	table = append(table, header)
	for _, r := range rows {
		table = append(table, r.cells())
	}

	widths := make([]int, len(columns))
	for _, line := range table {
		for i, cell := range line {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("EarlyEdge model check"))
	b.WriteString("\n\n")
	for _, line := range table {
		for i, cell := range line {
			b.WriteString(cell)
			if i < len(line)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	var failures []string
	for _, r := range rows {
		if r.Err != nil {
			failures = append(failures, theme.Failed.Render(r.Modality+": ")+theme.Body.Render(r.Err.Error()))
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Card.Render(strings.Join(failures, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

// Failed counts rows with errors.
func Failed(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Err != nil {
			n++
		}
	}
	return n
}
