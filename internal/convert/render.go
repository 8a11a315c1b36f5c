package convert

import (
	"strings"

	"github.com/f3rmion/tabconv/internal/table"
)

// latexSpecials are prefixed with a backslash in LaTeX cells.
const latexSpecials = "&%$#_{}"

// EscapeLaTeX backslash-escapes LaTeX special characters in s.
func EscapeLaTeX(s string) string {
	if !strings.ContainsAny(s, latexSpecials) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(latexSpecials, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// renderLaTeX writes t as a tabular environment with one column spec per
// cell of the first row. An empty table renders as "".
func renderLaTeX(t table.Table, align byte) string {
	if len(t) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`\begin{tabular}{`)
	b.WriteString(strings.Repeat(string(align), t.Columns()))
	b.WriteString("}\n\\hline\n")

	for _, row := range t {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" & ")
			}
			b.WriteString(EscapeLaTeX(cell))
		}
		b.WriteString(" \\\\\n")
	}

	b.WriteString("\\hline\n\\end{tabular}")
	return b.String()
}

// renderCSV joins cells with ',' and rows with '\n'. Cells are written
// verbatim, without quoting.
func renderCSV(t table.Table) string {
	rows := make([]string, len(t))
	for i, row := range t {
		rows[i] = strings.Join(row, ",")
	}
	return strings.Join(rows, "\n")
}
