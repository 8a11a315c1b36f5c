// Package table parses free-form tabular text into rows of cells.
package table

import "strings"

// cutset is the whitespace stripped from lines and cells.
const cutset = " \t\r\n"

// Table is a list of rows. Rows may have different lengths.
type Table [][]string

// Parse splits input into non-empty lines and each line into cells.
//
// A line containing a TAB is split on TAB, any other line on ','. There are
// no quoting rules.
func Parse(input string) Table {
	var t Table
	for _, line := range strings.Split(input, "\n") {
		line = strings.Trim(line, cutset)
		if line == "" {
			continue
		}
		t = append(t, splitLine(line))
	}
	return t
}

func splitLine(line string) []string {
	delim := ","
	if strings.Contains(line, "\t") {
		delim = "\t"
	}

	cells := strings.Split(line, delim)
	for i, c := range cells {
		cells[i] = strings.Trim(c, cutset)
	}
	return cells
}

// Columns returns the width of the first row.
func (t Table) Columns() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Map returns a copy of t with fn applied to every cell.
func (t Table) Map(fn func(string) string) Table {
	out := make(Table, len(t))
	for i, row := range t {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = fn(c)
		}
		out[i] = cells
	}
	return out
}
