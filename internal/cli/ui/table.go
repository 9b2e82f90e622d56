package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders aligned columns with a bold header row
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.noColor = opts.NoColor
	}
	return t
}

// AddRow adds a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows added
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = width(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	bold := paint(t.noColor, color.Bold, color.FgCyan)
	gray := paint(t.noColor, color.FgHiBlack)

	last := len(widths) - 1
	for i, h := range t.headers {
		if i == last {
			bold.Fprint(t.writer, h)
		} else {
			bold.Fprint(t.writer, padRight(h, widths[i])+"  ")
		}
	}
	fmt.Fprintln(t.writer)

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	gray.Fprintln(t.writer, strings.Join(rules, "  "))

	for _, row := range t.rows {
		cells := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i < last {
				cell = padRight(cell, widths[i])
			}
			cells[i] = cell
		}
		fmt.Fprintln(t.writer, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// KeyValueTable renders "key: value" lines with the values aligned
type KeyValueTable struct {
	writer  io.Writer
	rows    [][2]string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render writes the pairs
func (t *KeyValueTable) Render() {
	keyWidth := 0
	for _, row := range t.rows {
		if w := width(row[0]); w > keyWidth {
			keyWidth = w
		}
	}

	cyan := paint(t.noColor, color.FgCyan)
	for _, row := range t.rows {
		cyan.Fprint(t.writer, padRight(row[0]+":", keyWidth+1))
		fmt.Fprintf(t.writer, " %s\n", row[1])
	}
}

// Section is a titled block of indented lines
type Section struct {
	writer  io.Writer
	title   string
	lines   []string
	noColor bool
}

// NewSection creates a new section
func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{writer: w, title: title, noColor: noColor}
}

// AddLine adds a line to the section content
func (s *Section) AddLine(line string) {
	s.lines = append(s.lines, line)
}

// Render writes the section followed by a blank line. Empty sections
// render nothing.
func (s *Section) Render() {
	if len(s.lines) == 0 {
		return
	}
	paint(s.noColor, color.Bold, color.FgCyan).Fprintln(s.writer, s.title)
	for _, line := range s.lines {
		fmt.Fprintf(s.writer, "  %s\n", line)
	}
	fmt.Fprintln(s.writer)
}

// Header renders a title underlined to its own width
func Header(w io.Writer, title string, noColor bool) {
	paint(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	paint(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", width(title)))
}
