// Package output prints jap results and status lines. Results and
// confirmations go to stdout; errors and warnings go to stderr so piped JSON
// stays parseable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// MaxCellWidth caps a table cell; longer values are cut with an ellipsis.
const MaxCellWidth = 60

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

func status(w io.Writer, c *color.Color, prefix, format string, a []any) {
	c.Fprintf(w, prefix+format+"\n", a...)
}

// Success confirms a completed change, such as a saved profile.
func Success(format string, a ...any) {
	status(os.Stdout, successColor, "✓ ", format, a)
}

func Error(format string, a ...any) {
	status(os.Stderr, errorColor, "✗ ", format, a)
}

func Info(format string, a ...any) {
	status(os.Stdout, infoColor, "", format, a)
}

func Warn(format string, a ...any) {
	status(os.Stderr, warnColor, "⚠ ", format, a)
}

// JSON writes v to stdout, indented and without HTML escaping.
func JSON(v any) error {
	return WriteJSON(os.Stdout, v)
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Table collects rows and renders them as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing trailing cells render empty; extra cells are
// dropped.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(row) {
			cells[i] = truncate(row[i])
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	t.RenderTo(os.Stdout)
}

// RenderTo writes the header, a dashed separator and every row to w.
func (t *Table) RenderTo(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, h := range t.headers {
		headerColor.Fprint(w, pad(h, widths[i]))
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, pad(strings.Repeat("-", widths[i]), widths[i]))
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, c := range row {
			fmt.Fprint(w, pad(c, widths[i]))
		}
		fmt.Fprintln(w)
	}
}

// pad left-aligns s in a column of width runes plus the two-space gutter.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-utf8.RuneCountInString(s)+2)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxCellWidth {
		return s
	}
	r := []rune(s)
	return string(r[:MaxCellWidth-1]) + "…"
}
