// Package output prints command results: JSON documents, tables, assembled
// configuration text and colored status lines.
//
// Results and progress go to stdout. Warnings and errors go to stderr so a
// --json document on stdout stays parseable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// The streams are looked up on every call so redirected os.Stdout and
// os.Stderr are honored.
func stdout() io.Writer { return os.Stdout }
func stderr() io.Writer { return os.Stderr }

// JSON outputs data as indented JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(stdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table outputs data as a formatted table. Cells beyond the header count
// are dropped and missing cells are left blank.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	w := stdout()
	writeRow(w, widths, headers)

	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	writeRow(w, widths, sep)

	for _, row := range rows {
		writeRow(w, widths, row)
	}
}

func writeRow(w io.Writer, widths []int, cells []string) {
	line := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		line[i] = fmt.Sprintf("%-*s", width, cell)
	}
	// Trailing padding of the last column is noise in diffs of saved output.
	fmt.Fprintln(w, strings.TrimRight(strings.Join(line, "  "), " "))
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(stdout(), "✓ "+format+"\n", args...)
}

// Error prints an error message to stderr
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(stderr(), "✗ "+format+"\n", args...)
}

// Warn prints a warning message to stderr
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(stderr(), "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(stdout(), "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	fmt.Fprintf(stdout(), format+"\n", args...)
}

// Raw prints text unchanged, as generated configuration is printed
func Raw(text string) {
	fmt.Fprint(stdout(), text)
}
