package tui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ResultsMarkdown formats combinator results as a markdown table sorted by node id.
func ResultsMarkdown(title string, results map[string]float64) string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	if len(ids) == 0 {
		sb.WriteString("_no combinators_\n")
		return sb.String()
	}
	sb.WriteString("| node | result |\n|---|---:|\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "| %s | %s |\n", id, strconv.FormatFloat(results[id], 'g', -1, 64))
	}
	return sb.String()
}

// PrintResults writes the results table to w, styled by glamour when w is a terminal.
func PrintResults(w io.Writer, title string, results map[string]float64) error {
	md := ResultsMarkdown(title, results)
	if IsTerminal(w) {
		rendered, err := NewRenderer()(md)
		if err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
