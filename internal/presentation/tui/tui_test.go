package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsMarkdown(t *testing.T) {
	md := ResultsMarkdown("demo", map[string]float64{"z": 1.5, "a": 6})
	assert.Equal(t, "# demo\n\n| node | result |\n|---|---:|\n| a | 6 |\n| z | 1.5 |\n", md)

	assert.Contains(t, ResultsMarkdown("", nil), "_no combinators_")
}

func TestPrintResults_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintResults(&buf, "", map[string]float64{"sum": 2}))
	assert.Equal(t, "| node | result |\n|---|---:|\n| sum | 2 |\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("| node | result |\n|---|---:|\n| sum | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "sum")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.True(t, strings.Count(buf.String(), "\n") >= 5)
	assert.Contains(t, buf.String(), "|___/")
}
