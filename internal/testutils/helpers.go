package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// AddGraphYAML renders the canonical fixture: two value nodes a and b feeding
// the combinator sum.
func AddGraphYAML(name string, a, b float64) string {
	return fmt.Sprintf(`name: %s
nodes:
  - {id: a, kind: value, value: %s}
  - {id: b, kind: value, value: %s}
  - {id: sum, kind: combinator}
connections:
  - {from: a.value, to: sum.a}
  - {from: b.value, to: sum.b}
`, name, formatFloat(a), formatFloat(b))
}

// WriteFile writes body to filename inside a fresh temp dir and returns its path.
// It fails the test immediately on error.
func WriteFile(t *testing.T, filename, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	Rewrite(t, path, body)
	return path
}

// Rewrite replaces the content of an existing fixture.
func Rewrite(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644), "Failed to write fixture %s", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
