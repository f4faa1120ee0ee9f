package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/internal/testutils"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, path string, a float64) {
	t.Helper()
	testutils.Rewrite(t, path, testutils.AddGraphYAML("demo", a, 1))
}

// syncBuffer lets the watcher write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestParseAssignments(t *testing.T) {
	values, order, err := ParseAssignments([]string{"a=5", " b = -1.5 ", "a=7"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 7, "b": -1.5}, values)
	assert.Equal(t, []string{"a", "b"}, order)

	for _, bad := range []string{"a", "=1", "a=x"} {
		_, _, err := ParseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("debug")
	require.NoError(t, err)
	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestExecute_PrintsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	writeGraph(t, path, 1)

	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{Path: path, Sets: []string{"a=5"}}, logging.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# demo")
	assert.Contains(t, out.String(), "| sum | 6 |")
}

func TestExecute_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	writeGraph(t, path, 2)

	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), RunOptions{Path: path, JSON: true}, logging.NewNop(), &out))

	var report Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, Report{Name: "demo", Results: map[string]float64{"sum": 3}}, report)
}

func TestExecute_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	writeGraph(t, path, 1)
	ctx := context.Background()

	err := Execute(ctx, RunOptions{Path: path, Sets: []string{"sum=1"}}, logging.NewNop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrKindMismatch)

	err = Execute(ctx, RunOptions{Path: path, Sets: []string{"ghost=1"}}, logging.NewNop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = Execute(ctx, RunOptions{Path: path, Sets: []string{"oops"}}, logging.NewNop(), &bytes.Buffer{})
	assert.Error(t, err)

	err = Execute(ctx, RunOptions{Path: path, Watch: true, JSON: true}, logging.NewNop(), &bytes.Buffer{})
	assert.Error(t, err)

	err = Execute(ctx, RunOptions{Path: filepath.Join(t.TempDir(), "missing.yaml")}, logging.NewNop(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewEditor_NamesAfterFile(t *testing.T) {
	path := testutils.WriteFile(t, "unnamed.json", `{"nodes":[{"id":"s","kind":"combinator"}]}`)

	editor, err := NewEditor(context.Background(), path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "unnamed", editor.Name)
	assert.Equal(t, map[string]float64{"s": 0}, editor.Results())
}

func TestRunWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	writeGraph(t, path, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(ctx, RunOptions{Path: path, Debounce: 10 * time.Millisecond}, logging.NewNop(), out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "| sum | 2 |")
	}, 2*time.Second, 10*time.Millisecond)

	writeGraph(t, path, 41)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "| sum | 42 |")
	}, 2*time.Second, 10*time.Millisecond)

	// A broken file is reported and the watcher keeps going.
	testutils.Rewrite(t, path, "nodes: [{id: a, kind: mystery}]\n")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), ">>> Error:")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRunWatch_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	writeGraph(t, path, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(ctx, RunOptions{Path: path, Debounce: 10 * time.Millisecond}, logging.NewNop(), out)
	}()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "| sum | 2 |")
	}, 2*time.Second, 10*time.Millisecond)

	testutils.Rewrite(t, filepath.Join(dir, "notes.txt"), "unrelated")
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, out.String(), "Change detected")

	// Replacing the file by rename still counts as a change.
	tmp := filepath.Join(dir, "demo.yaml.tmp")
	writeGraph(t, tmp, 9)
	require.NoError(t, os.Rename(tmp, path))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "| sum | 10 |")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "Change detected"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
