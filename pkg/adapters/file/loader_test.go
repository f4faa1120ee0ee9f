package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/sluice/pkg/adapters/file"
	"github.com/aretw0/sluice/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addYAML = `name: add
nodes:
  - {id: a, kind: value, value: 1}
  - {id: b, kind: value, value: 1}
  - {id: sum, kind: combinator, label: Total}
connections:
  - {from: a.value, to: sum.a}
  - {from: b.value, to: sum.b}
`

const addHCL = `
name = "add"

node "a" {
  kind  = "value"
  value = 1
}

node "b" {
  kind  = "value"
  value = 1
}

node "sum" {
  kind  = "combinator"
  label = "Total"
}

connection {
  from = "a.value"
  to   = "sum.a"
}

connection {
  from = "b.value"
  to   = "sum.b"
}
`

const addJSON = `{
  "name": "add",
  "nodes": [
    {"id": "a", "kind": "value", "value": 1},
    {"id": "b", "kind": "value", "value": 1},
    {"id": "sum", "kind": "combinator", "label": "Total"}
  ],
  "connections": [
    {"from": "a.value", "to": "sum.a"},
    {"from": "b.value", "to": "sum.b"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func assertAddDefinition(t *testing.T, def *schema.Definition) {
	t.Helper()
	assert.Equal(t, "add", def.Name)
	require.Len(t, def.Nodes, 3)
	assert.Equal(t, "a", def.Nodes[0].ID)
	require.NotNil(t, def.Nodes[0].Value)
	assert.Equal(t, 1.0, *def.Nodes[0].Value)
	assert.Equal(t, "combinator", def.Nodes[2].Kind)
	assert.Equal(t, "Total", def.Nodes[2].Label)
	assert.Nil(t, def.Nodes[2].Value)
	assert.Equal(t, []schema.ConnectionSpec{
		{From: "a.value", To: "sum.a"},
		{From: "b.value", To: "sum.b"},
	}, def.Connections)
}

func TestLoader_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "graph.yaml", addYAML},
		{"yml", "graph.yml", addYAML},
		{"json", "graph.json", addJSON},
		{"hcl", "graph.hcl", addHCL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := file.New(writeFile(t, tt.file, tt.content)).Load(context.Background())
			require.NoError(t, err)
			assertAddDefinition(t, def)
		})
	}
}

func TestLoader_RoundTrip(t *testing.T) {
	src, err := file.Decode([]byte(addYAML), "graph.yaml", file.FormatYAML)
	require.NoError(t, err)

	for _, ext := range []string{".yaml", ".json", ".hcl"} {
		t.Run(ext, func(t *testing.T) {
			loader := file.New(filepath.Join(t.TempDir(), "nested", "graph"+ext))
			require.NoError(t, loader.Save(context.Background(), src))

			got, err := loader.Load(context.Background())
			require.NoError(t, err)
			assertAddDefinition(t, got)

			entries, err := os.ReadDir(filepath.Dir(loader.Path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files left behind")
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := file.New(filepath.Join(t.TempDir(), "missing.yaml")).Load(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = file.New(writeFile(t, "bad.yaml", "nodes:\n  - {id: a, kind: value, colour: red}\n")).Load(ctx)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = file.New(writeFile(t, "bad.hcl", `node "a" {`)).Load(ctx)
	assert.Error(t, err)

	_, err = file.New(writeFile(t, "invalid.yaml", "nodes:\n  - {id: a, kind: multiplier}\n")).Load(ctx)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 1)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, file.FormatHCL, file.FormatOf("x/graph.HCL"))
	assert.Equal(t, file.FormatJSON, file.FormatOf("graph.json"))
	assert.Equal(t, file.FormatYAML, file.FormatOf("graph.yml"))
	assert.Equal(t, file.FormatYAML, file.FormatOf("graph"))
}
