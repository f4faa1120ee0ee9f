// Package file reads and writes graph definitions on the local filesystem.
// The format follows the file extension: .yaml/.yml, .json or .hcl.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sluice/pkg/schema"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"gopkg.in/yaml.v3"
)

// Format identifies a definition encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf picks the format from a path's extension. Unknown extensions read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// Loader implements ports.DefinitionLoader for a single definition file.
type Loader struct {
	Path string
}

// New creates a loader for path.
func New(path string) *Loader {
	return &Loader{Path: path}
}

// Load reads, decodes and validates the definition.
func (l *Loader) Load(ctx context.Context) (*schema.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph definition: %w", err)
	}
	def, err := Decode(data, l.Path, FormatOf(l.Path))
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(def); err != nil {
		return nil, fmt.Errorf("invalid graph definition %s: %w", l.Path, err)
	}
	return def, nil
}

// Save writes the definition atomically in the format of the loader's path.
// It writes to a temporary file in the same directory and renames it into place.
func (l *Loader) Save(ctx context.Context, def *schema.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(def, FormatOf(l.Path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure definition directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-"+filepath.Base(l.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.Path); err != nil {
		return fmt.Errorf("failed to rename definition file: %w", err)
	}
	return nil
}

// Decode parses a definition. filename is only used in diagnostics.
func Decode(data []byte, filename string, format Format) (*schema.Definition, error) {
	var def schema.Definition
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	case FormatHCL:
		f, diags := hclparse.NewParser().ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
		}
		if diags := gohcl.DecodeBody(f.Body, nil, &def); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	}
	return &def, nil
}

// Encode renders a definition in the given format.
func Encode(def *schema.Definition, format Format) ([]byte, error) {
	if def == nil {
		return nil, fmt.Errorf("nil definition")
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal definition: %w", err)
		}
		return append(data, '\n'), nil
	case FormatHCL:
		f := hclwrite.NewEmptyFile()
		gohcl.EncodeIntoBody(def, f.Body())
		return f.Bytes(), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("failed to marshal definition: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
