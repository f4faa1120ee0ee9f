package ports

import (
	"context"

	"github.com/aretw0/sluice/pkg/schema"
)

// DefinitionLoader retrieves a graph definition from a backing source.
// This allows the definition format (YAML, JSON, HCL, code) to be decoupled from the editor.
type DefinitionLoader interface {
	Load(ctx context.Context) (*schema.Definition, error)
}
