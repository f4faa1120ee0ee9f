package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/sluice/pkg/schema"
)

// Loader implements ports.DefinitionLoader over a definition held in memory.
type Loader struct {
	def *schema.Definition
}

// NewLoader creates a loader serving a copy of def.
func NewLoader(def *schema.Definition) *Loader {
	return &Loader{def: def.Clone()}
}

// Load returns a fresh copy of the definition so callers can't mutate the loader.
func (l *Loader) Load(ctx context.Context) (*schema.Definition, error) {
	if l.def == nil {
		return nil, fmt.Errorf("memory loader: no definition")
	}
	return l.def.Clone(), nil
}
