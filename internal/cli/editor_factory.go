package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/adapters/file"
	"github.com/aretw0/sluice/pkg/observability"
)

// NewEditor loads the definition file at path into a fresh editor.
// The graph is named after the definition, or after the file when unnamed.
func NewEditor(ctx context.Context, path string, logger *slog.Logger, opts ...sluice.Option) (*sluice.Editor, error) {
	def, err := file.New(path).Load(ctx)
	if err != nil {
		return nil, err
	}

	name := def.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	editorOpts := []sluice.Option{
		sluice.WithName(name),
		sluice.WithLogger(logger),
		sluice.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	editorOpts = append(editorOpts, opts...)

	editor := sluice.New(editorOpts...)
	if err := editor.Load(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return editor, nil
}
