package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/sluice/internal/presentation/tui"
)

// RunOptions contains the configuration of the run command.
type RunOptions struct {
	Path     string
	Sets     []string
	JSON     bool
	Watch    bool
	Quiet    bool
	Debounce time.Duration
}

// Report is the JSON document printed by run --json.
type Report struct {
	Name    string             `json:"name"`
	Results map[string]float64 `json:"results"`
}

// Execute handles the run command, dispatching to a single run or watch mode.
func Execute(ctx context.Context, opts RunOptions, logger *slog.Logger, w io.Writer) error {
	if _, _, err := ParseAssignments(opts.Sets); err != nil {
		return err
	}
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, opts, logger, w)
	}
	if !opts.Quiet && !opts.JSON && tui.IsTerminal(w) {
		tui.PrintBanner(w)
	}
	return runOnce(ctx, opts, logger, w)
}

func runOnce(ctx context.Context, opts RunOptions, logger *slog.Logger, w io.Writer) error {
	editor, err := NewEditor(ctx, opts.Path, logger)
	if err != nil {
		return err
	}

	values, order, err := ParseAssignments(opts.Sets)
	if err != nil {
		return err
	}
	for _, id := range order {
		if err := editor.SetValue(id, values[id]); err != nil {
			return fmt.Errorf("--set %s: %w", id, err)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Report{Name: editor.Name, Results: editor.Results()})
	}
	return tui.PrintResults(w, editor.Name, editor.Results())
}
