package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
)

// Topology is the read side of the graph the engine evaluates.
type Topology interface {
	Node(id string) (*domain.Node, bool)
	InputsOf(id string) (map[string]domain.Connection, error)
	NodesOfKind(kind domain.Kind) []*domain.Node
}

// Engine evaluates nodes by memoized recursive dependency resolution.
// The evaluation cache lives for one pass: Reset discards it.
// An Engine is not safe for concurrent use; the Controller owns it.
type Engine struct {
	topology Topology
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	cache      map[string]domain.Outputs
	inProgress map[string]bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over the given topology.
func NewEngine(topology Topology, opts ...EngineOption) *Engine {
	e := &Engine{
		topology:   topology,
		logger:     logging.NewNop(),
		cache:      make(map[string]domain.Outputs),
		inProgress: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset clears the evaluation cache.
func (e *Engine) Reset() {
	clear(e.cache)
	clear(e.inProgress)
}

// Cached returns the memoized outputs of a node for the current pass.
func (e *Engine) Cached(id string) (domain.Outputs, bool) {
	out, ok := e.cache[id]
	return out, ok
}

// Fetch returns the outputs of a node, evaluating its upstream dependencies first.
// On failure the whole cache is discarded so no partial entry survives the pass.
func (e *Engine) Fetch(ctx context.Context, id string) (domain.Outputs, error) {
	out, err := e.fetch(ctx, id)
	if err != nil {
		e.Reset()
		return nil, err
	}
	return out, nil
}

func (e *Engine) fetch(ctx context.Context, id string) (domain.Outputs, error) {
	if out, ok := e.cache[id]; ok {
		return out, nil
	}
	if e.inProgress[id] {
		return nil, fmt.Errorf("%w: node %s depends on itself", domain.ErrCycle, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node, ok := e.topology.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	e.inProgress[id] = true
	defer delete(e.inProgress, id)

	feeds, err := e.topology.InputsOf(id)
	if err != nil {
		return nil, err
	}

	inputs := make(domain.Inputs, len(feeds))
	for _, port := range node.InputPorts() {
		c, ok := feeds[port]
		if !ok {
			continue
		}
		upstream, err := e.fetch(ctx, c.Source)
		if err != nil {
			return nil, err
		}
		v, ok := upstream[c.SourceOutput]
		if !ok {
			return nil, fmt.Errorf("%w: %s produced no %q output", domain.ErrInvalidEndpoint, c.Source, c.SourceOutput)
		}
		inputs[port] = append(inputs[port], v)
	}

	out, err := node.Evaluate(inputs)
	if err != nil {
		return nil, err
	}
	e.cache[id] = out

	e.logger.Debug("node evaluated", "node_id", id, "kind", node.Kind, "outputs", out)
	if e.hooks.OnNodeEvaluated != nil {
		e.hooks.OnNodeEvaluated(ctx, &domain.NodeEvent{
			Timestamp: time.Now(),
			NodeID:    id,
			Kind:      node.Kind,
			Outputs:   out,
		})
	}

	return out, nil
}
