package sluice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/internal/runtime"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/graph"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/schema"
	"go.opentelemetry.io/otel/trace"
)

// Editor is the high-level entry point for the Sluice library.
// It owns a graph, keeps its Combinator results current and pushes every
// fresh result to the configured display sinks.
type Editor struct {
	Name string

	graph      *graph.Graph
	controller *runtime.Controller
	notifiers  []ports.DisplayNotifier
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	tracer     trace.Tracer

	locker  ports.DistributedLocker
	lockTTL time.Duration

	// suspended mutes automatic passes while a definition is applied.
	suspended atomic.Bool

	// callbacks holds the change callback each Value node carried before the
	// editor wired it, keyed by node.
	callbacks sync.Map
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithName labels the graph in logs and in the distributed lock key.
func WithName(name string) Option {
	return func(e *Editor) {
		e.Name = name
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithNotifiers registers display sinks.
func WithNotifiers(notifiers ...ports.DisplayNotifier) Option {
	return func(e *Editor) {
		e.notifiers = append(e.notifiers, notifiers...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithTracer sets the OpenTelemetry tracer used for pass spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Editor) {
		e.tracer = tracer
	}
}

// WithLocker serializes passes across replicas sharing a display mirror.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Editor) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New creates an empty editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		Name:    "default",
		graph:   graph.New(),
		lockTTL: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("graph", e.Name)

	engine := runtime.NewEngine(e.graph,
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	)
	ctrlOpts := []runtime.ControllerOption{
		runtime.WithNotifiers(e.notifiers...),
		runtime.WithControllerHooks(e.hooks),
		runtime.WithControllerLogger(e.logger),
		runtime.WithTracer(e.tracer),
	}
	if e.locker != nil {
		ctrlOpts = append(ctrlOpts, runtime.WithLocker(e.locker, e.Name, e.lockTTL))
	}
	e.controller = runtime.NewController(engine, e.graph, ctrlOpts...)

	e.graph.Subscribe(e.onTopology)
	return e
}

// Graph exposes the underlying graph for queries.
// Mutations made directly on it still trigger passes.
func (e *Editor) Graph() *graph.Graph {
	return e.graph
}

// AddValue adds a Value node holding v.
func (e *Editor) AddValue(id string, v float64) (*domain.Node, error) {
	n := domain.NewValueNode(id, v, nil)
	return n, e.AddNode(n)
}

// AddCombinator adds an adding Combinator node.
func (e *Editor) AddCombinator(id string) (*domain.Node, error) {
	n := domain.NewCombinatorNode(id)
	return n, e.AddNode(n)
}

// AddNode adds a prepared node. A change callback the node already carries
// keeps running before the editor's own recompute trigger.
func (e *Editor) AddNode(n *domain.Node) error {
	return e.graph.AddNode(n)
}

// RemoveNode deletes a node together with every connection touching it.
func (e *Editor) RemoveNode(id string) error {
	return e.graph.RemoveNode(id)
}

// Connect wires source.output to target.input.
func (e *Editor) Connect(source, output, target, input string) (domain.Connection, error) {
	c := domain.Connect(source, output, target, input)
	return c, e.graph.AddConnection(c)
}

// Disconnect removes a connection.
func (e *Editor) Disconnect(c domain.Connection) error {
	return e.graph.RemoveConnection(c)
}

// DisconnectID removes a connection by its id ("src.out->dst.in").
func (e *Editor) DisconnectID(id string) error {
	return e.graph.RemoveConnectionByID(id)
}

// SetValue edits a Value node, which triggers a recompute pass.
func (e *Editor) SetValue(id string, v float64) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	if n.Kind != domain.KindValue {
		return fmt.Errorf("%w: %s is a %s node", domain.ErrKindMismatch, id, n.Kind)
	}
	n.SetValue(v)
	return nil
}

// Process runs a pass explicitly and reports its error.
func (e *Editor) Process(ctx context.Context) error {
	return e.controller.Trigger(ctx, domain.TriggerManual)
}

// Results returns the Combinator values of the last completed pass.
func (e *Editor) Results() map[string]float64 {
	return e.controller.Results()
}

// Recomputing reports whether a pass is in flight.
func (e *Editor) Recomputing() bool {
	return e.controller.State() == runtime.StateRecomputing
}

// Load applies a definition on top of the current graph and runs one pass.
// Connections in def may only reference nodes declared in def. The definition
// is checked against a scratch copy first, so a rejected definition leaves the
// editor untouched.
func (e *Editor) Load(ctx context.Context, def *schema.Definition) error {
	if err := schema.Validate(def); err != nil {
		return err
	}
	if err := e.dryRun(def); err != nil {
		return err
	}

	e.suspended.Store(true)
	err := apply(e.graph, def)
	e.suspended.Store(false)
	if err != nil {
		return err
	}
	return e.Process(ctx)
}

// View returns a snapshot of the graph including current values and results.
func (e *Editor) View() domain.GraphView {
	v := e.graph.View()
	v.Name = e.Name
	return v
}

// Definition exports the current graph, including current values.
func (e *Editor) Definition() *schema.Definition {
	def := &schema.Definition{Name: e.Name}
	for _, n := range e.graph.Nodes() {
		spec := schema.NodeSpec{ID: n.ID, Kind: string(n.Kind)}
		if n.Label != domain.DefaultLabel(n.Kind) {
			spec.Label = n.Label
		}
		if n.Kind == domain.KindValue {
			v := n.Value()
			spec.Value = &v
		}
		def.Nodes = append(def.Nodes, spec)
	}
	for _, c := range e.graph.Connections() {
		def.Connections = append(def.Connections, schema.ConnectionSpecOf(c))
	}
	return def
}

func (e *Editor) dryRun(def *schema.Definition) error {
	scratch := graph.New()
	for _, n := range e.graph.Nodes() {
		if err := scratch.AddNode(shadow(n)); err != nil {
			return err
		}
	}
	for _, c := range e.graph.Connections() {
		if err := scratch.AddConnection(c); err != nil {
			return err
		}
	}
	return apply(scratch, def)
}

func apply(g *graph.Graph, def *schema.Definition) error {
	for _, spec := range def.Nodes {
		n, err := spec.Node()
		if err != nil {
			return fmt.Errorf("node %s: %w", spec.ID, err)
		}
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("node %s: %w", spec.ID, err)
		}
	}
	for _, spec := range def.Connections {
		c, err := spec.Connection()
		if err != nil {
			return err
		}
		if err := g.AddConnection(c); err != nil {
			return fmt.Errorf("connection %s: %w", c, err)
		}
	}
	return nil
}

// shadow copies the identity and kind of a node, not its callback.
func shadow(n *domain.Node) *domain.Node {
	if n.Kind == domain.KindValue {
		return domain.NewValueNode(n.ID, n.Value(), nil)
	}
	return domain.NewCombinatorNode(n.ID)
}

func (e *Editor) onTopology(evt domain.TopologyEvent) {
	switch evt.Type {
	case domain.TriggerNodeAdded:
		if n, ok := e.graph.Node(evt.NodeID); ok && n.Kind == domain.KindValue {
			id := evt.NodeID
			// A re-added node keeps its first recorded callback, not our wrapper.
			stored, _ := e.callbacks.LoadOrStore(n, n.ChangeCallback())
			prev, _ := stored.(func(float64))
			n.OnChange(func(v float64) {
				if prev != nil {
					prev(v)
				}
				if _, ok := e.graph.Node(id); ok {
					e.trigger(domain.TriggerValueChanged)
				}
			})
		}
	case domain.TriggerNodeRemoved:
		e.forget(evt.NodeID)
	}
	e.trigger(evt.Type)
}

func (e *Editor) trigger(t domain.Trigger) {
	if e.suspended.Load() {
		return
	}
	// The controller logs failures, including lock errors, and reports them
	// to OnPassEnd.
	_ = e.controller.Trigger(context.Background(), t)
}

func (e *Editor) forget(nodeID string) {
	ctx := context.Background()
	for _, n := range e.notifiers {
		mirror, ok := n.(ports.DisplayMirror)
		if !ok {
			continue
		}
		if err := mirror.Forget(ctx, nodeID); err != nil {
			e.logger.Warn("failed to forget mirrored value", "node_id", nodeID, "error", err)
		}
	}
}
