package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/sluice/internal/runtime"

// State is the controller's position in its two-state machine.
type State string

const (
	StateIdle        State = "idle"
	StateRecomputing State = "recomputing"
)

// Controller turns change triggers into recompute passes.
//
// Passes are serialized: a trigger that arrives while a pass is running marks the
// controller dirty and returns immediately; the running loop then performs one
// more full pass. Any burst of triggers during a pass collapses into that single
// extra pass. The results of the last completed pass are authoritative.
type Controller struct {
	engine    *Engine
	topology  Topology
	notifiers []ports.DisplayNotifier
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	tracer    trace.Tracer

	locker  ports.DistributedLocker
	lockKey string
	lockTTL time.Duration

	mu       sync.Mutex
	state    State
	dirty    bool
	pending  domain.Trigger
	sequence uint64
	results  map[string]float64
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithNotifiers adds display sinks that receive every freshly computed Combinator value.
func WithNotifiers(notifiers ...ports.DisplayNotifier) ControllerOption {
	return func(c *Controller) {
		c.notifiers = append(c.notifiers, notifiers...)
	}
}

// WithControllerHooks registers pass-level observability hooks.
func WithControllerHooks(hooks domain.LifecycleHooks) ControllerOption {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithControllerLogger sets the structured logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer (defaults to the global provider).
func WithTracer(tracer trace.Tracer) ControllerOption {
	return func(c *Controller) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithLocker makes every pass hold a distributed lock on key.
func WithLocker(locker ports.DistributedLocker, key string, ttl time.Duration) ControllerOption {
	return func(c *Controller) {
		c.locker = locker
		c.lockKey = key
		c.lockTTL = ttl
	}
}

// NewController creates a controller driving the given engine.
func NewController(engine *Engine, topology Topology, opts ...ControllerOption) *Controller {
	c := &Controller{
		engine:   engine,
		topology: topology,
		logger:   logging.NewNop(),
		tracer:   otel.Tracer(tracerName),
		state:    StateIdle,
		results:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the Combinator values of the last completed pass.
// A failed pass restores every Combinator's mirrored Result to these values.
func (c *Controller) Results() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.results)
}

// Trigger requests a recompute. If a pass is already running the request is
// coalesced into one follow-up pass and Trigger returns nil immediately.
// Otherwise it runs passes until no trigger is pending. Follow-up passes run
// even if ctx is cancelled meanwhile. Trigger returns the error of the last
// pass, or ctx's error when ctx was cancelled and the last pass succeeded.
func (c *Controller) Trigger(ctx context.Context, trigger domain.Trigger) error {
	c.mu.Lock()
	if c.state == StateRecomputing {
		c.dirty = true
		c.pending = trigger
		c.mu.Unlock()
		c.logger.Debug("trigger coalesced", "trigger", trigger)
		return nil
	}
	c.state = StateRecomputing
	c.mu.Unlock()

	passCtx := ctx
	for {
		err := c.pass(passCtx, trigger)

		c.mu.Lock()
		if !c.dirty {
			c.state = StateIdle
			c.mu.Unlock()
			if err == nil {
				err = ctx.Err()
			}
			return err
		}
		trigger = c.pending
		c.dirty = false
		c.mu.Unlock()

		if ctx.Err() != nil {
			passCtx = context.WithoutCancel(ctx)
		}
	}
}

func (c *Controller) pass(ctx context.Context, trigger domain.Trigger) (err error) {
	c.mu.Lock()
	c.sequence++
	evt := &domain.PassEvent{
		Timestamp: time.Now(),
		Trigger:   trigger,
		Sequence:  c.sequence,
	}
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "sluice.pass", trace.WithAttributes(
		attribute.String("sluice.trigger", string(trigger)),
		attribute.Int64("sluice.sequence", int64(evt.Sequence)),
	))
	defer span.End()

	if c.hooks.OnPassStart != nil {
		c.hooks.OnPassStart(ctx, evt)
	}
	defer func() {
		evt.Duration = time.Since(evt.Timestamp)
		evt.Err = err
		if err != nil {
			c.rollback()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Error("recompute pass failed", "trigger", trigger, "sequence", evt.Sequence, "error", err)
		} else {
			c.logger.Debug("recompute pass completed", "trigger", trigger, "sequence", evt.Sequence,
				"evaluated", evt.Evaluated, "duration", evt.Duration)
		}
		span.SetAttributes(attribute.Int("sluice.evaluated", evt.Evaluated))
		if c.hooks.OnPassEnd != nil {
			c.hooks.OnPassEnd(ctx, evt)
		}
	}()

	if c.locker != nil {
		unlock, lockErr := c.locker.Lock(ctx, c.lockKey, c.lockTTL)
		if lockErr != nil {
			return fmt.Errorf("failed to acquire pass lock: %w", lockErr)
		}
		defer func() {
			if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
				c.logger.Warn("failed to release pass lock", "key", c.lockKey, "error", unlockErr)
			}
		}()
	}

	c.engine.Reset()
	results := make(map[string]float64)
	for _, node := range c.topology.NodesOfKind(domain.KindCombinator) {
		out, err := c.engine.Fetch(ctx, node.ID)
		if err != nil {
			return fmt.Errorf("recompute %s: %w", node.ID, err)
		}
		value := out[domain.PortValue]
		results[node.ID] = value
		evt.Evaluated++
		c.notify(ctx, node.ID, value)
	}

	c.mu.Lock()
	c.results = results
	c.mu.Unlock()
	return nil
}

// rollback puts the mirrored result of every Combinator back to its value in
// the last completed pass, so node views agree with Results.
func (c *Controller) rollback() {
	c.mu.Lock()
	last := maps.Clone(c.results)
	c.mu.Unlock()
	for _, node := range c.topology.NodesOfKind(domain.KindCombinator) {
		node.RestoreResult(last[node.ID])
	}
}

func (c *Controller) notify(ctx context.Context, nodeID string, value float64) {
	for _, n := range c.notifiers {
		if err := n.Notify(ctx, nodeID, value); err != nil {
			c.logger.Warn("display notify failed", "node_id", nodeID, "error", err)
		}
	}
}
