package domain

import (
	"context"
	"time"
)

// Trigger names the reason a recompute pass was started.
type Trigger string

const (
	TriggerManual            Trigger = "manual"
	TriggerValueChanged      Trigger = "value_changed"
	TriggerNodeAdded         Trigger = "node_added"
	TriggerNodeRemoved       Trigger = "node_removed"
	TriggerConnectionCreated Trigger = "connection_created"
	TriggerConnectionRemoved Trigger = "connection_removed"
)

// TopologyEvent is emitted by the graph after a successful mutation.
type TopologyEvent struct {
	Type       Trigger     `json:"type"`
	NodeID     string      `json:"node_id,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
}

// PassEvent describes one reset-and-recompute pass.
type PassEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Trigger   Trigger       `json:"trigger"`
	Sequence  uint64        `json:"sequence"`
	Duration  time.Duration `json:"duration,omitempty"`
	Evaluated int           `json:"evaluated,omitempty"` // number of Combinator nodes fetched
	Err       error         `json:"-"`
}

// NodeEvent reports a freshly evaluated node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
	Kind      Kind      `json:"kind"`
	Outputs   Outputs   `json:"outputs"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnPassStart     func(context.Context, *PassEvent)
	OnPassEnd       func(context.Context, *PassEvent)
	OnNodeEvaluated func(context.Context, *NodeEvent)
}
