package domain

import (
	"fmt"
	"sync"
)

// Kind discriminates the node variants the engine knows how to evaluate.
type Kind string

const (
	// KindValue is a source node holding a single number.
	KindValue Kind = "value"
	// KindCombinator has two numeric inputs and one output (their sum),
	// mirrored into a visible Result field.
	KindCombinator Kind = "combinator"
)

// Outputs maps output port names to computed values.
type Outputs map[string]float64

// Inputs maps input port names to the values collected from feeding connections.
type Inputs map[string][]float64

// Node represents a logical unit in the dataflow graph.
// Kind-specific state lives behind a mutex so hosts may read it while a pass runs.
type Node struct {
	ID    string
	Kind  Kind
	Label string

	mu       sync.RWMutex
	value    float64
	result   float64
	onChange func(float64)
}

// NewValueNode creates a Value node with the given initial value and an optional
// change callback. An editor that adopts the node calls onChange before its own
// recompute trigger.
func NewValueNode(id string, initial float64, onChange func(float64)) *Node {
	return &Node{
		ID:       id,
		Kind:     KindValue,
		Label:    DefaultLabel(KindValue),
		value:    initial,
		onChange: onChange,
	}
}

// NewCombinatorNode creates a Combinator node whose mirrored result starts at 0.
func NewCombinatorNode(id string) *Node {
	return &Node{
		ID:    id,
		Kind:  KindCombinator,
		Label: DefaultLabel(KindCombinator),
	}
}

// DefaultLabel is the display label a node of kind k starts with.
func DefaultLabel(k Kind) string {
	switch k {
	case KindValue:
		return "Number"
	case KindCombinator:
		return "Add"
	}
	return ""
}

// Ports returns the port table of the node's kind.
func (n *Node) Ports() []Port {
	switch n.Kind {
	case KindValue:
		return valuePorts
	case KindCombinator:
		return combinatorPorts
	}
	return nil
}

// Port looks up a port by name.
func (n *Node) Port(name string) (Port, bool) {
	for _, p := range n.Ports() {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// InputPorts returns the names of the node's input ports in declaration order.
func (n *Node) InputPorts() []string {
	var names []string
	for _, p := range n.Ports() {
		if p.Direction == DirectionInput {
			names = append(names, p.Name)
		}
	}
	return names
}

// OnChange registers (or replaces) the callback fired by SetValue.
func (n *Node) OnChange(fn func(float64)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// ChangeCallback returns the registered change callback, or nil.
func (n *Node) ChangeCallback() func(float64) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.onChange
}

// SetValue replaces the held value and invokes the change callback, if any.
// Only meaningful for KindValue nodes.
func (n *Node) SetValue(v float64) {
	n.mu.Lock()
	n.value = v
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Value returns the held value of a Value node.
func (n *Node) Value() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// Result returns the mirrored result of a Combinator node.
func (n *Node) Result() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.result
}

// RestoreResult overwrites the mirrored result of a Combinator node.
// The controller uses it to roll back a pass that failed partway.
func (n *Node) RestoreResult(v float64) {
	n.mu.Lock()
	n.result = v
	n.mu.Unlock()
}

// Produce reads the current value. It never fails.
func (n *Node) Produce() Outputs {
	return Outputs{PortValue: n.Value()}
}

// Compute sums the first element of inputs "a" and "b", treating a missing or
// empty list as 0. Extra values on a port are ignored: only the first feeding
// connection counts.
func (n *Node) Compute(inputs Inputs) Outputs {
	sum := first(inputs[PortA]) + first(inputs[PortB])

	n.mu.Lock()
	n.result = sum
	n.mu.Unlock()

	return Outputs{PortValue: sum}
}

// Evaluate dispatches on Kind.
func (n *Node) Evaluate(inputs Inputs) (Outputs, error) {
	switch n.Kind {
	case KindValue:
		return n.Produce(), nil
	case KindCombinator:
		return n.Compute(inputs), nil
	}
	return nil, fmt.Errorf("%w: %q (node %s)", ErrUnknownKind, n.Kind, n.ID)
}

func first(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[0]
}

// NodeView is a serializable snapshot of a Node, used by adapters.
type NodeView struct {
	ID     string   `json:"id" yaml:"id"`
	Kind   Kind     `json:"kind" yaml:"kind"`
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
	Ports  []Port   `json:"ports" yaml:"ports"`
	Value  *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Result *float64 `json:"result,omitempty" yaml:"result,omitempty"`
}

// View returns a point-in-time snapshot of the node.
func (n *Node) View() NodeView {
	v := NodeView{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Label,
		Ports: n.Ports(),
	}
	switch n.Kind {
	case KindValue:
		val := n.Value()
		v.Value = &val
	case KindCombinator:
		res := n.Result()
		v.Result = &res
	}
	return v
}

// GraphView is a serializable snapshot of a whole graph.
type GraphView struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes       []NodeView   `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}
