package dsl

import (
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/schema"
)

// Builder manages the graph construction.
type Builder struct {
	name        string
	order       []string
	nodes       map[string]*NodeBuilder
	connections []schema.ConnectionSpec
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add returns the builder for a node, creating it on first use.
// Nodes keep the order in which they were first added.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		spec:    schema.NodeSpec{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Value adds a value node holding v.
func (b *Builder) Value(id string, v float64) *NodeBuilder {
	return b.Add(id).Value(v)
}

// Combinator adds an adding combinator node.
func (b *Builder) Combinator(id string) *NodeBuilder {
	return b.Add(id).Combinator()
}

// Connect wires source.output to target.input.
func (b *Builder) Connect(source, output, target, input string) *Builder {
	b.connections = append(b.connections, schema.ConnectionSpec{
		From: schema.Endpoint(source, output),
		To:   schema.Endpoint(target, input),
	})
	return b
}

// Definition assembles and validates the definition.
func (b *Builder) Definition() (*schema.Definition, error) {
	def := &schema.Definition{
		Name:        b.name,
		Nodes:       make([]schema.NodeSpec, 0, len(b.order)),
		Connections: append([]schema.ConnectionSpec(nil), b.connections...),
	}
	for _, id := range b.order {
		def.Nodes = append(def.Nodes, b.nodes[id].Build())
	}
	if err := schema.Validate(def); err != nil {
		return nil, fmt.Errorf("invalid graph %q: %w", b.name, err)
	}
	return def, nil
}

// Build compiles the graph into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	def, err := b.Definition()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(def), nil
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	spec    schema.NodeSpec
	builder *Builder
}

// Value marks the node as a value node holding v.
func (n *NodeBuilder) Value(v float64) *NodeBuilder {
	n.spec.Kind = string(domain.KindValue)
	n.spec.Value = &v
	return n
}

// Combinator marks the node as an adding combinator.
func (n *NodeBuilder) Combinator() *NodeBuilder {
	n.spec.Kind = string(domain.KindCombinator)
	n.spec.Value = nil
	return n
}

// Label overrides the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.spec.Label = label
	return n
}

// To connects this node's value output to target.input.
func (n *NodeBuilder) To(target, input string) *NodeBuilder {
	n.builder.Connect(n.spec.ID, domain.PortValue, target, input)
	return n
}

// Build returns the underlying spec.
func (n *NodeBuilder) Build() schema.NodeSpec {
	return n.spec
}
