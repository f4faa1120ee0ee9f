package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// Definition is the serializable description of a graph.
type Definition struct {
	Name        string           `yaml:"name,omitempty" json:"name,omitempty" hcl:"name,optional"`
	Nodes       []NodeSpec       `yaml:"nodes" json:"nodes" hcl:"node,block"`
	Connections []ConnectionSpec `yaml:"connections,omitempty" json:"connections,omitempty" hcl:"connection,block"`
}

// NodeSpec describes one node. Value is only meaningful for value nodes.
type NodeSpec struct {
	ID    string   `yaml:"id" json:"id" hcl:"id,label"`
	Kind  string   `yaml:"kind" json:"kind" hcl:"kind"`
	Label string   `yaml:"label,omitempty" json:"label,omitempty" hcl:"label,optional"`
	Value *float64 `yaml:"value,omitempty" json:"value,omitempty" hcl:"value,optional"`
}

// ConnectionSpec wires an output endpoint to an input endpoint.
// Endpoints are written "node.port"; the node id is everything before the last dot.
type ConnectionSpec struct {
	From string `yaml:"from" json:"from" hcl:"from"`
	To   string `yaml:"to" json:"to" hcl:"to"`
}

// ParseEndpoint splits "node.port" into its parts.
func ParseEndpoint(s string) (node, port string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("endpoint %q: expected node.port", s)
	}
	return s[:i], s[i+1:], nil
}

// Endpoint formats a node/port pair the way ParseEndpoint reads it.
func Endpoint(node, port string) string {
	return node + "." + port
}

// Connection converts the spec into a domain connection.
func (c ConnectionSpec) Connection() (domain.Connection, error) {
	src, out, err := ParseEndpoint(c.From)
	if err != nil {
		return domain.Connection{}, err
	}
	dst, in, err := ParseEndpoint(c.To)
	if err != nil {
		return domain.Connection{}, err
	}
	return domain.Connect(src, out, dst, in), nil
}

// ConnectionSpecOf is the inverse of ConnectionSpec.Connection.
func ConnectionSpecOf(c domain.Connection) ConnectionSpec {
	return ConnectionSpec{
		From: Endpoint(c.Source, c.SourceOutput),
		To:   Endpoint(c.Target, c.TargetInput),
	}
}

// Node builds the domain node described by the spec.
func (n NodeSpec) Node() (*domain.Node, error) {
	var node *domain.Node
	switch domain.Kind(n.Kind) {
	case domain.KindValue:
		var v float64
		if n.Value != nil {
			v = *n.Value
		}
		node = domain.NewValueNode(n.ID, v, nil)
	case domain.KindCombinator:
		node = domain.NewCombinatorNode(n.ID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, n.Kind)
	}
	if n.Label != "" {
		node.Label = n.Label
	}
	return node, nil
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{
		Name:        d.Name,
		Nodes:       make([]NodeSpec, len(d.Nodes)),
		Connections: append([]ConnectionSpec(nil), d.Connections...),
	}
	for i, n := range d.Nodes {
		if n.Value != nil {
			v := *n.Value
			n.Value = &v
		}
		out.Nodes[i] = n
	}
	return out
}
