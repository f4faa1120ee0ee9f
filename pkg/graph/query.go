package graph

import (
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
)

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*domain.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.Get(id)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*domain.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*domain.Node, 0, g.nodes.Len())
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		nodes = append(nodes, pair.Value)
	}
	return nodes
}

// NodesOfKind returns the nodes of one kind in insertion order.
func (g *Graph) NodesOfKind(kind domain.Kind) []*domain.Node {
	var nodes []*domain.Node
	for _, n := range g.Nodes() {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Connections returns all connections in creation order.
func (g *Graph) Connections() []domain.Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	conns := make([]domain.Connection, 0, g.connections.Len())
	for pair := g.connections.Oldest(); pair != nil; pair = pair.Next() {
		conns = append(conns, pair.Value)
	}
	return conns
}

// Connection returns the connection with the given id.
func (g *Graph) Connection(id string) (domain.Connection, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connections.Get(id)
}

// InputsOf maps each connected input port of the node to the connection feeding it.
func (g *Graph) InputsOf(id string) (map[string]domain.Connection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes.Get(id); !ok {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	inputs := make(map[string]domain.Connection, len(g.feeds[id]))
	for port, connID := range g.feeds[id] {
		if c, ok := g.connections.Get(connID); ok {
			inputs[port] = c
		}
	}
	return inputs, nil
}

// OutputsOf returns the connections leaving the node.
func (g *Graph) OutputsOf(id string) ([]domain.Connection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes.Get(id); !ok {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	conns := make([]domain.Connection, 0, len(g.outgoing[id]))
	for connID := range g.outgoing[id] {
		if c, ok := g.connections.Get(connID); ok {
			conns = append(conns, c)
		}
	}
	return conns, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.Len()
}

// View returns a point-in-time snapshot of every node and connection.
func (g *Graph) View() domain.GraphView {
	nodes := g.Nodes()
	v := domain.GraphView{
		Nodes:       make([]domain.NodeView, 0, len(nodes)),
		Connections: g.Connections(),
	}
	for _, n := range nodes {
		v.Nodes = append(v.Nodes, n.View())
	}
	return v
}
