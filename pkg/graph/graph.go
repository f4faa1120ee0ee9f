package graph

import (
	"fmt"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Observer is notified after every successful mutation of the graph.
// Observers run outside the graph lock, so they may query the graph freely.
type Observer func(domain.TopologyEvent)

// Graph is the mutable collection of nodes and the connections between their ports.
// All operations are concurrency-safe.
type Graph struct {
	mu sync.RWMutex

	nodes       *orderedmap.OrderedMap[string, *domain.Node]
	connections *orderedmap.OrderedMap[string, domain.Connection]

	// feeds indexes target node -> input port -> connection id.
	feeds map[string]map[string]string
	// outgoing indexes source node -> set of connection ids.
	outgoing map[string]map[string]struct{}

	observers []Observer
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:       orderedmap.New[string, *domain.Node](),
		connections: orderedmap.New[string, domain.Connection](),
		feeds:       make(map[string]map[string]string),
		outgoing:    make(map[string]map[string]struct{}),
	}
}

// Subscribe registers an observer for topology events.
func (g *Graph) Subscribe(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, o)
}

func (g *Graph) emit(evt domain.TopologyEvent) {
	g.mu.RLock()
	observers := make([]Observer, len(g.observers))
	copy(observers, g.observers)
	g.mu.RUnlock()

	for _, o := range observers {
		o(evt)
	}
}

// AddNode inserts a node. A node without an id is assigned a random UUID.
func (g *Graph) AddNode(n *domain.Node) error {
	if n == nil {
		return fmt.Errorf("nil node")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	g.mu.Lock()
	if _, exists := g.nodes.Get(n.ID); exists {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, n.ID)
	}
	g.nodes.Set(n.ID, n)
	g.mu.Unlock()

	g.emit(domain.TopologyEvent{Type: domain.TriggerNodeAdded, NodeID: n.ID})
	return nil
}

// RemoveNode deletes a node and every connection touching it.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	if _, exists := g.nodes.Get(id); !exists {
		g.mu.Unlock()
		return fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	var removed []domain.Connection
	for pair := g.connections.Oldest(); pair != nil; pair = pair.Next() {
		c := pair.Value
		if c.Source == id || c.Target == id {
			removed = append(removed, c)
		}
	}
	for _, c := range removed {
		g.unlink(c)
	}
	g.nodes.Delete(id)
	delete(g.feeds, id)
	delete(g.outgoing, id)
	g.mu.Unlock()

	for i := range removed {
		g.emit(domain.TopologyEvent{Type: domain.TriggerConnectionRemoved, Connection: &removed[i]})
	}
	g.emit(domain.TopologyEvent{Type: domain.TriggerNodeRemoved, NodeID: id})
	return nil
}

// AddConnection joins an output port of one node to an input port of another.
// The graph is left unchanged if the connection is rejected.
func (g *Graph) AddConnection(c domain.Connection) error {
	g.mu.Lock()
	if err := g.checkConnection(c); err != nil {
		g.mu.Unlock()
		return err
	}
	g.link(c)
	g.mu.Unlock()

	g.emit(domain.TopologyEvent{Type: domain.TriggerConnectionCreated, Connection: &c})
	return nil
}

// RemoveConnection deletes a connection.
func (g *Graph) RemoveConnection(c domain.Connection) error {
	return g.RemoveConnectionByID(c.ID())
}

// RemoveConnectionByID deletes the connection with the given id.
func (g *Graph) RemoveConnectionByID(id string) error {
	g.mu.Lock()
	c, exists := g.connections.Get(id)
	if !exists {
		g.mu.Unlock()
		return fmt.Errorf("%w: connection %s", domain.ErrNotFound, id)
	}
	g.unlink(c)
	g.mu.Unlock()

	g.emit(domain.TopologyEvent{Type: domain.TriggerConnectionRemoved, Connection: &c})
	return nil
}

// checkConnection must be called with the lock held.
func (g *Graph) checkConnection(c domain.Connection) error {
	src, ok := g.nodes.Get(c.Source)
	if !ok {
		return fmt.Errorf("%w: source node %s not found", domain.ErrInvalidEndpoint, c.Source)
	}
	dst, ok := g.nodes.Get(c.Target)
	if !ok {
		return fmt.Errorf("%w: target node %s not found", domain.ErrInvalidEndpoint, c.Target)
	}

	out, ok := src.Port(c.SourceOutput)
	if !ok || out.Direction != domain.DirectionOutput {
		return fmt.Errorf("%w: %s has no output port %q", domain.ErrInvalidEndpoint, c.Source, c.SourceOutput)
	}
	in, ok := dst.Port(c.TargetInput)
	if !ok || in.Direction != domain.DirectionInput {
		return fmt.Errorf("%w: %s has no input port %q", domain.ErrInvalidEndpoint, c.Target, c.TargetInput)
	}

	if existing, ok := g.feeds[c.Target][c.TargetInput]; ok {
		return fmt.Errorf("%w: %s.%s is fed by %s", domain.ErrPortOccupied, c.Target, c.TargetInput, existing)
	}

	if c.Source == c.Target || g.reachable(c.Target, c.Source) {
		return fmt.Errorf("%w: %s would close a loop", domain.ErrCycle, c.ID())
	}
	return nil
}

// reachable reports whether `to` can be reached from `from` following connections
// downstream. Must be called with the lock held.
func (g *Graph) reachable(from, to string) bool {
	visited := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		for connID := range g.outgoing[id] {
			if c, ok := g.connections.Get(connID); ok {
				stack = append(stack, c.Target)
			}
		}
	}
	return false
}

func (g *Graph) link(c domain.Connection) {
	id := c.ID()
	g.connections.Set(id, c)

	if g.feeds[c.Target] == nil {
		g.feeds[c.Target] = make(map[string]string)
	}
	g.feeds[c.Target][c.TargetInput] = id

	if g.outgoing[c.Source] == nil {
		g.outgoing[c.Source] = make(map[string]struct{})
	}
	g.outgoing[c.Source][id] = struct{}{}
}

func (g *Graph) unlink(c domain.Connection) {
	id := c.ID()
	g.connections.Delete(id)
	if ports, ok := g.feeds[c.Target]; ok {
		delete(ports, c.TargetInput)
	}
	if conns, ok := g.outgoing[c.Source]; ok {
		delete(conns, id)
	}
}
