package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAddGraph builds the canonical a + b -> sum graph.
func newAddGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddNode(domain.NewValueNode("a", 1, nil)))
	require.NoError(t, g.AddNode(domain.NewValueNode("b", 1, nil)))
	require.NoError(t, g.AddNode(domain.NewCombinatorNode("sum")))
	require.NoError(t, g.AddConnection(domain.Connect("a", domain.PortValue, "sum", domain.PortA)))
	require.NoError(t, g.AddConnection(domain.Connect("b", domain.PortValue, "sum", domain.PortB)))
	return g
}

func TestAddNode_Duplicate(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(domain.NewValueNode("a", 1, nil)))

	err := g.AddNode(domain.NewValueNode("a", 2, nil))
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, 1, g.Len())
}

func TestAddNode_GeneratesID(t *testing.T) {
	g := New()
	n := domain.NewCombinatorNode("")
	require.NoError(t, g.AddNode(n))
	assert.NotEmpty(t, n.ID)

	got, ok := g.Node(n.ID)
	require.True(t, ok)
	assert.Same(t, n, got)
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"z", "m", "a"} {
		require.NoError(t, g.AddNode(domain.NewValueNode(id, 0, nil)))
	}

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"z", "m", "a"}, ids)
}

func TestAddConnection_InvalidEndpoints(t *testing.T) {
	g := newAddGraph(t)
	require.NoError(t, g.AddNode(domain.NewCombinatorNode("other")))

	tests := []struct {
		name string
		conn domain.Connection
	}{
		{"missing source", domain.Connect("ghost", domain.PortValue, "other", domain.PortA)},
		{"missing target", domain.Connect("a", domain.PortValue, "ghost", domain.PortA)},
		{"missing source port", domain.Connect("a", "nope", "other", domain.PortA)},
		{"missing target port", domain.Connect("a", domain.PortValue, "other", "nope")},
		{"source is an input", domain.Connect("sum", domain.PortA, "other", domain.PortA)},
		{"target is an output", domain.Connect("a", domain.PortValue, "other", domain.PortValue)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := g.Connections()
			err := g.AddConnection(tt.conn)
			assert.ErrorIs(t, err, domain.ErrInvalidEndpoint)
			assert.Equal(t, before, g.Connections())
		})
	}
}

func TestAddConnection_PortOccupied(t *testing.T) {
	g := newAddGraph(t)
	require.NoError(t, g.AddNode(domain.NewValueNode("c", 9, nil)))

	err := g.AddConnection(domain.Connect("c", domain.PortValue, "sum", domain.PortA))
	assert.ErrorIs(t, err, domain.ErrPortOccupied)

	inputs, err := g.InputsOf("sum")
	require.NoError(t, err)
	assert.Equal(t, "a", inputs[domain.PortA].Source, "original connection must remain intact")
}

func TestAddConnection_FanOut(t *testing.T) {
	g := newAddGraph(t)
	require.NoError(t, g.AddNode(domain.NewCombinatorNode("sum2")))
	require.NoError(t, g.AddConnection(domain.Connect("a", domain.PortValue, "sum2", domain.PortA)))

	outs, err := g.OutputsOf("a")
	require.NoError(t, err)
	assert.Len(t, outs, 2)
}

func TestAddConnection_Cycle(t *testing.T) {
	g := New()
	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, g.AddNode(domain.NewCombinatorNode(id)))
	}
	require.NoError(t, g.AddConnection(domain.Connect("x", domain.PortValue, "y", domain.PortA)))
	require.NoError(t, g.AddConnection(domain.Connect("y", domain.PortValue, "z", domain.PortA)))

	before := g.Connections()

	err := g.AddConnection(domain.Connect("z", domain.PortValue, "x", domain.PortA))
	assert.ErrorIs(t, err, domain.ErrCycle)

	err = g.AddConnection(domain.Connect("x", domain.PortValue, "x", domain.PortB))
	assert.ErrorIs(t, err, domain.ErrCycle, "self loops are cycles")

	assert.Equal(t, before, g.Connections(), "graph must be unchanged")
}

func TestRemoveNode_Cascades(t *testing.T) {
	g := newAddGraph(t)

	require.NoError(t, g.RemoveNode("a"))

	for _, c := range g.Connections() {
		_, srcOK := g.Node(c.Source)
		_, dstOK := g.Node(c.Target)
		assert.True(t, srcOK && dstOK, "connection %s references a missing node", c.ID())
	}
	assert.Len(t, g.Connections(), 1)

	inputs, err := g.InputsOf("sum")
	require.NoError(t, err)
	_, fed := inputs[domain.PortA]
	assert.False(t, fed)
}

func TestRemoveNode_NotFound(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.RemoveNode("ghost"), domain.ErrNotFound)
}

func TestRemoveConnection(t *testing.T) {
	g := newAddGraph(t)
	c := domain.Connect("a", domain.PortValue, "sum", domain.PortA)

	require.NoError(t, g.RemoveConnection(c))
	assert.ErrorIs(t, g.RemoveConnection(c), domain.ErrNotFound)

	// The freed port accepts a new feeder.
	require.NoError(t, g.AddConnection(c))
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	g := New()
	var events []domain.Trigger
	g.Subscribe(func(e domain.TopologyEvent) { events = append(events, e.Type) })

	require.NoError(t, g.AddNode(domain.NewValueNode("a", 1, nil)))
	require.NoError(t, g.AddNode(domain.NewCombinatorNode("sum")))
	require.NoError(t, g.AddConnection(domain.Connect("a", domain.PortValue, "sum", domain.PortA)))
	_ = g.AddConnection(domain.Connect("a", domain.PortValue, "sum", domain.PortA)) // rejected, no event
	require.NoError(t, g.RemoveNode("a"))

	assert.Equal(t, []domain.Trigger{
		domain.TriggerNodeAdded,
		domain.TriggerNodeAdded,
		domain.TriggerConnectionCreated,
		domain.TriggerConnectionRemoved,
		domain.TriggerNodeRemoved,
	}, events)
}

func TestGraph_ConcurrentAccess(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(domain.NewCombinatorNode("sink")))
	numGoroutines := 50
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("v%d", i)
			if err := g.AddNode(domain.NewValueNode(id, float64(i), nil)); err != nil {
				t.Errorf("add node %s: %v", id, err)
			}
			_ = g.Nodes()
			_ = g.Connections()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines+1, g.Len())
}
