package memory

import (
	"context"
	"maps"
	"sync"
)

// Mirror implements ports.DisplayMirror in memory.
// Safe for concurrent use.
type Mirror struct {
	values map[string]float64
	mu     sync.RWMutex
}

// NewMirror creates an empty in-memory display mirror.
func NewMirror() *Mirror {
	return &Mirror{
		values: make(map[string]float64),
	}
}

// Notify records the latest value of a node.
func (m *Mirror) Notify(ctx context.Context, nodeID string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[nodeID] = value
	return nil
}

// Values returns a snapshot of all mirrored values.
func (m *Mirror) Values(ctx context.Context) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

// Forget drops the mirrored value of a node.
func (m *Mirror) Forget(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, nodeID)
	return nil
}
