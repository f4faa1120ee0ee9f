package ports

import "context"

// DisplayNotifier is the boundary between the recompute core and whatever renders results.
// The core notifies by node id; the host owns the mapping from id to its own display handles.
type DisplayNotifier interface {
	// Notify publishes the freshly computed value of a node.
	// Errors are reported to the caller but must not be treated as pass failures.
	Notify(ctx context.Context, nodeID string, value float64) error
}

// NotifierFunc adapts a plain function to DisplayNotifier.
type NotifierFunc func(ctx context.Context, nodeID string, value float64) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, nodeID string, value float64) error {
	return f(ctx, nodeID, value)
}

// DisplayMirror is a DisplayNotifier that remembers the last value per node.
type DisplayMirror interface {
	DisplayNotifier

	// Values returns the last value notified for every node.
	Values(ctx context.Context) (map[string]float64, error)

	// Forget drops the mirrored value of a node (e.g. after it was removed).
	Forget(ctx context.Context, nodeID string) error
}
