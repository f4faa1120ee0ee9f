package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/sluice/internal/logging"
)

// Update is the SSE payload for one display notification.
type Update struct {
	NodeID string  `json:"node_id"`
	Value  float64 `json:"value"`
}

// StreamManager handles active SSE connections.
// It implements ports.DisplayNotifier so the editor can push results straight to clients.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithStreamLogger sets the logger that reports dropped messages.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Subscribe registers a client. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber, dropping it for clients whose buffer is full.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Notify broadcasts a display update.
func (sm *StreamManager) Notify(ctx context.Context, nodeID string, value float64) error {
	payload, err := json.Marshal(Update{NodeID: nodeID, Value: value})
	if err != nil {
		return err
	}
	sm.Broadcast(string(payload))
	return nil
}
