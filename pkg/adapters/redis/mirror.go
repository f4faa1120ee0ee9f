// Package redis provides Redis-backed adapters: a display mirror that stores
// and publishes computed values, and a distributed pass lock.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"
)

// Update is the message published on every notification.
type Update struct {
	NodeID string  `json:"node_id"`
	Value  float64 `json:"value"`
}

// Mirror implements ports.DisplayMirror using a Redis hash (last value per
// node) and a pub/sub channel (one message per notification).
type Mirror struct {
	client  backend.UniversalClient
	key     string
	channel string
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithKey sets the hash key holding the mirrored values.
func WithKey(key string) MirrorOption {
	return func(m *Mirror) {
		m.key = key
	}
}

// WithChannel sets the pub/sub channel updates are published on.
func WithChannel(channel string) MirrorOption {
	return func(m *Mirror) {
		m.channel = channel
	}
}

// New creates a mirror connected to the given Redis server.
func New(address, password string, db int, opts ...MirrorOption) *Mirror {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a mirror over an existing client.
func NewFromClient(client backend.UniversalClient, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		client:  client,
		key:     "sluice:display",
		channel: "sluice:display:updates",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Client exposes the underlying client so a Locker can share it.
func (m *Mirror) Client() backend.UniversalClient {
	return m.client
}

// Notify stores the value and publishes an Update in one transaction.
func (m *Mirror) Notify(ctx context.Context, nodeID string, value float64) error {
	payload, err := json.Marshal(Update{NodeID: nodeID, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, m.key, nodeID, strconv.FormatFloat(value, 'g', -1, 64))
	pipe.Publish(ctx, m.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror %s: %w", nodeID, err)
	}
	return nil
}

// Values reads every mirrored value back.
func (m *Mirror) Values(ctx context.Context) (map[string]float64, error) {
	raw, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read display mirror: %w", err)
	}
	out := make(map[string]float64, len(raw))
	for id, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt mirror value for %s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

// Forget removes a node from the mirror.
func (m *Mirror) Forget(ctx context.Context, nodeID string) error {
	return m.client.HDel(ctx, m.key, nodeID).Err()
}

// Subscribe streams published updates until ctx is done.
// The subscription is confirmed before Subscribe returns.
func (m *Mirror) Subscribe(ctx context.Context) (<-chan Update, error) {
	sub := m.client.Subscribe(ctx, m.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", m.channel, err)
	}

	out := make(chan Update)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			var u Update
			if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
				continue
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close closes the underlying client.
func (m *Mirror) Close() error {
	return m.client.Close()
}
