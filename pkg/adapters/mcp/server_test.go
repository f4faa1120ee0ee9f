package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *sluice.Editor) {
	t.Helper()
	ed := sluice.New()
	s := NewServer(ed, "test")
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	for _, args := range []map[string]any{
		{"id": "a", "kind": "value", "value": 1.0},
		{"id": "b", "kind": "value", "value": "1"},
		{"id": "sum", "kind": "combinator"},
	} {
		_, err := s.handleAddNode(ctx, req, args)
		require.NoError(t, err)
	}
	for _, args := range []map[string]any{
		{"from": "a.value", "to": "sum.a"},
		{"from": "b.value", "to": "sum.b"},
	} {
		_, err := s.handleConnect(ctx, req, args)
		require.NoError(t, err)
	}
	return s, ed
}

func TestTools_EditFlow(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleGetResults(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Results["sum"])

	res, err = s.handleSetValue(ctx, req, map[string]any{"node_id": "a", "value": 5.0})
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Results["sum"])

	res, err = s.handleDisconnect(ctx, req, map[string]any{"from": "a.value", "to": "sum.a"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Results["sum"])

	res, err = s.handleDisconnect(ctx, req, map[string]any{"connection_id": "b.value->sum.b"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Results["sum"])

	res, err = s.handleRemoveNode(ctx, req, map[string]any{"node_id": "sum"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)

	res, err = s.handleProcess(ctx, req, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestTools_Errors(t *testing.T) {
	s, ed := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleSetValue(ctx, req, map[string]any{"node_id": "ghost", "value": 1.0})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.handleSetValue(ctx, req, map[string]any{"node_id": "a", "value": "lots"})
	assert.Error(t, err, "non-numeric value is rejected")

	_, err = s.handleSetValue(ctx, req, map[string]any{"node_id": "a", "value": 1.0, "extra": true})
	assert.Error(t, err, "unknown arguments are rejected")

	_, err = s.handleConnect(ctx, req, map[string]any{"from": "sum.value", "to": "sum.a"})
	assert.ErrorIs(t, err, domain.ErrPortOccupied)

	_, err = s.handleConnect(ctx, req, map[string]any{"from": "sum", "to": "sum.a"})
	assert.ErrorIs(t, err, domain.ErrInvalidEndpoint)

	_, err = s.handleAddNode(ctx, req, map[string]any{"id": "x", "kind": "multiply"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	assert.Equal(t, 2.0, ed.Results()["sum"])
}

func TestTools_StructuredWrapper(t *testing.T) {
	s, _ := newTestServer(t)
	handler := mcp.NewStructuredToolHandler(s.handleSetValue)

	req := mcp.CallToolRequest{}
	req.Params.Name = "set_value"
	req.Params.Arguments = map[string]any{"node_id": "sum", "value": 3}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError, "kind mismatch surfaces as a tool error, not a protocol error")

	req.Params.Arguments = map[string]any{"node_id": "b", "value": 3}
	result, err = handler(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":{"sum":4}}`, string(raw))
}
