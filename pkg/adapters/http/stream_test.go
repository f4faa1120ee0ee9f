package http_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/sluice/internal/logging"
	sluicehttp "github.com/aretw0/sluice/pkg/adapters/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamManager_DroppedMessagesAreLogged(t *testing.T) {
	var logs bytes.Buffer
	sm := sluicehttp.NewStreamManager(sluicehttp.WithStreamLogger(logging.NewWithWriter(&logs, slog.LevelDebug)))

	ch, unsubscribe := sm.Subscribe()
	defer unsubscribe()

	for range cap(ch) {
		sm.Broadcast("fill")
	}
	assert.Empty(t, logs.String())

	require.NoError(t, sm.Notify(context.Background(), "sum", 3))
	assert.Contains(t, logs.String(), "Client buffer full")
	assert.Len(t, ch, cap(ch))
	assert.Equal(t, "fill", <-ch)
}
