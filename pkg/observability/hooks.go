package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sluice/pkg/domain"
)

// ChainHooks fans every lifecycle event out to each set of hooks in order.
func ChainHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPassStart: func(ctx context.Context, e *domain.PassEvent) {
			for _, h := range all {
				if h.OnPassStart != nil {
					h.OnPassStart(ctx, e)
				}
			}
		},
		OnPassEnd: func(ctx context.Context, e *domain.PassEvent) {
			for _, h := range all {
				if h.OnPassEnd != nil {
					h.OnPassEnd(ctx, e)
				}
			}
		},
		OnNodeEvaluated: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range all {
				if h.OnNodeEvaluated != nil {
					h.OnNodeEvaluated(ctx, e)
				}
			}
		},
	}
}

// LoggingHooks logs pass boundaries at info and node evaluations at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPassEnd: func(ctx context.Context, e *domain.PassEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "pass_failed", "trigger", e.Trigger, "sequence", e.Sequence, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, "pass_end",
				"trigger", e.Trigger,
				"sequence", e.Sequence,
				"evaluated", e.Evaluated,
				"duration", e.Duration,
			)
		},
		OnNodeEvaluated: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_evaluated", "node_id", e.NodeID, "kind", e.Kind, "value", e.Outputs[domain.PortValue])
		},
	}
}
