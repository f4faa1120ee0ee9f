package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/internal/config"
	sluicehttp "github.com/aretw0/sluice/pkg/adapters/http"
	"github.com/aretw0/sluice/pkg/adapters/redis"
	"github.com/aretw0/sluice/pkg/observability"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is an editor wired to the sinks and observability the config asks for.
type Stack struct {
	Editor   *sluice.Editor
	Registry *prometheus.Registry
	Streams  *sluicehttp.StreamManager
	Mirror   *redis.Mirror

	closers []func(context.Context) error
}

// NewStack loads path and wires the editor for long-running commands.
func NewStack(ctx context.Context, path string, cfg config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{
		Registry: prometheus.NewRegistry(),
		Streams:  sluicehttp.NewStreamManager(sluicehttp.WithStreamLogger(logger)),
	}
	s.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := observability.NewMetrics(s.Registry)
	if err != nil {
		return nil, err
	}

	notifiers := []ports.DisplayNotifier{s.Streams}
	opts := []sluice.Option{
		sluice.WithLifecycleHooks(observability.ChainHooks(observability.LoggingHooks(logger), metrics.Hooks())),
	}

	if cfg.Trace.Enabled {
		shutdown, err := observability.InitTracing("sluice", strings.TrimSpace(sluice.Version), os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
		s.closers = append(s.closers, shutdown)
	}

	if cfg.Redis.Enabled() {
		s.Mirror = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithKey(cfg.Redis.Key),
			redis.WithChannel(cfg.Redis.Channel),
		)
		s.closers = append(s.closers, func(context.Context) error { return s.Mirror.Close() })
		notifiers = append(notifiers, s.Mirror)
		if cfg.Redis.Lock {
			opts = append(opts, sluice.WithLocker(redis.NewLocker(s.Mirror.Client(), "sluice:"), cfg.Redis.LockTTL))
		}
		logger.Info("Redis display mirror enabled", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key, "lock", cfg.Redis.Lock)
	}
	opts = append(opts, sluice.WithNotifiers(notifiers...))

	editor, err := NewEditor(ctx, path, logger, opts...)
	if err != nil {
		_ = s.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	s.Editor = editor
	return s, nil
}

// Close releases the Redis client and flushes traces.
func (s *Stack) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	s.closers = nil
	return errors.Join(errs...)
}
