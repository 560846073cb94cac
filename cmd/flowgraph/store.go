package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/flowgraph/internal/adapters/file"
	"github.com/aretw0/flowgraph/internal/adapters/redis"
	"github.com/aretw0/flowgraph/internal/config"
	"github.com/aretw0/flowgraph/internal/metrics"
	"github.com/aretw0/flowgraph/pkg/adapters/memory"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/flows"
	"github.com/aretw0/flowgraph/pkg/ports"
)

// backend is an opened flow store with whatever the store kind brings
// along.
type backend struct {
	store  ports.FlowStore
	locker ports.DistributedLocker
	close  func() error
}

func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Kind {
	case config.StoreMemory:
		return &backend{store: memory.NewStore(), close: func() error { return nil }}, nil

	case config.StoreFile:
		f, err := codec.ParseFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using file store", "dir", cfg.Dir, "format", f)
		return &backend{store: file.New(cfg.Dir, file.WithFormat(f)), close: func() error { return nil }}, nil

	case config.StoreRedis:
		ttl, err := cfg.Redis.TTLDuration()
		if err != nil {
			return nil, err
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(ttl),
		)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("Using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return &backend{
			store:  s,
			locker: redis.NewLocker(s.Client(), cfg.Redis.Prefix),
			close:  s.Close,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrInvalidStoreKind, cfg.Kind)
}

// newManager wires the configured store behind a flow manager. Store calls
// are counted on m and extra hooks run after the metrics hooks.
func newManager(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, extra ...domain.LifecycleHooks) (*flows.Manager, func() error, error) {
	b, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	hooks := append([]domain.LifecycleHooks{m.Hooks(logger)}, extra...)
	opts := []flows.Option{
		flows.WithLogger(logger),
		flows.WithHooks(domain.CombineHooks(hooks...)),
	}
	if b.locker != nil {
		opts = append(opts, flows.WithLocker(b.locker))
	}
	return flows.NewManager(m.InstrumentStore(b.store), opts...), b.close, nil
}
