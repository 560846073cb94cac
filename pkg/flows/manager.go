package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates flow access, ensuring safe concurrent writes.
// Unused locks are garbage collected by reference counting.
type Manager struct {
	store ports.FlowStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over store.
func NewManager(store ports.FlowStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(uuid string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[uuid]
	if !exists {
		entry = &lockEntry{}
		m.locks[uuid] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(uuid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[uuid]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, uuid)
	}
}

// Load retrieves a flow from the store.
func (m *Manager) Load(ctx context.Context, uuid string) (*domain.Flow, error) {
	return m.store.Load(ctx, uuid)
}

// Save persists flow, setting its revision to one past the stored one.
// The returned diff is relative to the stored revision and is nil when the
// flow is new.
func (m *Manager) Save(ctx context.Context, flow *domain.Flow) (*domain.FlowDiff, error) {
	if flow == nil || flow.UUID == "" {
		return nil, fmt.Errorf("flow uuid cannot be empty")
	}

	var diff *domain.FlowDiff
	err := m.WithLock(ctx, flow.UUID, func(ctx context.Context) error {
		old, err := m.store.Load(ctx, flow.UUID)
		switch {
		case errors.Is(err, domain.ErrFlowNotFound):
			old = nil
		case err != nil:
			return fmt.Errorf("failed to load current revision: %w", err)
		}

		// The caller's flow keeps its revision until the store accepts it.
		next := *flow
		next.Revision = 1
		if old != nil {
			next.Revision = old.Revision + 1
			diff = domain.Diff(old, &next)
		}

		if err := m.store.Save(ctx, &next); err != nil {
			return err
		}
		flow.Revision = next.Revision
		m.logger.Debug("flow saved", "flow_uuid", flow.UUID, "revision", flow.Revision)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.hooks.OnFlowSaved != nil {
		m.hooks.OnFlowSaved(ctx, &domain.FlowEvent{
			Timestamp: m.now(),
			Type:      domain.EventFlowSaved,
			FlowUUID:  flow.UUID,
			Revision:  flow.Revision,
			Diff:      diff,
		})
	}
	return diff, nil
}

// Delete removes the flow from the store.
func (m *Manager) Delete(ctx context.Context, uuid string) error {
	err := m.WithLock(ctx, uuid, func(ctx context.Context) error {
		return m.store.Delete(ctx, uuid)
	})
	if err != nil {
		return err
	}
	m.logger.Debug("flow deleted", "flow_uuid", uuid)

	if m.hooks.OnFlowDeleted != nil {
		m.hooks.OnFlowDeleted(ctx, &domain.FlowEvent{
			Timestamp: m.now(),
			Type:      domain.EventFlowDeleted,
			FlowUUID:  uuid,
		})
	}
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying flow store.
func (m *Manager) Store() ports.FlowStore {
	return m.store
}

// WithLock executes fn while holding the lock for the flow.
func (m *Manager) WithLock(ctx context.Context, uuid string, fn func(context.Context) error) error {
	entry := m.acquire(uuid)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(uuid)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, uuid, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"flow_uuid", uuid,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
