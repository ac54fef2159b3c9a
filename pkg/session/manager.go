package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/pkg/ports"
)

// DefaultLockTTL bounds how long one operation may hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates anchor access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.BlobStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger // Logger for internal events (like deferred errors)
}

var _ ports.BlobStore = (*Manager)(nil)

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
		m.ttl = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given blob store.
func NewManager(store ports.BlobStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultLockTTL,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(anchor) after unlocking.
func (m *Manager) acquire(anchor string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[anchor]
	if !exists {
		entry = &lockEntry{}
		m.locks[anchor] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(anchor string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[anchor]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, anchor)
	}
}

// Load retrieves the blob for an anchor.
func (m *Manager) Load(ctx context.Context, anchor string) ([]byte, error) {
	var blob []byte
	err := m.WithLock(ctx, anchor, func(ctx context.Context) error {
		var err error
		blob, err = m.store.Load(ctx, anchor)
		return err
	})
	return blob, err
}

// Save persists the blob for an anchor.
func (m *Manager) Save(ctx context.Context, anchor string, blob []byte) error {
	return m.WithLock(ctx, anchor, func(ctx context.Context) error {
		return m.store.Save(ctx, anchor, blob)
	})
}

// Delete removes the anchor from the store.
func (m *Manager) Delete(ctx context.Context, anchor string) error {
	return m.WithLock(ctx, anchor, func(ctx context.Context) error {
		return m.store.Delete(ctx, anchor)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying blob store.
func (m *Manager) Store() ports.BlobStore {
	return m.store
}

// WithLock executes a function while holding the lock for the anchor.
func (m *Manager) WithLock(ctx context.Context, anchor string, fn func(context.Context) error) error {
	entry := m.acquire(anchor)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(anchor)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, anchor, m.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"anchor", anchor,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// activeLocks reports how many anchors currently hold a lock entry.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
