package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
	"github.com/webcraft-id/kantinku-backend/pkg/metrics"
)

// ManagerParams configure the session cart manager.
type ManagerParams struct {
	Stores   StoreFactory
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
	Debounce time.Duration
}

// Manager hands out one rehydrated container per user and owns the matching
// persistence bridges. It is the single root scope for cart state: handlers
// receive containers from here and never hold one beyond a request.
type Manager struct {
	stores   StoreFactory
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	container *Container
	bridge    *Bridge
}

// NewManager builds a cart manager backed by the provided store factory.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store factory is required")
	}
	return &Manager{
		stores:   params.Stores,
		logg:     params.Logger,
		metrics:  params.Metrics,
		debounce: params.Debounce,
		sessions: map[string]*session{},
	}, nil
}

// ForUser returns the user's container, creating and rehydrating it on first
// access. Rehydration happens exactly once per session, before the container
// is handed to any caller.
func (m *Manager) ForUser(ctx context.Context, userID string) (*Container, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess.container, nil
	}

	container := NewContainer()
	bridge, err := NewBridge(BridgeParams{
		Container: container,
		Store:     m.stores.ForUser(userID),
		Logger:    m.logg,
		Metrics:   m.metrics,
		Debounce:  m.debounce,
	})
	if err != nil {
		return nil, err
	}
	if err := bridge.Rehydrate(ctx); err != nil {
		bridge.Close()
		return nil, err
	}

	m.sessions[userID] = &session{container: container, bridge: bridge}
	return container, nil
}

// FlushUser forces the user's pending state into the store immediately.
func (m *Manager) FlushUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.bridge.Flush(ctx)
}

// Release flushes and tears down the user's session, e.g. on logout. The
// persisted records survive so the cart comes back on the next login.
func (m *Manager) Release(ctx context.Context, userID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	err := sess.bridge.Flush(ctx)
	sess.bridge.Close()
	return err
}

// Close flushes and tears down every live session.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*session{}
	m.mu.Unlock()

	var errs error
	for userID, sess := range sessions {
		if err := sess.bridge.Flush(ctx); err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flush cart for "+userID))
		}
		sess.bridge.Close()
	}
	return errs
}
