// internal/sessions/manager.go
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/common"
)

// Manager owns session issuance, the in-process expiry-task table, and
// startup recovery against the key-value store. Grounded on the teacher's
// internal/auth.AuthService for the JWT issue/validate shape, generalized
// from the teacher's in-memory maps to the cache.SessionStore abstraction
// and widened with the scheduled-expiry-task machinery spec.md §4.8 adds.
type Manager struct {
	store  cache.SessionStore
	secret []byte
	logger *zap.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration

	mu    sync.Mutex
	tasks map[string]context.CancelFunc
}

// NewManager builds a Manager. secret is the process HMAC-SHA-512 signing
// key; accessTTL/refreshTTL are always set to AccessTokenTTL/RefreshTokenTTL
// (2 days / 7 days).
func NewManager(store cache.SessionStore, secret []byte, logger *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		secret:     secret,
		logger:     logger,
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
		tasks:      make(map[string]context.CancelFunc),
	}
}

// Create mints a new session for userID: a fresh UUID, an access token
// (exp = now+2d) and a refresh token (exp = now+7d), both signed HMAC-
// SHA-512, stores the session keyed by UUID with a TTL equal to the
// refresh token's lifetime, and schedules its expiry task.
func (m *Manager) Create(ctx context.Context, userID uint64) (*Session, error) {
	id := uuid.New().String()
	now := time.Now()

	access, err := signToken(m.secret, id, userID, now, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := signToken(m.secret, id, userID, now, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	session := &Session{UUID: id, UserID: userID, AccessToken: access, RefreshToken: refresh}
	encoded, err := session.encode()
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := m.store.Put(ctx, id, encoded, m.refreshTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	m.scheduleExpiry(id, m.refreshTTL)
	return session, nil
}

// Get resolves a session by its UUID, the lookup the bearer authentication
// scheme needs once it has decoded `session_id` out of the token claims.
func (m *Manager) Get(ctx context.Context, sessionUUID string) (*Session, bool, error) {
	entries, err := m.store.All(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("scan sessions: %w", err)
	}

	for _, e := range entries {
		if e.UUID != sessionUUID {
			continue
		}
		session, err := decodeSession(e.Value)
		if err != nil {
			return nil, false, fmt.Errorf("decode session %s: %w", sessionUUID, err)
		}
		return session, true, nil
	}

	return nil, false, nil
}

// FromUser scans the session hash for the entry whose (user, session) pair
// matches, per spec.md §4.8's `from_user` query.
func (m *Manager) FromUser(ctx context.Context, userID uint64, sessionUUID string) (*Session, bool, error) {
	session, ok, err := m.Get(ctx, sessionUUID)
	if err != nil || !ok || session.UserID != userID {
		return nil, false, err
	}
	return session, true, nil
}

// Revoke deletes a session immediately (explicit logout) and cancels its
// scheduled expiry task.
func (m *Manager) Revoke(ctx context.Context, sessionUUID string) error {
	m.cancelTask(sessionUUID)
	if err := m.store.Delete(ctx, sessionUUID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionUUID, err)
	}
	return nil
}

// Recover runs startup recovery: for every entry in the session hash, drop
// it if its TTL marker is missing or expired, otherwise schedule an expiry
// task for the remaining TTL. Must run once before the manager serves
// bearer lookups so the task table mirrors what's actually still live.
func (m *Manager) Recover(ctx context.Context) error {
	entries, err := m.store.All(ctx)
	if err != nil {
		return fmt.Errorf("scan sessions for recovery: %w", err)
	}

	for _, e := range entries {
		remaining, ok, err := m.store.RemainingTTL(ctx, e.UUID)
		if err != nil {
			return fmt.Errorf("check ttl for session %s: %w", e.UUID, err)
		}
		if !ok {
			if derr := m.store.Delete(ctx, e.UUID); derr != nil {
				m.logger.Error("failed to drop expired session during recovery",
					zap.String("session", e.UUID), zap.Error(derr))
			}
			continue
		}
		m.scheduleExpiry(e.UUID, remaining)
	}

	return nil
}

// Shutdown cancels every scheduled expiry task without deleting the
// underlying sessions - they're recovered on next start, per spec.md
// §4.8's shutdown contract.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for uuid, cancel := range m.tasks {
		cancel()
		delete(m.tasks, uuid)
	}
}

func (m *Manager) scheduleExpiry(sessionUUID string, ttl time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if existing, ok := m.tasks[sessionUUID]; ok {
		existing()
	}
	m.tasks[sessionUUID] = cancel
	m.mu.Unlock()

	go m.runExpiryTask(ctx, sessionUUID, ttl)
}

func (m *Manager) runExpiryTask(ctx context.Context, sessionUUID string, ttl time.Duration) {
	timer := time.NewTimer(ttl)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if err := m.store.Delete(context.Background(), sessionUUID); err != nil {
		m.logger.Error("failed to delete session on expiry", zap.String("session", sessionUUID), zap.Error(err))
	}

	m.mu.Lock()
	delete(m.tasks, sessionUUID)
	m.mu.Unlock()
}

func (m *Manager) cancelTask(sessionUUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.tasks[sessionUUID]; ok {
		cancel()
		delete(m.tasks, sessionUUID)
	}
}

// ParseToken validates a bearer token string and returns the session UUID
// and user id carried in its claims, without consulting the store.
func (m *Manager) ParseToken(tokenString string) (sessionUUID string, userID uint64, err error) {
	return parseToken(m.secret, tokenString)
}

// UnknownSession is returned by callers (the authentication gate) when
// ParseToken succeeds but Get/FromUser finds no matching record.
func UnknownSession() *common.Error {
	return common.NewError(common.CodeUnknownSession, "session not found")
}
