package auth

import (
	"sync"

	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"go.uber.org/zap"
)

// TokenStorageKey durable storage key holding the serialized session token
const TokenStorageKey = "lms.session.token"

// UserProfile authenticated user identity as returned by the remote API
type UserProfile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CredentialStore single source of truth for the current session.
// The token is an opaque string issued by the remote service; it is
// persisted to durable storage on every change so a session survives
// a process restart. The user profile lives in memory only
type CredentialStore struct {
	mu      sync.RWMutex
	user    *UserProfile
	token   string
	storage driver.KeyValueDB
	logger  *zap.Logger
}

// NewCredentialStore create an unauthenticated store persisting to storage
func NewCredentialStore(storage driver.KeyValueDB, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{
		storage: storage,
		logger:  logger,
	}
}

// Restore read the durable token into memory. Call once at process start.
// A missing key leaves the store unauthenticated
func (cs *CredentialStore) Restore() {
	token, err := cs.storage.Get(TokenStorageKey)
	if err != nil {
		if err != driver.ErrKeyNotFound {
			cs.logger.Warn("Failed to read durable token", zap.Error(err))
		}
		return
	}

	cs.mu.Lock()
	cs.token = token
	cs.mu.Unlock()
	cs.logger.Debug("Session restored from durable storage")
}

// SetCredential store the user and token pair and persist the token.
// A user without a token is an invalid state, it is coerced to logout
func (cs *CredentialStore) SetCredential(user *UserProfile, token string) {
	if token == "" {
		cs.logger.Warn("Rejected credential with empty token")
		cs.Clear()
		return
	}

	cs.mu.Lock()
	cs.user = user
	cs.token = token
	cs.mu.Unlock()

	if err := cs.storage.Set(TokenStorageKey, token); err != nil {
		cs.logger.Warn("Failed to persist token", zap.Error(err))
	}
}

// Clear drop the credential and remove the persisted token
func (cs *CredentialStore) Clear() {
	cs.mu.Lock()
	cs.user = nil
	cs.token = ""
	cs.mu.Unlock()

	if err := cs.storage.Delete(TokenStorageKey); err != nil {
		cs.logger.Warn("Failed to remove persisted token", zap.Error(err))
	}
}

// Token current opaque token, empty when unauthenticated
func (cs *CredentialStore) Token() string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.token
}

// CurrentUser profile of the authenticated user, nil when unknown
func (cs *CredentialStore) CurrentUser() *UserProfile {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.user
}

// Authenticated report whether a session token is present
func (cs *CredentialStore) Authenticated() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.token != ""
}
