package auth

import (
	"path/filepath"
	"testing"

	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"go.uber.org/zap"
)

func TestSessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewCredentialStore(driver.NewFileStore(path), zap.NewNop())
	first.SetCredential(&UserProfile{ID: "u1", Name: "Demo"}, "token-1")

	// a fresh store over the same file models a process restart
	second := NewCredentialStore(driver.NewFileStore(path), zap.NewNop())
	second.Restore()

	if !second.Authenticated() {
		t.Fatal("expected restored session to be authenticated")
	}
	if second.Token() != "token-1" {
		t.Fatalf("expected persisted token, got %q", second.Token())
	}
	// the profile is never persisted, only the token
	if second.CurrentUser() != nil {
		t.Fatal("expected no user profile after restore")
	}
}

func TestRestoreWithoutPersistedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewCredentialStore(driver.NewFileStore(path), zap.NewNop())
	store.Restore()

	if store.Authenticated() {
		t.Fatal("expected unauthenticated store when nothing is persisted")
	}
}

func TestEmptyTokenIsCoercedToLogout(t *testing.T) {
	store := NewCredentialStore(driver.NewMemoryStore(), zap.NewNop())
	store.SetCredential(&UserProfile{ID: "u1"}, "token-1")

	store.SetCredential(&UserProfile{ID: "u1"}, "")
	if store.Authenticated() {
		t.Fatal("expected empty token to clear the session")
	}
	if store.CurrentUser() != nil {
		t.Fatal("expected user to be dropped with the token")
	}
}

func TestClearRemovesPersistedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	storage := driver.NewFileStore(path)

	store := NewCredentialStore(storage, zap.NewNop())
	store.SetCredential(&UserProfile{ID: "u1"}, "token-1")
	store.Clear()

	if store.Authenticated() {
		t.Fatal("expected cleared store to be unauthenticated")
	}
	if _, err := storage.Get(TokenStorageKey); err != driver.ErrKeyNotFound {
		t.Fatalf("expected persisted token to be removed, got %v", err)
	}
}
