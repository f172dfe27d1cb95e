package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type memKV map[string]string

func (m memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Put(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m memKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func newTestService(t *testing.T, now *time.Time) (*Service, memKV) {
	t.Helper()
	kv := memKV{}
	s := NewService(kv, WithCost(bcrypt.MinCost), WithClock(func() time.Time { return *now }))
	if err := s.Init(context.Background(), "admin123"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s, kv
}

func TestLoginSeededAdmin(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s, kv := newTestService(t, &now)
	if strings.Contains(kv[UsersKey], "admin123") {
		t.Fatalf("password must not be stored in clear text")
	}
	u, err := s.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Role != "admin" || !u.LastLogin.Equal(now) {
		t.Fatalf("unexpected user %#v", u)
	}
	cur, err := s.Current(context.Background())
	if err != nil || cur.ID != u.ID {
		t.Fatalf("expected current user, got %#v err=%v", cur, err)
	}
	if err := s.Init(context.Background(), "other"); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	if _, err := s.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("re-init must not replace the admin: %v", err)
	}
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s, _ := newTestService(t, &now)
	for i := 1; i < MaxAttempts; i++ {
		_, err := s.Login(context.Background(), "admin", "nope")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i, err)
		}
	}
	if _, err := s.Login(context.Background(), "admin", "nope"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected lock on fifth failure, got %v", err)
	}
	if _, err := s.Login(context.Background(), "admin", "admin123"); !errors.Is(err, ErrLocked) {
		t.Fatalf("locked account must reject the right password, got %v", err)
	}
	if err := s.ResetPassword(context.Background(), "admin", "fresh-pass"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := s.Login(context.Background(), "admin", "fresh-pass"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}

func TestSessionExpiryAndLogout(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s, kv := newTestService(t, &now)
	if _, err := s.Current(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
	if _, err := s.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	now = now.Add(SessionTTL + time.Minute)
	if _, err := s.Current(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if _, ok := kv[SessionKey]; ok {
		t.Fatalf("expired session should be cleared")
	}
	if _, err := s.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := s.Current(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected logged out, got %v", err)
	}
}

func TestUnknownUser(t *testing.T) {
	now := time.Now()
	s, _ := newTestService(t, &now)
	if _, err := s.Login(context.Background(), "ghost", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := s.ResetPassword(context.Background(), "ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
