package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	UsersKey        = "pydojo_users"
	SessionKey      = "pydojo_session"
	DefaultUsername = "admin"
	MaxAttempts     = 5
	SessionTTL      = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLocked             = errors.New("account is locked due to too many failed attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthenticated   = errors.New("not logged in")
)

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"password_hash"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	LastLogin     time.Time `json:"last_login,omitzero"`
	LoginAttempts int       `json:"login_attempts"`
	Locked        bool      `json:"locked"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	ExpiresAt time.Time `json:"expires_at"`
}

type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Service is a local single-admin credential check. There is no
// registration; the admin account is seeded on first Init.
type Service struct {
	kv   KeyValue
	log  Logger
	now  func() time.Time
	cost int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithLogger(l Logger) Option { return func(s *Service) { s.log = l } }

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option { return func(s *Service) { s.cost = cost } }

func NewService(kv KeyValue, opts ...Option) *Service {
	s := &Service{kv: kv, now: time.Now, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the admin user when no users exist yet.
func (s *Service) Init(ctx context.Context, adminPassword string) error {
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	if adminPassword == "" {
		return fmt.Errorf("admin password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := User{
		ID:           "admin-" + uuid.NewString()[:8],
		Username:     DefaultUsername,
		PasswordHash: string(hash),
		Email:        "admin@pydojo.local",
		FirstName:    "Py",
		LastName:     "Dojo",
		Role:         "admin",
		CreatedAt:    s.now().UTC(),
	}
	s.info("auth.admin_seeded", map[string]any{"user_id": admin.ID})
	return s.saveUsers(ctx, []User{admin})
}

// Login checks credentials and opens a session. Each wrong password counts
// toward the lock; the error reports how many attempts remain.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return User{}, err
	}
	i := findUser(users, username)
	if i < 0 {
		return User{}, ErrInvalidCredentials
	}
	u := &users[i]
	if u.Locked {
		return User{}, ErrLocked
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		u.LoginAttempts++
		u.Locked = u.LoginAttempts >= MaxAttempts
		if err := s.saveUsers(ctx, users); err != nil {
			return User{}, err
		}
		s.info("auth.login_failed", map[string]any{"username": username, "attempts": u.LoginAttempts, "locked": u.Locked})
		if u.Locked {
			return User{}, ErrLocked
		}
		return User{}, fmt.Errorf("%w: %d attempts remaining", ErrInvalidCredentials, MaxAttempts-u.LoginAttempts)
	}

	now := s.now().UTC()
	u.LoginAttempts = 0
	u.LastLogin = now
	if err := s.saveUsers(ctx, users); err != nil {
		return User{}, err
	}
	sess := Session{ID: uuid.NewString(), UserID: u.ID, LoginTime: now, ExpiresAt: now.Add(SessionTTL)}
	b, err := json.Marshal(sess)
	if err != nil {
		return User{}, err
	}
	if err := s.kv.Put(ctx, SessionKey, string(b)); err != nil {
		return User{}, fmt.Errorf("save session: %w", err)
	}
	s.info("auth.login", map[string]any{"user_id": u.ID})
	return *u, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.info("auth.logout", nil)
	return nil
}

// Current returns the logged-in user. Expired sessions are cleared.
func (s *Service) Current(ctx context.Context) (User, error) {
	raw, ok, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		return User{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return User{}, ErrNotAuthenticated
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		_ = s.kv.Delete(ctx, SessionKey)
		return User{}, ErrNotAuthenticated
	}
	if s.now().After(sess.ExpiresAt) {
		_ = s.kv.Delete(ctx, SessionKey)
		return User{}, ErrNotAuthenticated
	}
	users, err := s.users(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.ID == sess.UserID {
			return u, nil
		}
	}
	return User{}, ErrNotAuthenticated
}

// ResetPassword sets a new password and clears the lock.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required")
	}
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	i := findUser(users, username)
	if i < 0 {
		return ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	users[i].PasswordHash = string(hash)
	users[i].LoginAttempts = 0
	users[i].Locked = false
	s.info("auth.password_reset", map[string]any{"user_id": users[i].ID})
	return s.saveUsers(ctx, users)
}

func (s *Service) users(ctx context.Context) ([]User, error) {
	raw, ok, err := s.kv.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var users []User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *Service) saveUsers(ctx context.Context, users []User) error {
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, UsersKey, string(b)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (s *Service) info(msg string, fields map[string]any) {
	if s.log != nil {
		s.log.Info(msg, fields)
	}
}

func findUser(users []User, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
