// Package session is the console's auth context: the current user and token
// in memory, backed by persisted storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/client/storage"
	"go.uber.org/zap"
)

var ErrNotAuthenticated = errors.New("not signed in")

// Authenticator performs the auth calls. *services.Auth satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (services.LoginResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (services.LoginResponse, error)
}

// Persister is the storage the session writes through to.
type Persister interface {
	Get(key string, dest any) (bool, error)
	Set(key string, value any) error
	Remove(keys ...string) error
}

// Session holds the signed-in user. It is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   *services.User
	auth   Authenticator
	store  Persister
	logger *zap.Logger
}

// New creates an empty session. Call Rehydrate to restore a previous login.
func New(auth Authenticator, store Persister, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{auth: auth, store: store, logger: logger}
}

// Rehydrate loads token and user from storage. A missing or corrupt entry
// leaves the session signed out.
func (s *Session) Rehydrate() {
	var token string
	var user services.User

	okTok, errTok := s.store.Get(storage.KeyAuthToken, &token)
	okUser, errUser := s.store.Get(storage.KeyAuthUser, &user)
	if errTok != nil || errUser != nil {
		s.logger.Warn("discarding unreadable stored session",
			zap.NamedError("token_err", errTok),
			zap.NamedError("user_err", errUser))
		return
	}
	if !okTok || token == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if okUser {
		s.user = &user
	}
}

// Login authenticates and persists the result.
func (s *Session) Login(ctx context.Context, email, password string) (services.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return services.User{}, err
	}
	if err := s.adopt(resp); err != nil {
		return services.User{}, err
	}
	s.logger.Info("signed in", zap.String("user_id", resp.User.UserID))
	return resp.User, nil
}

// Refresh swaps the current token for a new one.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	resp, err := s.auth.Refresh(ctx)
	if err != nil {
		return err
	}
	return s.adopt(resp)
}

// Logout clears local state. The server call is best effort: local state is
// cleared even if it fails.
func (s *Session) Logout(ctx context.Context) error {
	if s.Authenticated() {
		if err := s.auth.Logout(ctx); err != nil {
			s.logger.Warn("server logout failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Remove(storage.KeyAuthToken, storage.KeyAuthUser); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	return nil
}

// Token implements apiclient.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns the signed-in user, if known.
func (s *Session) User() (services.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return services.User{}, false
	}
	return *s.user, true
}

// RequireAuth gates authenticated fetches.
func (s *Session) RequireAuth() error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Session) adopt(resp services.LoginResponse) error {
	if resp.Token == "" {
		return errors.New("server returned an empty token")
	}
	s.mu.Lock()
	s.token = resp.Token
	u := resp.User
	s.user = &u
	s.mu.Unlock()

	if err := s.store.Set(storage.KeyAuthToken, resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.store.Set(storage.KeyAuthUser, resp.User); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}
