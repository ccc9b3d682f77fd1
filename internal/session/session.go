// Package session owns the signed-in identity: the access/refresh token pair, the address it
// belongs to and whether the session is still live. Tokens are read before every request and
// written only by sign-in, the refresh path and the end transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	LoggedOut State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "logged_out"
}

// Reason records why a session ended.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonUserLogout     Reason = "user_logout"
	ReasonRefreshFailed  Reason = "refresh_failed"
	ReasonNoRefreshToken Reason = "no_refresh_token"
)

var ErrNotAuthenticated = errors.New("session is not authenticated")

// Tokens is the pair issued by the login and refresh endpoints.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Record is what a Store persists.
type Record struct {
	Access  string `yaml:"access,omitempty"`
	Refresh string `yaml:"refresh,omitempty"`
	Email   string `yaml:"email,omitempty"`
}

func (r Record) empty() bool {
	return r.Access == "" && r.Refresh == ""
}

type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

type Session struct {
	mu        sync.RWMutex
	store     Store
	rec       Record
	state     State
	endReason Reason
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Load reads persisted tokens. Either token alone is enough to count as authenticated,
// because a refresh token can still be exchanged for an access token.
func (s *Session) Load(ctx context.Context) error {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.endReason = ReasonNone
	if rec.empty() {
		s.state = LoggedOut
	} else {
		s.state = Authenticated
	}
	return nil
}

func (s *Session) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Access
}

func (s *Session) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Refresh
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Email
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// EndReason is ReasonNone unless the last transition was End.
func (s *Session) EndReason() Reason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endReason
}

// Begin starts a session from a fresh login.
func (s *Session) Begin(ctx context.Context, email string, t Tokens) error {
	if t.Access == "" {
		return errors.New("begin session: empty access token")
	}
	rec := Record{Access: t.Access, Refresh: t.Refresh, Email: email}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.state = Authenticated
	s.endReason = ReasonNone
	return nil
}

// Rotate stores a refreshed access token and, when the server rotated it, the new refresh token.
func (s *Session) Rotate(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	rec := s.rec
	rec.Access = access
	if refresh != "" {
		rec.Refresh = refresh
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.rec = rec
	return nil
}

// End clears both tokens locally and in the store. The in-memory state is cleared even when
// the store fails so a broken store can never keep a session alive.
func (s *Session) End(ctx context.Context, reason Reason) error {
	s.mu.Lock()
	s.rec = Record{}
	s.state = LoggedOut
	s.endReason = reason
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
