package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"go.uber.org/zap"
)

// UnknownEmail stands in when tokens exist but the address was never stored.
const UnknownEmail = "(signed in)"

var ErrEmptyCredentials = errors.New("email and password are required")

// Identity is the signed-in user as the CLI sees it.
type Identity struct {
	Email       string
	Permissions model.Permissions
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignOut blacklists the refresh token (best effort) and ends the session.
	SignOut(ctx context.Context) error
	// Restore resumes a persisted session. It returns nil, nil when nothing is stored.
	Restore(ctx context.Context) (*Identity, error)
	Permissions(ctx context.Context) (model.Permissions, error)
}

type authService struct {
	api  AuthAPI
	sess *session.Session
	dir  DirectoryService
	log  *zap.Logger
}

func NewAuthService(api AuthAPI, sess *session.Session, log *zap.Logger) AuthService {
	return &authService{api: api, sess: sess, dir: NewDirectoryService(api), log: log}
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	if email == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	tokens, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.sess.Begin(ctx, email, tokens); err != nil {
		return nil, err
	}
	perms, err := s.Permissions(ctx)
	if err != nil {
		s.log.Warn("read permissions after sign-in", zap.Error(err))
	}
	return &Identity{Email: email, Permissions: perms}, nil
}

// SignOut revokes the stored refresh token on the server, then ends the session locally.
// A session not loaded yet in this process is read from the store first.
func (s *authService) SignOut(ctx context.Context) error {
	if s.sess.State() != session.Authenticated {
		if err := s.sess.Load(ctx); err != nil {
			s.log.Warn("load session before sign-out", zap.Error(err))
		}
	}
	s.api.Logout(ctx, s.sess.Refresh())
	return s.sess.End(ctx, session.ReasonUserLogout)
}

func (s *authService) Restore(ctx context.Context) (*Identity, error) {
	if err := s.sess.Load(ctx); err != nil {
		return nil, err
	}
	access, refresh := s.sess.Access(), s.sess.Refresh()
	if access == "" && refresh == "" {
		return nil, nil
	}

	email := s.sess.Email()
	if email == "" {
		email = UnknownEmail
	}

	if access == "" {
		tokens, err := s.api.RefreshToken(ctx, refresh)
		if err != nil {
			if outErr := s.SignOut(ctx); outErr != nil {
				s.log.Warn("sign out after failed restore", zap.Error(outErr))
			}
			return nil, fmt.Errorf("restore session: %w", err)
		}
		if err := s.sess.Rotate(ctx, tokens.Access, tokens.Refresh); err != nil {
			return nil, err
		}
	}

	perms, err := s.Permissions(ctx)
	if err != nil {
		if isUnauthorized(err) {
			return nil, err
		}
		s.log.Warn("read permissions", zap.Error(err))
	}
	return &Identity{Email: email, Permissions: perms}, nil
}

// Permissions reads me/. On failure the defaults are returned alongside the error.
func (s *authService) Permissions(ctx context.Context) (model.Permissions, error) {
	me, err := s.dir.Me(ctx)
	if err != nil {
		return model.DefaultPermissions(), err
	}
	return me.Permissions(), nil
}

func isUnauthorized(err error) bool {
	var apiErr *apiclient.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
