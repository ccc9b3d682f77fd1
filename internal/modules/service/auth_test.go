package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAuthAPI is a mock implementation of AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Do(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.Response), args.Error(1)
}

func (m *MockAuthAPI) Download(ctx context.Context, path, filename, dir string) (string, error) {
	args := m.Called(ctx, path, filename, dir)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, email, password string) (session.Tokens, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.Tokens), args.Error(1)
}

func (m *MockAuthAPI) RefreshToken(ctx context.Context, refresh string) (session.Tokens, error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(session.Tokens), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context, refresh string) {
	m.Called(ctx, refresh)
}

func jsonResponse(body string) *apiclient.Response {
	return apiclient.NewResponse(http.StatusOK, nil, []byte(body))
}

func newSession(t *testing.T, rec session.Record) (*session.Session, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), rec))
	sess := session.New(store)
	require.NoError(t, sess.Load(context.Background()))
	return sess, store
}

const meHQ = `{"email":"admin@test.com","can_write":false,"can_see_all_sites":true,"site_id":null,"is_superuser":true}`

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		password  string
		setup     func(*MockAuthAPI)
		wantErr   error
		wantState session.State
		check     func(*testing.T, *Identity)
	}{
		{
			name:     "successful sign in reads permissions",
			email:    "admin@test.com",
			password: "testpass123",
			setup: func(api *MockAuthAPI) {
				api.On("Login", ctx, "admin@test.com", "testpass123").Return(session.Tokens{Access: "a1", Refresh: "r1"}, nil)
				api.On("Do", ctx, "me/").Return(jsonResponse(meHQ), nil)
			},
			wantState: session.Authenticated,
			check: func(t *testing.T, id *Identity) {
				assert.Equal(t, "admin@test.com", id.Email)
				assert.False(t, id.Permissions.CanWrite)
				assert.True(t, id.Permissions.CanSeeAllSites)
				assert.True(t, id.Permissions.IsSuperuser)
				assert.Nil(t, id.Permissions.SiteID)
			},
		},
		{
			name:     "me failure falls back to defaults",
			email:    "clerk@test.com",
			password: "pw",
			setup: func(api *MockAuthAPI) {
				api.On("Login", ctx, "clerk@test.com", "pw").Return(session.Tokens{Access: "a1", Refresh: "r1"}, nil)
				api.On("Do", ctx, "me/").Return(nil, &apiclient.APIError{Status: 500, Body: map[string]any{}})
			},
			wantState: session.Authenticated,
			check: func(t *testing.T, id *Identity) {
				assert.True(t, id.Permissions.CanWrite)
				assert.False(t, id.Permissions.CanSeeAllSites)
			},
		},
		{
			name:     "bad credentials",
			email:    "admin@test.com",
			password: "wrong",
			setup: func(api *MockAuthAPI) {
				api.On("Login", ctx, "admin@test.com", "wrong").Return(session.Tokens{}, &apiclient.APIError{
					Status: 401,
					Body:   map[string]any{"detail": "No active account found with the given credentials"},
				})
			},
			wantErr:   &apiclient.APIError{},
			wantState: session.LoggedOut,
		},
		{
			name:      "empty credentials make no call",
			email:     "",
			password:  "x",
			setup:     func(*MockAuthAPI) {},
			wantErr:   ErrEmptyCredentials,
			wantState: session.LoggedOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAuthAPI{}
			tt.setup(api)
			sess, _ := newSession(t, session.Record{})
			svc := NewAuthService(api, sess, zap.NewNop())

			id, err := svc.SignIn(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrEmptyCredentials) {
					assert.ErrorIs(t, err, ErrEmptyCredentials)
				} else {
					var apiErr *apiclient.APIError
					assert.ErrorAs(t, err, &apiErr)
				}
				assert.Nil(t, id)
			} else {
				require.NoError(t, err)
				tt.check(t, id)
				assert.Equal(t, tt.email, sess.Email())
			}
			assert.Equal(t, tt.wantState, sess.State())
			api.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignOut(t *testing.T) {
	ctx := context.Background()
	api := &MockAuthAPI{}
	api.On("Logout", ctx, "r1").Return()

	sess, store := newSession(t, session.Record{Access: "a1", Refresh: "r1", Email: "admin@test.com"})
	svc := NewAuthService(api, sess, zap.NewNop())

	require.NoError(t, svc.SignOut(ctx))
	assert.Equal(t, session.LoggedOut, sess.State())
	assert.Equal(t, session.ReasonUserLogout, sess.EndReason())

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Record{}, rec)
	api.AssertExpectations(t)
}

func TestAuthService_SignOut_UnloadedSession(t *testing.T) {
	ctx := context.Background()
	api := &MockAuthAPI{}
	api.On("Logout", ctx, "r1").Return()

	// a new process: tokens are on disk but the session has not been loaded
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, session.Record{Access: "a1", Refresh: "r1", Email: "admin@test.com"}))
	sess := session.New(store)
	svc := NewAuthService(api, sess, zap.NewNop())

	require.NoError(t, svc.SignOut(ctx))
	assert.Equal(t, session.LoggedOut, sess.State())

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Record{}, rec)
	api.AssertExpectations(t)
}

func TestAuthService_SignOut_NothingStored(t *testing.T) {
	ctx := context.Background()
	api := &MockAuthAPI{}
	api.On("Logout", ctx, "").Return()

	sess := session.New(session.NewMemoryStore())
	svc := NewAuthService(api, sess, zap.NewNop())

	require.NoError(t, svc.SignOut(ctx))
	assert.Equal(t, session.ReasonUserLogout, sess.EndReason())
	api.AssertExpectations(t)
}

func TestAuthService_Restore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		rec       session.Record
		setup     func(*MockAuthAPI)
		wantNil   bool
		wantErr   bool
		wantEmail string
		wantState session.State
		check     func(*testing.T, *session.Session)
	}{
		{
			name:      "nothing stored",
			rec:       session.Record{},
			setup:     func(*MockAuthAPI) {},
			wantNil:   true,
			wantState: session.LoggedOut,
		},
		{
			name: "access token present",
			rec:  session.Record{Access: "a1", Refresh: "r1", Email: "admin@test.com"},
			setup: func(api *MockAuthAPI) {
				api.On("Do", ctx, "me/").Return(jsonResponse(`{"email":"admin@test.com","site_id":4}`), nil)
			},
			wantEmail: "admin@test.com",
			wantState: session.Authenticated,
		},
		{
			name: "only refresh token",
			rec:  session.Record{Refresh: "r1"},
			setup: func(api *MockAuthAPI) {
				api.On("RefreshToken", ctx, "r1").Return(session.Tokens{Access: "a2", Refresh: "r2"}, nil)
				api.On("Do", ctx, "me/").Return(jsonResponse(meHQ), nil)
			},
			wantEmail: UnknownEmail,
			wantState: session.Authenticated,
			check: func(t *testing.T, sess *session.Session) {
				assert.Equal(t, "a2", sess.Access())
				assert.Equal(t, "r2", sess.Refresh())
			},
		},
		{
			name: "refresh fails signs out",
			rec:  session.Record{Refresh: "r1", Email: "admin@test.com"},
			setup: func(api *MockAuthAPI) {
				api.On("RefreshToken", ctx, "r1").Return(session.Tokens{}, &apiclient.APIError{Status: 401, Body: map[string]any{}})
				api.On("Logout", ctx, "r1").Return()
			},
			wantNil:   true,
			wantErr:   true,
			wantState: session.LoggedOut,
		},
		{
			name: "me rejected",
			rec:  session.Record{Access: "a1"},
			setup: func(api *MockAuthAPI) {
				api.On("Do", ctx, "me/").Return(nil, &apiclient.APIError{Status: 401, Body: map[string]any{}, SessionEnded: true})
			},
			wantNil:   true,
			wantErr:   true,
			wantState: session.Authenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAuthAPI{}
			tt.setup(api)
			store := session.NewMemoryStore()
			require.NoError(t, store.Save(ctx, tt.rec))
			sess := session.New(store)
			svc := NewAuthService(api, sess, zap.NewNop())

			id, err := svc.Restore(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, id)
			} else {
				require.NotNil(t, id)
				assert.Equal(t, tt.wantEmail, id.Email)
			}
			assert.Equal(t, tt.wantState, sess.State())
			if tt.check != nil {
				tt.check(t, sess)
			}
			api.AssertExpectations(t)
		})
	}
}
