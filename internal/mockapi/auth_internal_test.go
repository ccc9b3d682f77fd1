package mockapi

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	phc, err := HashPassword("testpass123", "pepper")
	require.NoError(t, err)
	assert.Contains(t, phc, "$argon2id$v=19$")

	tests := []struct {
		name     string
		password string
		pepper   string
		phc      string
		want     bool
		wantErr  bool
	}{
		{name: "match", password: "testpass123", pepper: "pepper", phc: phc, want: true},
		{name: "wrong password", password: "testpass124", pepper: "pepper", phc: phc},
		{name: "wrong pepper", password: "testpass123", pepper: "other", phc: phc},
		{name: "not argon2id", password: "x", phc: "$2b$10$abc", wantErr: true},
		{name: "truncated", password: "x", phc: "$argon2id$v=19$m=1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword(tt.password, tt.pepper, tt.phc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err = HashPassword("", "pepper")
	assert.Error(t, err)
}

func TestIssuer(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	iss := &issuer{
		secret:     []byte("s"),
		accessTTL:  time.Minute,
		refreshTTL: time.Hour,
		now:        func() time.Time { return now },
	}
	pair, err := iss.issue(&User{ID: 7, Email: "a@b.c"})
	require.NoError(t, err)

	claims, err := iss.parse(pair.Access, tokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "a@b.c", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, time.Minute, claims.remaining(now))

	_, err = iss.parse(pair.Access, tokenTypeRefresh)
	assert.ErrorIs(t, err, errTokenInvalid)

	other := &issuer{secret: []byte("other"), now: iss.now}
	_, err = other.parse(pair.Refresh, tokenTypeRefresh)
	assert.ErrorIs(t, err, errTokenInvalid)

	now = now.Add(2 * time.Minute)
	_, err = iss.parse(pair.Access, tokenTypeAccess)
	assert.ErrorIs(t, err, errTokenInvalid)
	_, err = iss.parse(pair.Refresh, tokenTypeRefresh)
	assert.NoError(t, err)
}

func TestBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Now()
	mem := NewMemoryBlacklist().(*memoryBlacklist)
	mem.now = func() time.Time { return now }

	tests := []struct {
		name    string
		list    Blacklist
		advance func(time.Duration)
	}{
		{name: "memory", list: mem, advance: func(d time.Duration) { now = now.Add(d) }},
		{name: "redis", list: NewRedisBlacklist(rdb, "test"), advance: mr.FastForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			revoked, err := tt.list.Revoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, tt.list.Revoke(ctx, "jti-1", time.Minute))
			revoked, err = tt.list.Revoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.True(t, revoked)

			tt.advance(2 * time.Minute)
			revoked, err = tt.list.Revoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.False(t, revoked)
		})
	}

	assert.False(t, mr.Exists("test:blacklist:jti-1"))
}

func TestIPLimiter(t *testing.T) {
	l := newIPLimiter(2)
	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	unlimited := newIPLimiter(0)
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.allow("10.0.0.1"))
	}
}
