package service

import (
	"context"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
)

// API is the part of *apiclient.Client the resource services need.
type API interface {
	Do(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Download(ctx context.Context, path, filename, dir string) (string, error)
}

// AuthAPI adds the raw token endpoints used by sign-in and sign-out.
type AuthAPI interface {
	API
	Login(ctx context.Context, email, password string) (session.Tokens, error)
	RefreshToken(ctx context.Context, refresh string) (session.Tokens, error)
	Logout(ctx context.Context, refresh string)
}
