package session

import (
	"context"

	"newsdesk/internal/domain"
)

// Cache is the local, non-authoritative copy of the current user. Several
// processes may share one backend; Changes delivers modifications made by
// the others, never the caller's own writes.
type Cache interface {
	Get(ctx context.Context) (domain.UserData, error)
	Set(ctx context.Context, data domain.UserData) error
	Clear(ctx context.Context) error
	Changes() <-chan domain.CacheChange
	Close() error
}

// AuthClient is the remote session service.
type AuthClient interface {
	Verify(ctx context.Context) (*domain.VerifyResponse, error)
	Logout(ctx context.Context) (*domain.LogoutResponse, error)
}
