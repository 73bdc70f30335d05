package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"newsdesk/internal/domain"
)

type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	GetForUpdate(ctx context.Context) (*domain.Settings, error)
	Insert(ctx context.Context, settings *domain.Settings) (*domain.Settings, bool, error)
	Save(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, settings *domain.Settings, isNew bool) error
	Close() error
}
