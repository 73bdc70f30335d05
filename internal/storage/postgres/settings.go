package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"newsdesk/internal/domain"
)

const settingsColumns = `breaking_news_expiry_hours, trending_news_expiry_hours, live_video_id, created_at, updated_at`

// SettingsStore persists the singleton site_settings row (id = 1).
type SettingsStore struct {
	db *sqlx.DB
}

func NewSettingsStore(db *sqlx.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	return s.get(ctx, `SELECT `+settingsColumns+` FROM site_settings WHERE id = 1`)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (s *SettingsStore) GetForUpdate(ctx context.Context) (*domain.Settings, error) {
	return s.get(ctx, `SELECT `+settingsColumns+` FROM site_settings WHERE id = 1 FOR UPDATE`)
}

func (s *SettingsStore) get(ctx context.Context, query string) (*domain.Settings, error) {
	var settings domain.Settings
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &settings, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	return &settings, nil
}

// Insert creates the row if it does not exist yet. When another writer got
// there first the existing row is returned and inserted is false.
func (s *SettingsStore) Insert(ctx context.Context, settings *domain.Settings) (*domain.Settings, bool, error) {
	query := `
		INSERT INTO site_settings (id, breaking_news_expiry_hours, trending_news_expiry_hours, live_video_id)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + settingsColumns

	var created domain.Settings
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &created, query,
		settings.BreakingNewsExpiryHours,
		settings.TrendingNewsExpiryHours,
		settings.LiveVideoID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := s.Get(ctx)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert settings: %w", err)
	}
	return &created, true, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	query := `
		UPDATE site_settings SET
			breaking_news_expiry_hours = $1,
			trending_news_expiry_hours = $2,
			live_video_id = $3,
			updated_at = now()
		WHERE id = 1
		RETURNING ` + settingsColumns

	var saved domain.Settings
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &saved, query,
		settings.BreakingNewsExpiryHours,
		settings.TrendingNewsExpiryHours,
		settings.LiveVideoID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &saved, nil
}

func (s *SettingsStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
