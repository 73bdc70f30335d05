package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"newsdesk/internal/domain"
)

type SettingsService struct {
	store     SettingsStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
}

func NewSettingsService(
	store SettingsStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		store:     store,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "settings"),
	}
}

// Get returns the settings record, creating it with defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.store.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, domain.ErrSettingsNotFound) {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	settings, inserted, err := s.store.Insert(ctx, domain.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}

	if inserted {
		s.logger.Info("created default settings")
		s.publish(ctx, settings, true)
	}

	return settings, nil
}

// Update applies a partial update. The first write coalesces zero values to
// defaults; later writes overwrite every field present in the patch.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var (
		result *domain.Settings
		isNew  bool
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.store.GetForUpdate(txCtx)
		if errors.Is(err, domain.ErrSettingsNotFound) {
			created, inserted, err := s.store.Insert(txCtx, patch.NewSettings())
			if err != nil {
				return fmt.Errorf("insert settings: %w", err)
			}
			if inserted {
				result, isNew = created, true
				return nil
			}
			current = created
		} else if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		patch.ApplyTo(current)

		result, err = s.store.Save(txCtx, current)
		if err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.logger.Info("settings updated",
		"created", isNew,
		"breaking_news_expiry_hours", result.BreakingNewsExpiryHours,
		"trending_news_expiry_hours", result.TrendingNewsExpiryHours,
		"live_video_id", result.LiveVideoID,
	)

	s.publish(ctx, result, isNew)

	return result, nil
}

func (s *SettingsService) publish(ctx context.Context, settings *domain.Settings, isNew bool) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, settings, isNew); err != nil {
		s.logger.Warn("failed to publish settings change", "error", err)
	}
}
