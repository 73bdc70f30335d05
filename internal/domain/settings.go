package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultBreakingNewsExpiryHours = 24
	DefaultTrendingNewsExpiryHours = 48

	MaxLiveVideoIDLength = 64
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// Settings is the site-wide configuration record. Exactly one exists.
type Settings struct {
	BreakingNewsExpiryHours int       `db:"breaking_news_expiry_hours" json:"breakingNewsExpiryHours"`
	TrendingNewsExpiryHours int       `db:"trending_news_expiry_hours" json:"trendingNewsExpiryHours"`
	LiveVideoID             string    `db:"live_video_id" json:"liveVideoId"`
	CreatedAt               time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt               time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultSettings returns the record materialized when none exists yet.
func DefaultSettings() *Settings {
	return &Settings{
		BreakingNewsExpiryHours: DefaultBreakingNewsExpiryHours,
		TrendingNewsExpiryHours: DefaultTrendingNewsExpiryHours,
		LiveVideoID:             "",
	}
}

// BreakingNewsTTL is how long an article keeps its breaking flag.
func (s *Settings) BreakingNewsTTL() time.Duration {
	return time.Duration(s.BreakingNewsExpiryHours) * time.Hour
}

func (s *Settings) TrendingNewsTTL() time.Duration {
	return time.Duration(s.TrendingNewsExpiryHours) * time.Hour
}

// SettingsPatch is a partial update. A nil field is absent from the request.
type SettingsPatch struct {
	BreakingNewsExpiryHours *int    `json:"breakingNewsExpiryHours"`
	TrendingNewsExpiryHours *int    `json:"trendingNewsExpiryHours"`
	LiveVideoID             *string `json:"liveVideoId"`
}

// Validate checks the fields that are present.
func (p SettingsPatch) Validate() error {
	if p.BreakingNewsExpiryHours != nil && *p.BreakingNewsExpiryHours < 1 {
		return fmt.Errorf("%w: breakingNewsExpiryHours must be a positive integer", ErrInvalidSettings)
	}
	if p.TrendingNewsExpiryHours != nil && *p.TrendingNewsExpiryHours < 1 {
		return fmt.Errorf("%w: trendingNewsExpiryHours must be a positive integer", ErrInvalidSettings)
	}
	if p.LiveVideoID != nil && utf8.RuneCountInString(strings.TrimSpace(*p.LiveVideoID)) > MaxLiveVideoIDLength {
		return fmt.Errorf("%w: liveVideoId exceeds %d characters", ErrInvalidSettings, MaxLiveVideoIDLength)
	}
	return nil
}

// NewSettings builds the first record from a patch. Missing or zero values
// fall back to the defaults.
func (p SettingsPatch) NewSettings() *Settings {
	s := DefaultSettings()
	s.BreakingNewsExpiryHours = coalesce(p.BreakingNewsExpiryHours, s.BreakingNewsExpiryHours)
	s.TrendingNewsExpiryHours = coalesce(p.TrendingNewsExpiryHours, s.TrendingNewsExpiryHours)
	s.LiveVideoID = strings.TrimSpace(coalesce(p.LiveVideoID, s.LiveVideoID))
	return s
}

// ApplyTo overwrites every field present in the patch, zero values included.
func (p SettingsPatch) ApplyTo(s *Settings) {
	if p.BreakingNewsExpiryHours != nil {
		s.BreakingNewsExpiryHours = *p.BreakingNewsExpiryHours
	}
	if p.TrendingNewsExpiryHours != nil {
		s.TrendingNewsExpiryHours = *p.TrendingNewsExpiryHours
	}
	if p.LiveVideoID != nil {
		s.LiveVideoID = strings.TrimSpace(*p.LiveVideoID)
	}
}

// IsEmpty reports whether no field is present.
func (p SettingsPatch) IsEmpty() bool {
	return p.BreakingNewsExpiryHours == nil && p.TrendingNewsExpiryHours == nil && p.LiveVideoID == nil
}

func coalesce[T comparable](v *T, def T) T {
	var zero T
	if v == nil || *v == zero {
		return def
	}
	return *v
}
