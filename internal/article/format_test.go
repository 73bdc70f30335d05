package article

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"newsdesk/internal/domain"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "", RelativeTime(time.Time{}, now))
	assert.Equal(t, "just now", RelativeTime(now.Add(-30*time.Second), now))
	assert.Equal(t, "just now", RelativeTime(now.Add(10*time.Second), now))
	assert.Equal(t, "3 hours ago", RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "3 hours from now", RelativeTime(now.Add(3*time.Hour), now))
}

func TestIsBreaking(t *testing.T) {
	settings := &domain.Settings{BreakingNewsExpiryHours: 6, TrendingNewsExpiryHours: 48}

	fresh := domain.Article{Breaking: true, PublishedAt: now.Add(-5 * time.Hour)}
	stale := domain.Article{Breaking: true, PublishedAt: now.Add(-6 * time.Hour)}
	unflagged := domain.Article{PublishedAt: now}
	undated := domain.Article{Breaking: true}

	assert.True(t, IsBreaking(fresh, settings, now))
	assert.False(t, IsBreaking(stale, settings, now))
	assert.False(t, IsBreaking(unflagged, settings, now))
	assert.False(t, IsBreaking(undated, settings, now))
}

func TestIsTrending(t *testing.T) {
	settings := &domain.Settings{BreakingNewsExpiryHours: 6, TrendingNewsExpiryHours: 12}

	assert.True(t, IsTrending(domain.Article{Trending: true, PublishedAt: now.Add(-11 * time.Hour)}, settings, now))
	assert.False(t, IsTrending(domain.Article{Trending: true, PublishedAt: now.Add(-13 * time.Hour)}, settings, now))
	assert.False(t, IsTrending(domain.Article{Breaking: true, PublishedAt: now}, settings, now))
}

func TestHighlightPolicy_NilSettingsUsesDefaults(t *testing.T) {
	a := domain.Article{Breaking: true, Trending: true, PublishedAt: now.Add(-30 * time.Hour)}

	assert.False(t, IsBreaking(a, nil, now), "outside default 24h window")
	assert.True(t, IsTrending(a, nil, now), "inside default 48h window")
}
