package article

import (
	"time"

	"github.com/dustin/go-humanize"

	"newsdesk/internal/domain"
)

const justNowWindow = time.Minute

// RelativeTime renders t relative to now, e.g. "3 hours ago". Anything
// within a minute either side reads "just now".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	if d < justNowWindow && d > -justNowWindow {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// IsBreaking reports whether a flagged article is still inside the breaking
// news window configured in settings.
func IsBreaking(a domain.Article, s *domain.Settings, now time.Time) bool {
	if !a.Breaking {
		return false
	}
	return within(a.PublishedAt, ttl(s, true), now)
}

// IsTrending reports whether a flagged article is still inside the trending
// window configured in settings.
func IsTrending(a domain.Article, s *domain.Settings, now time.Time) bool {
	if !a.Trending {
		return false
	}
	return within(a.PublishedAt, ttl(s, false), now)
}

func ttl(s *domain.Settings, breaking bool) time.Duration {
	if s == nil {
		s = domain.DefaultSettings()
	}
	if breaking {
		return s.BreakingNewsTTL()
	}
	return s.TrendingNewsTTL()
}

func within(published time.Time, ttl time.Duration, now time.Time) bool {
	if published.IsZero() {
		return false
	}
	return now.Sub(published) < ttl
}
