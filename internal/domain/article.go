package domain

import "time"

// Article is the slice of an article the presentation helpers need. The
// content pipeline owns the full record.
type Article struct {
	Slug              string
	CategoryPathSlugs []string // root first, e.g. ["sport", "cricket"]
	Breaking          bool
	Trending          bool
	PublishedAt       time.Time
}

// Category is one level of the category tree shown in breadcrumbs.
type Category struct {
	Name string
	Slug string
}
