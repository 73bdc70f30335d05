// Package article holds pure presentation helpers for canonical URLs,
// breadcrumbs, timestamps and highlight policy. It is a library for the
// frontend-facing layers; neither binary in this module imports it.
package article

import (
	"strings"

	"newsdesk/internal/domain"
)

// Ref is the minimum needed to address an article.
type Ref struct {
	Slug              string
	CategoryPathSlugs []string
}

// RefOf extracts the addressing part of an article.
func RefOf(a domain.Article) Ref {
	return Ref{Slug: a.Slug, CategoryPathSlugs: a.CategoryPathSlugs}
}

// BuildURL returns "/b/c/a" for slug "a" under category path ["b", "c"],
// "/a" when the article has no category path and "/" when it has no slug.
func BuildURL(ref Ref) string {
	slug := strings.Trim(strings.TrimSpace(ref.Slug), "/")
	if slug == "" {
		return "/"
	}

	parts := make([]string, 0, len(ref.CategoryPathSlugs)+1)
	for _, c := range ref.CategoryPathSlugs {
		c = strings.Trim(strings.TrimSpace(c), "/")
		if c != "" {
			parts = append(parts, c)
		}
	}
	parts = append(parts, slug)

	return "/" + strings.Join(parts, "/")
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	Name string
	Path string
}

// Breadcrumbs returns one crumb per category with cumulative paths, so
// [{Sport sport} {Cricket cricket}] yields /sport and /sport/cricket.
// Categories with an empty slug are skipped.
func Breadcrumbs(categories []domain.Category) []Crumb {
	crumbs := make([]Crumb, 0, len(categories))
	path := ""
	for _, c := range categories {
		slug := strings.Trim(strings.TrimSpace(c.Slug), "/")
		if slug == "" {
			continue
		}
		path += "/" + slug
		crumbs = append(crumbs, Crumb{Name: c.Name, Path: path})
	}
	return crumbs
}
