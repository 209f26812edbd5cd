package store

import (
	"sort"
	"strings"

	"github.com/brightside-news/brightside/internal/models"
)

// In-process query evaluation shared by the stores that cannot push the
// predicate down to the engine (memory, DynamoDB scans).

// Matches reports whether the article satisfies the filter.
func (f Filter) Matches(a models.Article) bool {
	if f.Keyword != "" && !matchesKeyword(a, f.Keyword) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, a.Category) {
		return false
	}
	return true
}

func matchesKeyword(a models.Article, keyword string) bool {
	for _, field := range []string{a.Title, a.Author, a.Publication, a.Description} {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}

func containsCategory(set []models.Category, c models.Category) bool {
	for _, candidate := range set {
		if candidate == c {
			return true
		}
	}
	return false
}

// SortArticles orders articles in place by the given field. Dates are stored
// as ISO-8601 strings, so lexicographic order is chronological order.
func SortArticles(articles []models.Article, by SortField, order SortOrder) {
	less := func(a, b models.Article) bool {
		switch by {
		case SortByTitle:
			return a.Title < b.Title
		case SortByPublication:
			return a.Publication < b.Publication
		case SortByCategory:
			return a.Category < b.Category
		case SortByScore:
			return a.PositivityScore < b.PositivityScore
		default:
			return a.Date < b.Date
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		if order == SortAsc {
			return less(articles[i], articles[j])
		}
		return less(articles[j], articles[i])
	})
}

// Paginate slices the sorted result set down to one window.
func Paginate(articles []models.Article, skip, limit int) []models.Article {
	if skip >= len(articles) {
		return nil
	}
	articles = articles[skip:]
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}
