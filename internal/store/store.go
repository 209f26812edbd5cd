package store

import (
	"context"
	"errors"

	"github.com/brightside-news/brightside/internal/models"
)

// ErrDuplicateURL is returned by Insert when the store already holds an
// article with the same URL. Callers treat it as "already curated".
var ErrDuplicateURL = errors.New("store: article with this url already exists")

type SortField string

const (
	SortByDate        SortField = "date"
	SortByTitle       SortField = "title"
	SortByPublication SortField = "publication"
	SortByCategory    SortField = "category"
	SortByScore       SortField = "positivity_score"
)

// ParseSortField validates a caller-supplied sort field against the
// permitted set.
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case SortByDate, SortByTitle, SortByPublication, SortByCategory, SortByScore:
		return SortField(s), true
	default:
		return "", false
	}
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter is the predicate half of a store query. Zero-value fields impose no
// constraint. Keyword must already be trimmed and lower-cased; it matches as
// a case-insensitive substring of title, author, publication or description.
// Categories match with OR semantics.
type Filter struct {
	Keyword    string
	Categories []models.Category
}

// Query describes one filtered, sorted, bounded read.
type Query struct {
	Filter    Filter
	SortBy    SortField
	SortOrder SortOrder
	Skip      int
	Limit     int
}

// ArticleStore is the persistence boundary shared by the ingestion pipeline
// and the query engine.
type ArticleStore interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// Insert assigns the article its id and persists it. Returns
	// ErrDuplicateURL when the URL is already stored.
	Insert(ctx context.Context, article models.Article) (models.Article, error)
	Find(ctx context.Context, q Query) ([]models.Article, error)
}
