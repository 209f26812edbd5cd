package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightside-news/brightside/internal/models"
	"github.com/brightside-news/brightside/internal/store"
)

const MAX_PAGE_SIZE = 100

// Engine translates a read request into one bounded store query. Malformed
// parameters are normalized, never rejected: pagination is clamped, unknown
// sort fields fall back to date, and an empty match is an empty page.
type Engine struct {
	store store.ArticleStore
}

func NewEngine(articles store.ArticleStore) *Engine {
	return &Engine{store: articles}
}

func (e *Engine) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MAX_PAGE_SIZE {
		pageSize = MAX_PAGE_SIZE
	}

	sortBy, ok := store.ParseSortField(req.SortBy)
	if !ok {
		sortBy = store.SortByDate
	}
	sortOrder := store.SortDesc
	if req.SortOrder == "asc" {
		sortOrder = store.SortAsc
	}

	q := store.Query{
		Filter: store.Filter{
			Keyword:    strings.ToLower(strings.TrimSpace(req.Keyword)),
			Categories: req.Categories,
		},
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Skip:      (page - 1) * pageSize,
		// Fetch one extra row: its presence is the exact next-page signal
		// and costs less than a separate count query.
		Limit: pageSize + 1,
	}

	articles, err := e.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	hasNextPage := len(articles) > pageSize
	if hasNextPage {
		articles = articles[:pageSize]
	}
	if articles == nil {
		articles = []models.Article{}
	}

	return &models.QueryResult{Articles: articles, HasNextPage: hasNextPage}, nil
}
