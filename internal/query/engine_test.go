package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-news/brightside/internal/models"
	"github.com/brightside-news/brightside/internal/store"
)

// captureStore records the translated store query and returns a canned page.
type captureStore struct {
	lastQuery store.Query
	articles  []models.Article
	err       error
}

func (c *captureStore) ExistsByURL(context.Context, string) (bool, error) { return false, nil }

func (c *captureStore) Insert(_ context.Context, a models.Article) (models.Article, error) {
	return a, nil
}

func (c *captureStore) Find(_ context.Context, q store.Query) ([]models.Article, error) {
	c.lastQuery = q
	return c.articles, c.err
}

func seededStore(t *testing.T, n int) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	for i := 0; i < n; i++ {
		_, err := s.Insert(context.Background(), models.Article{
			Title:           fmt.Sprintf("Cheerful story %02d", i),
			URL:             fmt.Sprintf("https://example.com/%d", i),
			Date:            fmt.Sprintf("2024-01-%02dT00:00:00Z", i+1),
			Category:        models.CategoryHealth,
			PositivityScore: 0.95,
		})
		require.NoError(t, err)
	}
	return s
}

func TestQueryHasNextPageWithExactlyOneMore(t *testing.T) {
	engine := NewEngine(seededStore(t, 16))

	result, err := engine.Query(context.Background(), models.QueryRequest{Page: 1, PageSize: 15})
	require.NoError(t, err)

	assert.Len(t, result.Articles, 15)
	assert.True(t, result.HasNextPage)
}

func TestQueryNoNextPageOnExactFit(t *testing.T) {
	engine := NewEngine(seededStore(t, 15))

	result, err := engine.Query(context.Background(), models.QueryRequest{Page: 1, PageSize: 15})
	require.NoError(t, err)

	assert.Len(t, result.Articles, 15)
	assert.False(t, result.HasNextPage)
}

func TestQuerySecondPageIsTheRemainder(t *testing.T) {
	engine := NewEngine(seededStore(t, 16))

	result, err := engine.Query(context.Background(), models.QueryRequest{Page: 2, PageSize: 15})
	require.NoError(t, err)

	assert.Len(t, result.Articles, 1)
	assert.False(t, result.HasNextPage)
}

func TestQueryEmptyMatchReturnsEmptyPage(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore())

	result, err := engine.Query(context.Background(), models.QueryRequest{Keyword: "nothing here"})
	require.NoError(t, err)

	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)
	assert.False(t, result.HasNextPage)
}

func TestQueryClampsPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantSkip  int
		wantLimit int
	}{
		{name: "oversized pageSize clamps to 100", page: 1, pageSize: 500, wantSkip: 0, wantLimit: 101},
		{name: "zero pageSize clamps to 1", page: 1, pageSize: 0, wantSkip: 0, wantLimit: 2},
		{name: "zero page clamps to 1", page: 0, pageSize: 10, wantSkip: 0, wantLimit: 11},
		{name: "negative page clamps to 1", page: -3, pageSize: 10, wantSkip: 0, wantLimit: 11},
		{name: "skip grows with page", page: 3, pageSize: 20, wantSkip: 40, wantLimit: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &captureStore{}
			_, err := NewEngine(fake).Query(context.Background(), models.QueryRequest{
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, fake.lastQuery.Skip)
			assert.Equal(t, tt.wantLimit, fake.lastQuery.Limit)
		})
	}
}

func TestQueryUnknownSortFieldFallsBackToDate(t *testing.T) {
	fake := &captureStore{}
	engine := NewEngine(fake)

	_, err := engine.Query(context.Background(), models.QueryRequest{SortBy: "bogus"})
	require.NoError(t, err)
	bogusQuery := fake.lastQuery

	_, err = engine.Query(context.Background(), models.QueryRequest{SortBy: "date"})
	require.NoError(t, err)

	assert.Equal(t, fake.lastQuery, bogusQuery)
	assert.Equal(t, store.SortByDate, bogusQuery.SortBy)
}

func TestQuerySortOrderDefaultsToDescending(t *testing.T) {
	fake := &captureStore{}
	engine := NewEngine(fake)

	_, err := engine.Query(context.Background(), models.QueryRequest{SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, store.SortAsc, fake.lastQuery.SortOrder)

	_, err = engine.Query(context.Background(), models.QueryRequest{SortOrder: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, store.SortDesc, fake.lastQuery.SortOrder)
}

func TestQueryNormalizesKeyword(t *testing.T) {
	fake := &captureStore{}

	_, err := NewEngine(fake).Query(context.Background(), models.QueryRequest{Keyword: "  Market Update "})
	require.NoError(t, err)

	assert.Equal(t, "market update", fake.lastQuery.Filter.Keyword)
}

func TestQueryKeywordMatchesDescription(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.Insert(context.Background(), models.Article{
		Title:       "Quiet day on the exchange",
		Description: "A surprising Market Update lifted spirits",
		URL:         "https://example.com/market",
	})
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), models.Article{
		Title: "Garden show delights visitors",
		URL:   "https://example.com/garden",
	})
	require.NoError(t, err)

	result, err := NewEngine(s).Query(context.Background(), models.QueryRequest{Keyword: "market"})
	require.NoError(t, err)

	require.Len(t, result.Articles, 1)
	assert.Equal(t, "https://example.com/market", result.Articles[0].URL)
}

func TestQueryCategoriesPassThrough(t *testing.T) {
	fake := &captureStore{}

	_, err := NewEngine(fake).Query(context.Background(), models.QueryRequest{
		Categories: []models.Category{models.CategoryHealth, models.CategoryScience},
	})
	require.NoError(t, err)

	assert.Equal(t, []models.Category{models.CategoryHealth, models.CategoryScience}, fake.lastQuery.Filter.Categories)
}
