package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-news/brightside/internal/models"
)

func TestMemoryStoreInsertAssignsID(t *testing.T) {
	s := NewMemoryStore()

	saved, err := s.Insert(context.Background(), models.Article{Title: "t", URL: "https://example.com/1"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
}

func TestMemoryStoreInsertRejectsDuplicateURL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, models.Article{Title: "first", URL: "https://example.com/dup"})
	require.NoError(t, err)

	_, err = s.Insert(ctx, models.Article{Title: "second", URL: "https://example.com/dup"})
	require.ErrorIs(t, err, ErrDuplicateURL)
}

func TestMemoryStoreExistsByURL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	exists, err := s.ExistsByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Insert(ctx, models.Article{Title: "t", URL: "https://example.com/a"})
	require.NoError(t, err)

	exists, err = s.ExistsByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStoreFindFiltersSortsAndPaginates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, models.Article{
			Title:    fmt.Sprintf("Sports story %d", i),
			URL:      fmt.Sprintf("https://example.com/sports/%d", i),
			Date:     fmt.Sprintf("2024-01-0%dT00:00:00Z", i+1),
			Category: models.CategorySports,
		})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, models.Article{
		Title:    "Health story",
		URL:      "https://example.com/health/1",
		Date:     "2024-02-01T00:00:00Z",
		Category: models.CategoryHealth,
	})
	require.NoError(t, err)

	got, err := s.Find(ctx, Query{
		Filter:    Filter{Categories: []models.Category{models.CategorySports}},
		SortBy:    SortByDate,
		SortOrder: SortDesc,
		Skip:      1,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sports story 3", got[0].Title)
	assert.Equal(t, "Sports story 2", got[1].Title)
}
