package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightside-news/brightside/internal/models"
	"github.com/brightside-news/brightside/internal/store"
)

type fakeSource struct {
	byCategory map[string][]models.RawArticle
	failing    map[string]error
	fetchSizes []int
}

func (f *fakeSource) TopHeadlines(_ context.Context, category string, pageSize int) ([]models.RawArticle, error) {
	f.fetchSizes = append(f.fetchSizes, pageSize)
	if err, ok := f.failing[category]; ok {
		return nil, err
	}
	return f.byCategory[category], nil
}

// fakeScorer scores each title from a lookup table, defaulting to 0.5.
type fakeScorer struct {
	initErr     error
	initCalls   int
	scores      map[string]float64
	failOnTitle string
}

func (f *fakeScorer) Initialize(context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeScorer) ScoreBatch(_ context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	for i, text := range texts {
		if text == f.failOnTitle && f.failOnTitle != "" {
			return nil, errors.New("classifier blew up")
		}
		score, ok := f.scores[text]
		if !ok {
			score = 0.5
		}
		scores[i] = score
	}
	return scores, nil
}

type fakeCache struct {
	seen map[string]bool
}

func newFakeCache() *fakeCache { return &fakeCache{seen: map[string]bool{}} }

func (f *fakeCache) IsSeen(_ context.Context, url string) bool { return f.seen[url] }

func (f *fakeCache) MarkSeen(_ context.Context, url string) error {
	f.seen[url] = true
	return nil
}

func rawArticle(title, url string) models.RawArticle {
	a := models.RawArticle{
		Title:       title,
		URL:         url,
		PublishedAt: "2024-05-01T10:00:00Z",
	}
	a.Source.Name = "Test Wire"
	return a
}

func TestRunKeepsOnlyArticlesStrictlyAboveThreshold(t *testing.T) {
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"health": {
			rawArticle("glowing news", "https://example.com/glowing"),
			rawArticle("borderline news", "https://example.com/borderline"),
			rawArticle("gloomy news", "https://example.com/gloomy"),
		},
	}}
	scorer := &fakeScorer{scores: map[string]float64{
		"glowing news":    0.95,
		"borderline news": 0.9, // exactly at the threshold, must be dropped
		"gloomy news":     0.1,
	}}
	articles := store.NewMemoryStore()

	result, err := New(source, scorer, articles, nil, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.CategoriesProcessed)
	assert.Equal(t, 3, result.ArticlesFetched)
	assert.Equal(t, 1, result.ArticlesPositive)
	assert.Equal(t, 1, result.ArticlesSaved)
	assert.Empty(t, result.Errors)

	exists, err := articles.ExistsByURL(context.Background(), "https://example.com/glowing")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunPersistedArticleCarriesCategoryAndScore(t *testing.T) {
	raw := rawArticle("wonderful science", "https://example.com/science")
	raw.Author = "R. Searcher"
	raw.Description = "A delightful discovery"
	raw.URLToImage = "https://example.com/science.jpg"

	source := &fakeSource{byCategory: map[string][]models.RawArticle{"science": {raw}}}
	scorer := &fakeScorer{scores: map[string]float64{"wonderful science": 0.97}}
	articles := store.NewMemoryStore()

	_, err := New(source, scorer, articles, nil, Config{}).Run(context.Background())
	require.NoError(t, err)

	saved, err := articles.Find(context.Background(), store.Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	got := saved[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "wonderful science", got.Title)
	assert.Equal(t, "R. Searcher", got.Author)
	assert.Equal(t, "A delightful discovery", got.Description)
	assert.Equal(t, "2024-05-01T10:00:00Z", got.Date)
	assert.Equal(t, "https://example.com/science.jpg", got.ImageURL)
	assert.Equal(t, "Test Wire", got.Publication)
	assert.Equal(t, models.CategoryScience, got.Category)
	assert.Equal(t, 0.97, got.PositivityScore)
}

func TestRunIsolatesCategoryFetchFailures(t *testing.T) {
	byCategory := map[string][]models.RawArticle{}
	scores := map[string]float64{}
	for _, category := range models.AllCategories() {
		title := fmt.Sprintf("upbeat %s story", category)
		byCategory[string(category)] = []models.RawArticle{
			rawArticle(title, fmt.Sprintf("https://example.com/%s", category)),
		}
		scores[title] = 0.95
	}

	source := &fakeSource{
		byCategory: byCategory,
		failing:    map[string]error{"science": errors.New("provider down")},
	}
	articles := store.NewMemoryStore()

	result, err := New(source, &fakeScorer{scores: scores}, articles, nil, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.CategoriesProcessed)
	assert.Equal(t, 4, result.ArticlesFetched)
	assert.Equal(t, 4, result.ArticlesSaved)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, models.CategoryScience, result.Errors[0].Category)
	assert.Contains(t, result.Errors[0].Message, "provider down")
}

func TestRunScoreFailureIsCategoryScoped(t *testing.T) {
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"entertainment": {rawArticle("poisoned batch", "https://example.com/e")},
		"health":        {rawArticle("happy health", "https://example.com/h")},
	}}
	scorer := &fakeScorer{
		scores:      map[string]float64{"happy health": 0.95},
		failOnTitle: "poisoned batch",
	}
	articles := store.NewMemoryStore()

	result, err := New(source, scorer, articles, nil, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.CategoriesProcessed)
	assert.Equal(t, 1, result.ArticlesSaved)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, models.CategoryEntertainment, result.Errors[0].Category)
}

func TestRunDeduplicatesURLAcrossCategories(t *testing.T) {
	shared := "https://example.com/syndicated"
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"entertainment": {rawArticle("syndicated joy", shared)},
		"technology":    {rawArticle("syndicated joy", shared)},
	}}
	scorer := &fakeScorer{scores: map[string]float64{"syndicated joy": 0.99}}
	articles := store.NewMemoryStore()

	result, err := New(source, scorer, articles, nil, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.ArticlesPositive)
	assert.Equal(t, 1, result.ArticlesSaved, "second occurrence is a non-save, not an error")
	assert.Empty(t, result.Errors)

	stored, err := articles.Find(context.Background(), store.Query{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"sports": {
			rawArticle("triumphant win", "https://example.com/win"),
			rawArticle("record smashed", "https://example.com/record"),
		},
	}}
	scorer := &fakeScorer{scores: map[string]float64{
		"triumphant win": 0.93,
		"record smashed": 0.96,
	}}
	articles := store.NewMemoryStore()
	curator := New(source, scorer, articles, nil, Config{})

	first, err := curator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.ArticlesSaved)

	second, err := curator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.ArticlesPositive)
	assert.Equal(t, 0, second.ArticlesSaved)
	assert.Empty(t, second.Errors)
}

func TestRunScorerInitFailureIsFatal(t *testing.T) {
	initErr := errors.New("onnx runtime missing")
	source := &fakeSource{}
	articles := store.NewMemoryStore()

	result, err := New(source, &fakeScorer{initErr: initErr}, articles, nil, Config{}).Run(context.Background())
	require.ErrorIs(t, err, initErr)
	assert.Nil(t, result)
	assert.Empty(t, source.fetchSizes, "no category should be fetched without a model")
}

func TestRunUsesConfiguredFetchSize(t *testing.T) {
	source := &fakeSource{}
	articles := store.NewMemoryStore()

	_, err := New(source, &fakeScorer{}, articles, nil, Config{FetchSize: 25}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, source.fetchSizes, 5)
	for _, size := range source.fetchSizes {
		assert.Equal(t, 25, size)
	}
}

func TestRunSeenCacheShortCircuitsStoreLookup(t *testing.T) {
	url := "https://example.com/cached"
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"health": {rawArticle("cached cheer", url)},
	}}
	scorer := &fakeScorer{scores: map[string]float64{"cached cheer": 0.95}}
	articles := store.NewMemoryStore()

	cache := newFakeCache()
	cache.seen[url] = true

	result, err := New(source, scorer, articles, cache, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ArticlesPositive)
	assert.Equal(t, 0, result.ArticlesSaved)
}

func TestRunMarksSavedURLsAsSeen(t *testing.T) {
	url := "https://example.com/fresh"
	source := &fakeSource{byCategory: map[string][]models.RawArticle{
		"health": {rawArticle("fresh cheer", url)},
	}}
	scorer := &fakeScorer{scores: map[string]float64{"fresh cheer": 0.95}}
	cache := newFakeCache()

	_, err := New(source, scorer, store.NewMemoryStore(), cache, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, cache.seen[url])
}
