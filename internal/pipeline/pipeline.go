package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/brightside-news/brightside/internal/models"
	"github.com/brightside-news/brightside/internal/sentiment"
	"github.com/brightside-news/brightside/internal/store"
)

const (
	DEFAULT_FETCH_SIZE = 80
	DEFAULT_THRESHOLD  = 0.9
)

// ArticleSource returns a bounded batch of the most recent raw headlines for
// one category.
type ArticleSource interface {
	TopHeadlines(ctx context.Context, category string, pageSize int) ([]models.RawArticle, error)
}

// SeenCache is an optional fast path in front of the store's URL existence
// check. Both methods are best-effort: a miss or a cache failure just falls
// through to the store.
type SeenCache interface {
	IsSeen(ctx context.Context, url string) bool
	MarkSeen(ctx context.Context, url string) error
}

type Config struct {
	// FetchSize bounds how many headlines are pulled per category.
	FetchSize int
	// Threshold is the positivity cutoff. Scores must be strictly greater
	// to survive; a borderline score equal to the threshold is dropped.
	Threshold float64
}

// ConfigFromEnv reads FETCH_SIZE_PER_CATEGORY and POSITIVITY_THRESHOLD,
// falling back to the defaults on absent or malformed values.
func ConfigFromEnv() Config {
	cfg := Config{FetchSize: DEFAULT_FETCH_SIZE, Threshold: DEFAULT_THRESHOLD}

	if v, err := strconv.Atoi(os.Getenv("FETCH_SIZE_PER_CATEGORY")); err == nil && v > 0 {
		cfg.FetchSize = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("POSITIVITY_THRESHOLD"), 64); err == nil && v >= 0 && v <= 1 {
		cfg.Threshold = v
	}
	return cfg
}

// Pipeline runs one best-effort curation pass: per category, fetch headlines,
// score them in a single batch, keep those above the positivity threshold,
// dedup by URL and persist the survivors.
type Pipeline struct {
	source ArticleSource
	scorer sentiment.Scorer
	store  store.ArticleStore
	cache  SeenCache
	cfg    Config
	logger *slog.Logger
}

func New(source ArticleSource, scorer sentiment.Scorer, articles store.ArticleStore, cache SeenCache, cfg Config) *Pipeline {
	if cfg.FetchSize <= 0 {
		cfg.FetchSize = DEFAULT_FETCH_SIZE
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DEFAULT_THRESHOLD
	}
	return &Pipeline{
		source: source,
		scorer: scorer,
		store:  articles,
		cache:  cache,
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// WithLogger replaces the pipeline's logger.
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Run processes every category independently and aggregates the outcome. A
// category failure is recorded and never aborts the run; only a scorer
// initialization failure is fatal, since nothing can be scored without a
// model.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	if err := p.scorer.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize sentiment scorer: %w", err)
	}

	result := &models.RunResult{}
	for _, category := range models.AllCategories() {
		p.processCategory(ctx, category, result)
		result.CategoriesProcessed++
	}

	p.logger.Info("[Pipeline] Run complete",
		slog.Int("categories", result.CategoriesProcessed),
		slog.Int("fetched", result.ArticlesFetched),
		slog.Int("positive", result.ArticlesPositive),
		slog.Int("saved", result.ArticlesSaved),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func (p *Pipeline) processCategory(ctx context.Context, category models.Category, result *models.RunResult) {
	p.logger.Info("[Pipeline] Fetching articles", slog.String("category", string(category)))

	raw, err := p.source.TopHeadlines(ctx, string(category), p.cfg.FetchSize)
	if err != nil {
		p.logger.Error("[Pipeline] Failed to fetch articles",
			slog.String("category", string(category)),
			slog.String("error", err.Error()))
		result.Errors = append(result.Errors, models.CategoryError{
			Category: category,
			Message:  fmt.Sprintf("fetch: %v", err),
		})
		return
	}
	result.ArticlesFetched += len(raw)
	if len(raw) == 0 {
		return
	}

	// One batch call per category keeps the 1:1 score-to-article mapping
	// and amortizes the model overhead.
	titles := make([]string, len(raw))
	for i, article := range raw {
		titles[i] = article.Title
	}

	scores, err := p.scorer.ScoreBatch(ctx, titles)
	if err != nil {
		p.logger.Error("[Pipeline] Failed to score articles",
			slog.String("category", string(category)),
			slog.String("error", err.Error()))
		result.Errors = append(result.Errors, models.CategoryError{
			Category: category,
			Message:  fmt.Sprintf("score: %v", err),
		})
		return
	}

	for i, article := range raw {
		score := scores[i]
		if score <= p.cfg.Threshold {
			continue
		}
		result.ArticlesPositive++

		if p.alreadyCurated(ctx, article.URL) {
			continue
		}

		saved, err := p.store.Insert(ctx, models.Article{
			Title:           article.Title,
			Author:          article.Author,
			Description:     article.Description,
			Date:            article.PublishedAt,
			URL:             article.URL,
			ImageURL:        article.URLToImage,
			Publication:     article.Source.Name,
			Category:        category,
			PositivityScore: score,
		})
		if errors.Is(err, store.ErrDuplicateURL) {
			// Lost a race with a concurrent writer; the article is
			// curated either way.
			p.markSeen(ctx, article.URL)
			continue
		}
		if err != nil {
			p.logger.Warn("[Pipeline] Failed to save article",
				slog.String("category", string(category)),
				slog.String("url", article.URL),
				slog.String("error", err.Error()))
			continue
		}

		result.ArticlesSaved++
		p.markSeen(ctx, saved.URL)
	}
}

// alreadyCurated checks the seen cache first, then the store. A store
// failure reads as "not curated": the insert's uniqueness backstop catches
// any duplicate that slips through.
func (p *Pipeline) alreadyCurated(ctx context.Context, url string) bool {
	if p.cache != nil && p.cache.IsSeen(ctx, url) {
		return true
	}

	exists, err := p.store.ExistsByURL(ctx, url)
	if err != nil {
		p.logger.Warn("[Pipeline] Existence check failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return false
	}
	if exists {
		p.markSeen(ctx, url)
	}
	return exists
}

func (p *Pipeline) markSeen(ctx context.Context, url string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.MarkSeen(ctx, url); err != nil {
		p.logger.Warn("[Pipeline] Failed to mark url as seen",
			slog.String("url", url),
			slog.String("error", err.Error()))
	}
}
