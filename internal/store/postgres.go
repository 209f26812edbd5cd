package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightside-news/brightside/internal/models"
)

const pgUniqueViolation = "23505"

const articleColumns = "id, title, author, description, date, url, image_url, publication, category, positivity_score"

// PostgresStore persists curated articles in a single table keyed by id,
// with a unique index on url backing deduplication.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the articles table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS articles (
            id               TEXT PRIMARY KEY,
            title            TEXT NOT NULL,
            author           TEXT NOT NULL DEFAULT '',
            description      TEXT NOT NULL DEFAULT '',
            date             TEXT NOT NULL DEFAULT '',
            url              TEXT NOT NULL UNIQUE,
            image_url        TEXT NOT NULL DEFAULT '',
            publication      TEXT NOT NULL DEFAULT '',
            category         TEXT NOT NULL DEFAULT '',
            positivity_score DOUBLE PRECISION NOT NULL
        )
    `
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure articles schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check url exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Insert(ctx context.Context, article models.Article) (models.Article, error) {
	article.ID = uuid.NewString()

	query := `
        INSERT INTO articles (` + articleColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := s.db.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Author,
		article.Description,
		article.Date,
		article.URL,
		article.ImageURL,
		article.Publication,
		string(article.Category),
		article.PositivityScore,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.Article{}, ErrDuplicateURL
		}
		return models.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return article, nil
}

func (s *PostgresStore) Find(ctx context.Context, q Query) ([]models.Article, error) {
	var (
		conditions []string
		args       []any
	)

	if q.Filter.Keyword != "" {
		args = append(args, "%"+q.Filter.Keyword+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR author ILIKE $%d OR publication ILIKE $%d OR description ILIKE $%d)", n, n, n, n))
	}

	if len(q.Filter.Categories) > 0 {
		categories := make([]string, 0, len(q.Filter.Categories))
		for _, c := range q.Filter.Categories {
			categories = append(categories, string(c))
		}
		args = append(args, categories)
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d)", len(args)))
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn(q.SortBy), sortDirection(q.SortOrder))
	args = append(args, q.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		var category string
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Author,
			&a.Description,
			&a.Date,
			&a.URL,
			&a.ImageURL,
			&a.Publication,
			&category,
			&a.PositivityScore,
		); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		a.Category = models.Category(category)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}

	slog.Debug("[PostgresStore] Find complete", slog.Int("count", len(articles)))
	return articles, nil
}

// sortColumn maps a validated SortField onto its column. The query engine
// normalizes user input first; an unexpected value still degrades to date
// rather than interpolating arbitrary text.
func sortColumn(by SortField) string {
	switch by {
	case SortByTitle, SortByPublication, SortByCategory, SortByScore:
		return string(by)
	default:
		return string(SortByDate)
	}
}

func sortDirection(order SortOrder) string {
	if order == SortAsc {
		return "ASC"
	}
	return "DESC"
}
