package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/brightside-news/brightside/internal/models"
)

// MemoryStore is a mutex-guarded in-process ArticleStore. It backs tests and
// local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []models.Article
	byURL    map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byURL: make(map[string]struct{})}
}

func (m *MemoryStore) ExistsByURL(_ context.Context, url string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byURL[url]
	return ok, nil
}

func (m *MemoryStore) Insert(_ context.Context, article models.Article) (models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byURL[article.URL]; ok {
		return models.Article{}, ErrDuplicateURL
	}

	article.ID = uuid.NewString()
	m.articles = append(m.articles, article)
	m.byURL[article.URL] = struct{}{}
	return article, nil
}

func (m *MemoryStore) Find(_ context.Context, q Query) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Article
	for _, a := range m.articles {
		if q.Filter.Matches(a) {
			matched = append(matched, a)
		}
	}

	SortArticles(matched, q.SortBy, q.SortOrder)
	return Paginate(matched, q.Skip, q.Limit), nil
}
