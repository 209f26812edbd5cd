package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/brightside-news/brightside/internal/models"
)

const NEWS_API_ENDPOINT = "https://newsapi.org/v2/top-headlines"

// ErrSourceUnavailable wraps every provider failure the caller cannot fix by
// changing the request: network errors, rate limiting past the retry budget,
// credential problems. The pipeline isolates it per category.
var ErrSourceUnavailable = errors.New("news source unavailable")

var (
	newsAPIInstance *NewsAPIClient
	newsAPIOnce     sync.Once
)

type NewsAPIClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func NewNewsAPIClient(apiKey, baseURL string) *NewsAPIClient {
	if baseURL == "" {
		baseURL = NEWS_API_ENDPOINT
	}
	return &NewsAPIClient{
		Client:         &http.Client{Timeout: 30 * time.Second},
		APIKey:         apiKey,
		BaseURL:        baseURL,
		maxRetries:     MAX_RETRIES,
		initialBackoff: INITIAL_BACKOFF,
		maxBackoff:     MAX_BACKOFF,
	}
}

func GetNewsAPIClient() *NewsAPIClient {
	newsAPIOnce.Do(func() {
		newsAPIInstance = NewNewsAPIClient(os.Getenv("NEWS_API_KEY"), "")
	})
	return newsAPIInstance
}

// TopHeadlines fetches up to pageSize of the most recent US headlines for a
// category, retrying transient provider failures with exponential backoff.
func (n *NewsAPIClient) TopHeadlines(ctx context.Context, category string, pageSize int) ([]models.RawArticle, error) {
	if n.APIKey == "" {
		slog.Error("[NewsAPIClient] API key is missing")
		return nil, fmt.Errorf("%w: API key is missing", ErrSourceUnavailable)
	}

	params := url.Values{}
	params.Set("country", "us")
	params.Set("category", category)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", "1")
	params.Set("apiKey", n.APIKey)
	endpoint := n.BaseURL + "?" + params.Encode()

	var lastErr error
	backoff := n.initialBackoff

	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		slog.Info("[NewsAPIClient] Fetching top headlines",
			slog.String("category", category),
			slog.Int("attempt", attempt))

		articles, retry, err := n.fetchOnce(ctx, endpoint)
		if err == nil {
			return articles, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}

		slog.Warn("[NewsAPIClient] Fetch failed, will retry",
			slog.String("category", category),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > n.maxBackoff {
			backoff = n.maxBackoff
		}
	}

	slog.Error("[NewsAPIClient] Failed after max retries", slog.String("category", category))
	return nil, fmt.Errorf("%w: giving up after %d attempts: %v", ErrSourceUnavailable, n.maxRetries, lastErr)
}

// fetchOnce performs one request. The second return value reports whether
// the failure is worth retrying.
func (n *NewsAPIClient) fetchOnce(ctx context.Context, endpoint string) ([]models.RawArticle, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	res, err := n.Client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, true, fmt.Errorf("%w: read response body: %v", ErrSourceUnavailable, err)
		}
		var response models.NewsAPITopHeadlinesResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, false, fmt.Errorf("%w: parse JSON response: %v", ErrSourceUnavailable, err)
		}
		slog.Info("[NewsAPIClient] Successfully fetched headlines",
			slog.Int("count", len(response.Articles)))
		return response.Articles, false, nil
	case http.StatusBadRequest:
		return nil, false, fmt.Errorf("%w: bad request, check query parameters", ErrSourceUnavailable)
	case http.StatusUnauthorized:
		return nil, false, fmt.Errorf("%w: invalid API key", ErrSourceUnavailable)
	case http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: API key lacks required permissions", ErrSourceUnavailable)
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, res.Body)
		return nil, true, fmt.Errorf("%w: rate limit exceeded", ErrSourceUnavailable)
	default:
		if res.StatusCode >= 500 {
			return nil, true, fmt.Errorf("%w: server error %d", ErrSourceUnavailable, res.StatusCode)
		}
		return nil, false, fmt.Errorf("%w: unexpected status code %d", ErrSourceUnavailable, res.StatusCode)
	}
}
