package sentiment

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// VaderScorer is a lexicon-based fallback when no ONNX runtime is available.
// VADER's compound score lives in [-1,1]; it is rescaled into the [0,1]
// positivity contract.
type VaderScorer struct {
	mu          sync.Mutex
	analyzer    *govader.SentimentIntensityAnalyzer
	initialized bool
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{}
}

func (s *VaderScorer) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.analyzer = govader.NewSentimentIntensityAnalyzer()
	s.initialized = true
	return nil
}

func (s *VaderScorer) ScoreBatch(_ context.Context, texts []string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	scores := make([]float64, len(texts))
	for i, text := range texts {
		compound := s.analyzer.PolarityScores(toPlainText(text)).Compound
		scores[i] = clamp01((compound + 1) / 2)
	}
	return scores, nil
}

// toPlainText renders any markdown to text and strips bare links, which
// carry no sentiment and skew the lexicon lookup.
func toPlainText(input string) string {
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := strings.Join(strings.Fields(string(rendered)), " ")

	plain = linkPattern.ReplaceAllString(plain, "$1")
	return urlPattern.ReplaceAllString(plain, "")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
