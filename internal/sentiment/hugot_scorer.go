package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const (
	DEFAULT_MODEL_NAME = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"
	DEFAULT_MODEL_DIR  = "./models"
)

// HugotScorer runs an ONNX sentiment classifier in process. The model is
// downloaded on first Initialize and loading it is the expensive step, paid
// once per process lifetime; scoring is stateless per call.
type HugotScorer struct {
	mu sync.Mutex

	modelName string
	modelDir  string

	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline

	initialized bool
}

// NewHugotScorer reads SENTIMENT_MODEL and SENTIMENT_MODEL_DIR, falling back
// to the bundled defaults. The model is not loaded until Initialize.
func NewHugotScorer() *HugotScorer {
	modelName := os.Getenv("SENTIMENT_MODEL")
	if modelName == "" {
		modelName = DEFAULT_MODEL_NAME
	}
	modelDir := os.Getenv("SENTIMENT_MODEL_DIR")
	if modelDir == "" {
		modelDir = DEFAULT_MODEL_DIR
	}

	return &HugotScorer{modelName: modelName, modelDir: modelDir}
}

func (s *HugotScorer) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := os.MkdirAll(s.modelDir, os.ModePerm); err != nil {
		return &ModelLoadError{Model: s.modelName, Err: err}
	}

	slog.Info("[HugotScorer] Downloading model if not present",
		slog.String("model", s.modelName),
		slog.String("dir", s.modelDir))
	modelPath, err := hugot.DownloadModel(s.modelName, s.modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return &ModelLoadError{Model: s.modelName, Err: err}
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return &ModelLoadError{Model: s.modelName, Err: err}
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "positivityPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return &ModelLoadError{Model: s.modelName, Err: err}
	}

	s.session = session
	s.pipeline = pipeline
	s.initialized = true

	slog.Info("[HugotScorer] Model loaded successfully", slog.String("path", modelPath))
	return nil
}

func (s *HugotScorer) ScoreBatch(_ context.Context, texts []string) ([]float64, error) {
	s.mu.Lock()
	pipeline := s.pipeline
	initialized := s.initialized
	s.mu.Unlock()

	if !initialized {
		return nil, ErrNotInitialized
	}
	if len(texts) == 0 {
		return []float64{}, nil
	}

	output, err := pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("sentiment: classify batch: %w", err)
	}

	scores := make([]float64, len(texts))
	for i, outputs := range output.ClassificationOutputs {
		if i >= len(scores) || len(outputs) == 0 {
			continue
		}
		scores[i] = positivity(outputs[0].Label, float64(outputs[0].Score))
	}

	return scores, nil
}

// Close releases the ONNX session. The scorer can be re-initialized after.
func (s *HugotScorer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.Destroy()
		s.session = nil
		s.pipeline = nil
	}
	s.initialized = false
}
