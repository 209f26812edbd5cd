package sentiment

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by ScoreBatch when Initialize has not yet
// succeeded. It signals a sequencing bug in the caller, not a model problem.
var ErrNotInitialized = errors.New("sentiment: scorer not initialized, call Initialize first")

// ModelLoadError reports a failed model load. The scorer stays uninitialized
// so the caller can retry a later run.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("sentiment: failed to load model %q: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// Scorer turns raw text into positivity scores in [0,1].
//
// Initialize is idempotent after its first success and must succeed before
// ScoreBatch is called. ScoreBatch returns one score per input text, in
// input order.
type Scorer interface {
	Initialize(ctx context.Context) error
	ScoreBatch(ctx context.Context, texts []string) ([]float64, error)
}

// positivity maps a classifier label and its confidence onto a positivity
// score: POSITIVE keeps the confidence, anything else inverts it.
func positivity(label string, confidence float64) float64 {
	score := confidence
	if label != "POSITIVE" {
		score = 1 - confidence
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
