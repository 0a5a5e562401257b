// Package classifier wraps the remote zero-shot text and NSFW image
// classification endpoints. Responses are decoded against a strict
// schema and any mismatch is an error: callers fail closed, they never
// guess at ad hoc fields.
package classifier

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single classifier call. One attempt per
// request, no retry.
const DefaultTimeout = 15 * time.Second

// TextResult holds the per-label confidence scores of a zero-shot
// classification, ordered by descending score.
type TextResult struct {
	Labels []string
	Scores []float64
}

// Top returns the highest-confidence label and its score.
func (r TextResult) Top() (string, float64) {
	if len(r.Labels) == 0 {
		return "", 0
	}
	top, score := r.Labels[0], r.Scores[0]
	for i := 1; i < len(r.Labels); i++ {
		if r.Scores[i] > score {
			top, score = r.Labels[i], r.Scores[i]
		}
	}
	return top, score
}

// ImageResult holds an NSFW detection outcome.
type ImageResult struct {
	Label string
	Score float64
}

// TextClassifier classifies text against a candidate label set.
type TextClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (TextResult, error)
}

// ImageClassifier classifies decoded image bytes.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, data []byte) (ImageResult, error)
}

// ImageFetcher resolves an image reference to validated image bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
