package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/voocel/aegis/schema"
)

// HFTextClassifier calls a Hugging Face zero-shot classification
// endpoint (bart-large-mnli style).
type HFTextClassifier struct {
	client *resty.Client
	url    string
}

// NewHFTextClassifier creates a text classifier client. The timeout
// bounds the whole call; zero selects DefaultTimeout.
func NewHFTextClassifier(url, token string, timeout time.Duration) *HFTextClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HFTextClassifier{client: client, url: url}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify runs one zero-shot classification call.
func (c *HFTextClassifier) Classify(ctx context.Context, text string, labels []string) (TextResult, error) {
	if len(labels) == 0 {
		return TextResult{}, schema.NewClassifierError("text", "classify", fmt.Errorf("no candidate labels"))
	}

	var out zeroShotResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(zeroShotRequest{
			Inputs:     text,
			Parameters: zeroShotParameters{CandidateLabels: labels},
		}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return TextResult{}, schema.NewClassifierError("text", "classify", err)
	}
	if resp.IsError() {
		return TextResult{}, schema.NewClassifierError("text", "classify",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return TextResult{}, schema.NewClassifierError("text", "classify",
			fmt.Errorf("response schema mismatch: %d labels, %d scores", len(out.Labels), len(out.Scores)))
	}
	return TextResult{Labels: out.Labels, Scores: out.Scores}, nil
}

var _ TextClassifier = (*HFTextClassifier)(nil)
