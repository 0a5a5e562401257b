package classifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	// Register decoders for the decodability check.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-resty/resty/v2"

	"github.com/voocel/aegis/schema"
)

const maxImageBytes = 10 << 20

// LabelNSFW is the positive label of the NSFW detector.
const LabelNSFW = "nsfw"

// HFImageClassifier calls a Hugging Face NSFW image detection endpoint
// with raw image bytes.
type HFImageClassifier struct {
	client *resty.Client
	url    string
}

// NewHFImageClassifier creates an image classifier client.
func NewHFImageClassifier(url, token string, timeout time.Duration) *HFImageClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HFImageClassifier{client: client, url: url}
}

type imageLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyImage runs one NSFW detection call and returns the
// highest-scoring label.
func (c *HFImageClassifier) ClassifyImage(ctx context.Context, data []byte) (ImageResult, error) {
	var out []imageLabelScore
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return ImageResult{}, schema.NewClassifierError("image", "classify", err)
	}
	if resp.IsError() {
		return ImageResult{}, schema.NewClassifierError("image", "classify",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if len(out) == 0 {
		return ImageResult{}, schema.NewClassifierError("image", "classify",
			fmt.Errorf("response schema mismatch: empty label list"))
	}

	top := out[0]
	for _, entry := range out[1:] {
		if entry.Score > top.Score {
			top = entry
		}
	}
	if top.Label == "" {
		return ImageResult{}, schema.NewClassifierError("image", "classify",
			fmt.Errorf("response schema mismatch: empty label"))
	}
	return ImageResult{Label: top.Label, Score: top.Score}, nil
}

var _ ImageClassifier = (*HFImageClassifier)(nil)

// HTTPImageFetcher fetches an image reference and validates that it is
// a real, decodable image before anything else touches it.
type HTTPImageFetcher struct {
	client *resty.Client
}

// NewHTTPImageFetcher creates an image fetcher.
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPImageFetcher{client: resty.New().SetTimeout(timeout)}
}

// Fetch downloads the reference and checks content type and
// decodability. All failures map to ErrInvalidImage so the caller can
// return an invalid_image denial without calling the classifier.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: unsupported url scheme", schema.ErrInvalidImage)
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch failed: %v", schema.ErrInvalidImage, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", schema.ErrInvalidImage, resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q", schema.ErrInvalidImage, contentType)
	}

	data := resp.Body()
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: body size %d", schema.ErrInvalidImage, len(data))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: undecodable: %v", schema.ErrInvalidImage, err)
	}
	return data, nil
}

var _ ImageFetcher = (*HTTPImageFetcher)(nil)
