package guardrail

import (
	"context"
	"errors"
	"fmt"

	"github.com/voocel/aegis/classifier"
	"github.com/voocel/aegis/schema"
)

// Input denial reasons.
const (
	ReasonClassifierUnavailable = "input classifier unavailable"
	ReasonInvalidImage          = "image reference is not a fetchable image"
)

// Default confidence thresholds, matching the remote models' tuning.
const (
	DefaultTextThreshold = 0.5
	DefaultNSFWThreshold = 0.8
)

// textLabels is the fixed candidate label set sent to the zero-shot
// classifier. Labels double as verdict categories.
var textLabels = []string{
	string(schema.CategoryBenign),
	string(schema.CategoryPromptInjection),
	string(schema.CategoryToxic),
	string(schema.CategoryHarmfulInstruction),
}

// InputScreen normalizes remote classifier responses into verdicts.
// A classifier that errors or times out is fail-closed: the verdict is
// a classifier_unavailable denial, never benign, so operators can tell
// infrastructure failure apart from detected harm.
type InputScreen struct {
	Text    classifier.TextClassifier
	Image   classifier.ImageClassifier
	Fetcher classifier.ImageFetcher

	TextThreshold float64
	NSFWThreshold float64
}

func (s *InputScreen) Name() string { return "input_screen" }

// CheckInput screens the request text and, when present, its image
// reference. Screening of a modality is skipped when no classifier is
// configured for it.
func (s *InputScreen) CheckInput(ctx context.Context, req *schema.Request) schema.Verdict {
	if req == nil {
		return schema.DenyCategory("empty request", schema.CategoryBenign)
	}

	if s.Text != nil && req.Text != "" {
		if verdict := s.checkText(ctx, req.Text); !verdict.Allowed {
			return verdict
		}
	}
	if req.ImageURL != "" && s.Image != nil && s.Fetcher != nil {
		if verdict := s.checkImage(ctx, req.ImageURL); !verdict.Allowed {
			return verdict
		}
	}
	return schema.Allow()
}

func (s *InputScreen) checkText(ctx context.Context, text string) schema.Verdict {
	result, err := s.Text.Classify(ctx, text, textLabels)
	if err != nil {
		return schema.DenyCategory(ReasonClassifierUnavailable, schema.CategoryClassifierUnavailable)
	}

	label, score := result.Top()
	category := schema.Category(label)
	switch category {
	case schema.CategoryBenign:
		return schema.Allow()
	case schema.CategoryPromptInjection, schema.CategoryToxic, schema.CategoryHarmfulInstruction:
		if score >= s.textThreshold() {
			return schema.DenyCategory(fmt.Sprintf("malicious input detected: %s", category), category)
		}
		return schema.Allow()
	default:
		// A label outside the candidate set is a schema mismatch.
		return schema.DenyCategory(ReasonClassifierUnavailable, schema.CategoryClassifierUnavailable)
	}
}

func (s *InputScreen) checkImage(ctx context.Context, url string) schema.Verdict {
	data, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, schema.ErrInvalidImage) {
			return schema.DenyCategory(ReasonInvalidImage, schema.CategoryInvalidImage)
		}
		return schema.DenyCategory(ReasonClassifierUnavailable, schema.CategoryClassifierUnavailable)
	}

	result, err := s.Image.ClassifyImage(ctx, data)
	if err != nil {
		return schema.DenyCategory(ReasonClassifierUnavailable, schema.CategoryClassifierUnavailable)
	}
	if result.Label == classifier.LabelNSFW && result.Score >= s.nsfwThreshold() {
		return schema.DenyCategory(fmt.Sprintf("nsfw image detected (score %.4f)", result.Score), schema.CategoryNSFWImage)
	}
	return schema.Allow()
}

func (s *InputScreen) textThreshold() float64 {
	if s.TextThreshold > 0 {
		return s.TextThreshold
	}
	return DefaultTextThreshold
}

func (s *InputScreen) nsfwThreshold() float64 {
	if s.NSFWThreshold > 0 {
		return s.NSFWThreshold
	}
	return DefaultNSFWThreshold
}

var _ InputGuardrail = (*InputScreen)(nil)
