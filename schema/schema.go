package schema

import (
	"time"
)

// Category classifies why an input was allowed or denied.
type Category string

const (
	CategoryBenign                Category = "benign"
	CategoryPromptInjection       Category = "prompt_injection"
	CategoryToxic                 Category = "toxic"
	CategoryHarmfulInstruction    Category = "harmful_instruction"
	CategoryNSFWImage             Category = "nsfw_image"
	CategoryInvalidImage          Category = "invalid_image"
	CategoryClassifierUnavailable Category = "classifier_unavailable"
)

// Stage identifies the pipeline stage a request was blocked at.
type Stage string

const (
	StageNone   Stage = "none"
	StageInput  Stage = "input"
	StageAction Stage = "action"
)

// Request is a single user request entering the pipeline.
type Request struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Action is a tool invocation a handler proposes to execute.
// Payload is the tool-specific argument: a file path for file access,
// a query string for database access, free-form text otherwise.
type Action struct {
	Tool    string `json:"tool"`
	Payload string `json:"payload"`
}

// Verdict is the allow/deny decision returned by a guardrail.
// Reason is empty when allowed. Category is set by the input guardrail only.
type Verdict struct {
	Allowed  bool     `json:"allowed"`
	Reason   string   `json:"reason,omitempty"`
	Category Category `json:"category,omitempty"`
}

// Allow returns an allowing verdict.
func Allow() Verdict {
	return Verdict{Allowed: true, Category: CategoryBenign}
}

// Deny returns a denying verdict with a reason.
func Deny(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// DenyCategory returns a denying verdict with a reason and category.
func DenyCategory(reason string, category Category) Verdict {
	return Verdict{Allowed: false, Reason: reason, Category: category}
}
