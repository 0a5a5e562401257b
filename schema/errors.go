package schema

import (
	"errors"
	"fmt"
)

var (
	// Policy-related errors
	ErrPolicyNotLoaded  = errors.New("policy not loaded")
	ErrPolicyMalformed  = errors.New("policy malformed")
	ErrUnknownRuleShape = errors.New("unknown tool rule shape")

	// Pipeline errors
	ErrHandlerNotFound = errors.New("handler not found")
	ErrToolNotFound    = errors.New("tool not found")
	ErrInvalidInput    = errors.New("invalid input")

	// Classifier errors
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrInvalidImage          = errors.New("invalid image")
)

// ConfigError describes a malformed policy or configuration source.
// It is fatal at load time and never corrupts a running policy.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(source string, err error) *ConfigError {
	return &ConfigError{Source: source, Err: err}
}

// ClassifierError describes an infrastructure failure in a remote
// classifier. It is surfaced distinctly from content denials so
// operators can alert on it separately.
type ClassifierError struct {
	Model string
	Op    string
	Err   error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier %s: %s: %v", e.Model, e.Op, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

func NewClassifierError(model, op string, err error) *ClassifierError {
	return &ClassifierError{Model: model, Op: op, Err: err}
}

// ToolError describes a failure while executing an approved tool.
type ToolError struct {
	ToolName string
	Op       string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s: %v", e.ToolName, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(toolName, op string, err error) *ToolError {
	return &ToolError{ToolName: toolName, Op: op, Err: err}
}

// ValidationError describes an invalid field value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}
