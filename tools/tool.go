// Package tools holds the executable tools behind approved actions.
// Tools only ever run after the action guardrail has allowed the
// invocation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool defines the tool interface.
type Tool interface {
	Name() string
	Description() string
	Schema() *ToolSchema
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// ToolSchema describes a tool's JSON argument schema. The first
// required property is the tool's primary argument and receives the
// action payload.
type ToolSchema struct {
	Type        string                 `json:"type"`
	Properties  map[string]interface{} `json:"properties"`
	Required    []string               `json:"required"`
	Description string                 `json:"description"`
}

// BaseTool provides shared tool metadata.
type BaseTool struct {
	name        string
	description string
	schema      *ToolSchema
}

// NewBaseTool creates a base tool.
func NewBaseTool(name, description string, schema *ToolSchema) *BaseTool {
	return &BaseTool{name: name, description: description, schema: schema}
}

func (t *BaseTool) Name() string        { return t.name }
func (t *BaseTool) Description() string { return t.description }
func (t *BaseTool) Schema() *ToolSchema { return t.schema }

// CreateToolSchema builds a schema.
func CreateToolSchema(description string, properties map[string]interface{}, required []string) *ToolSchema {
	return &ToolSchema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// StringProperty defines a string property.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// NumberProperty defines a numeric property.
func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// PayloadArgs marshals an action payload into the tool's primary
// argument.
func PayloadArgs(t Tool, payload string) (json.RawMessage, error) {
	s := t.Schema()
	if s == nil || len(s.Required) == 0 {
		return nil, fmt.Errorf("tool %s declares no primary argument", t.Name())
	}
	return json.Marshal(map[string]string{s.Required[0]: payload})
}
