package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/voocel/aegis/schema"
)

// CreativeWritingTool acknowledges an approved creative task. Text
// generation itself happens in the handler's model; the tool records
// the task so the pipeline has a uniform execution step.
type CreativeWritingTool struct {
	*BaseTool
}

// NewCreativeWritingTool creates a creative writing tool.
func NewCreativeWritingTool() *CreativeWritingTool {
	toolSchema := CreateToolSchema(
		"Produce creative text for a given task",
		map[string]interface{}{
			"task": StringProperty("Description of the creative writing task"),
		},
		[]string{"task"},
	)
	return &CreativeWritingTool{
		BaseTool: NewBaseTool("creative_writing", "Produce creative text for a given task", toolSchema),
	}
}

// Execute acknowledges the task.
func (t *CreativeWritingTool) Execute(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Task string `json:"task"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, schema.NewValidationError("input", string(input), "invalid JSON format")
	}
	task := strings.TrimSpace(params.Task)
	if task == "" {
		return nil, schema.NewValidationError("task", params.Task, "task cannot be empty")
	}

	return json.Marshal(map[string]string{
		"task":   task,
		"status": "accepted",
	})
}

// Builtin returns a registry with all builtin tools registered.
func Builtin() *Registry {
	reg := NewRegistry()
	for _, tool := range []Tool{
		NewWebSearchTool(),
		NewCalculator(),
		NewFileReaderTool(),
		NewDatabaseQueryTool(nil),
		NewCreativeWritingTool(),
	} {
		// Register only fails on an empty name.
		_ = reg.Register(tool)
	}
	return reg
}
