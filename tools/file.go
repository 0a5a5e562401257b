package tools

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/voocel/aegis/schema"
)

const maxFileBytes = 1 << 20

// FileReaderTool reads a file's contents. Path vetting happens in the
// action guardrail; the tool itself only bounds the read size.
type FileReaderTool struct {
	*BaseTool
}

// FileReadResponse wraps the read output.
type FileReadResponse struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Truncated bool   `json:"truncated"`
}

// NewFileReaderTool creates a file reader tool.
func NewFileReaderTool() *FileReaderTool {
	toolSchema := CreateToolSchema(
		"Read the contents of a file",
		map[string]interface{}{
			"path": StringProperty("Absolute path of the file to read"),
		},
		[]string{"path"},
	)
	return &FileReaderTool{
		BaseTool: NewBaseTool("file_reader", "Read the contents of a file", toolSchema),
	}
}

// Execute reads the file.
func (t *FileReaderTool) Execute(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, schema.NewValidationError("input", string(input), "invalid JSON format")
	}
	if params.Path == "" {
		return nil, schema.NewValidationError("path", params.Path, "path cannot be empty")
	}

	path := filepath.Clean(params.Path)
	f, err := os.Open(path)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "open", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "read", err)
	}

	truncated := false
	if len(data) > maxFileBytes {
		data = data[:maxFileBytes]
		truncated = true
	}

	return json.Marshal(FileReadResponse{
		Path:      path,
		Content:   string(data),
		Size:      int64(len(data)),
		Truncated: truncated,
	})
}
