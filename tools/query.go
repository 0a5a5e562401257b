package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/voocel/aegis/schema"
)

// QueryRunner executes an approved read-only query.
type QueryRunner interface {
	Query(ctx context.Context, query string) (columns []string, rows [][]string, err error)
}

// DatabaseQueryTool runs database queries through a QueryRunner.
// Keyword vetting happens in the action guardrail before the tool ever
// sees the query.
type DatabaseQueryTool struct {
	*BaseTool
	runner QueryRunner
}

// QueryResponse wraps the query output.
type QueryResponse struct {
	Query   string     `json:"query"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
}

// NewDatabaseQueryTool creates a database query tool. A nil runner
// falls back to an empty result set.
func NewDatabaseQueryTool(runner QueryRunner) *DatabaseQueryTool {
	toolSchema := CreateToolSchema(
		"Run a read-only database query",
		map[string]interface{}{
			"query": StringProperty("Query text to execute"),
		},
		[]string{"query"},
	)
	return &DatabaseQueryTool{
		BaseTool: NewBaseTool("database_query", "Run a read-only database query", toolSchema),
		runner:   runner,
	}
}

// Execute runs the query.
func (t *DatabaseQueryTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, schema.NewValidationError("input", string(input), "invalid JSON format")
	}
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, schema.NewValidationError("query", params.Query, "query cannot be empty")
	}

	resp := QueryResponse{Query: query, Columns: []string{}, Rows: [][]string{}}
	if t.runner != nil {
		columns, rows, err := t.runner.Query(ctx, query)
		if err != nil {
			return nil, schema.NewToolError(t.Name(), "query", err)
		}
		resp.Columns = columns
		resp.Rows = rows
	}
	resp.Count = len(resp.Rows)
	return json.Marshal(resp)
}
