package handler

import (
	"context"
	"strings"

	"github.com/voocel/aegis/schema"
)

// Tool identifiers proposed by the builtin handlers.
const (
	ToolWebSearch       = "web_search"
	ToolCreativeWriting = "creative_writing"
	ToolDatabaseQuery   = "database_query"
	ToolFileReader      = "file_reader"
)

// Research turns a request into a web search action.
type Research struct{}

func (Research) Name() string { return "research" }

func (Research) Capabilities() string {
	return "search the web for information, facts, news, current events, lookup, find, research"
}

func (Research) Handle(_ context.Context, req *schema.Request) (Response, error) {
	return Response{
		Text: "Searching the web for: " + req.Text,
		Action: &schema.Action{
			Tool:    ToolWebSearch,
			Payload: req.Text,
		},
	}, nil
}

// Creative turns a request into a creative writing action.
type Creative struct{}

func (Creative) Name() string { return "creative" }

func (Creative) Capabilities() string {
	return "write, create, compose a poem, joke, story, song, haiku, imagine creative text"
}

func (Creative) Handle(_ context.Context, req *schema.Request) (Response, error) {
	return Response{
		Text: "Working on a creative piece for: " + req.Text,
		Action: &schema.Action{
			Tool:    ToolCreativeWriting,
			Payload: req.Text,
		},
	}, nil
}

// Data turns a request into a database query action. The request text
// is passed through as the query payload; the action guardrail scans it
// for forbidden keywords before execution.
type Data struct{}

func (Data) Name() string { return "data" }

func (Data) Capabilities() string {
	return "query the database, sql, select records, rows, tables, count, aggregate data"
}

func (Data) Handle(_ context.Context, req *schema.Request) (Response, error) {
	return Response{
		Text: "Running a database query for: " + req.Text,
		Action: &schema.Action{
			Tool:    ToolDatabaseQuery,
			Payload: strings.TrimSpace(req.Text),
		},
	}, nil
}

// Archive turns a request into a file read action, extracting the first
// absolute path mentioned in the request. When the request names no
// path the payload stays empty and the action guardrail denies it as
// malformed.
type Archive struct{}

func (Archive) Name() string { return "archive" }

func (Archive) Capabilities() string {
	return "read, open a file, document, report, archive, path contents"
}

func (Archive) Handle(_ context.Context, req *schema.Request) (Response, error) {
	path := firstAbsolutePath(req.Text)
	return Response{
		Text: "Reading file: " + path,
		Action: &schema.Action{
			Tool:    ToolFileReader,
			Payload: path,
		},
	}, nil
}

func firstAbsolutePath(text string) string {
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, `"'.,;:!?`)
		if strings.HasPrefix(field, "/") {
			return field
		}
	}
	return ""
}

// Builtin returns a registry with all builtin handlers registered.
func Builtin() *Registry {
	reg := NewRegistry()
	for _, h := range []Handler{Research{}, Creative{}, Data{}, Archive{}} {
		// Register only fails on an empty name.
		_ = reg.Register(h)
	}
	return reg
}
