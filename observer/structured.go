package observer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/voocel/aegis/schema"
)

// JSONObserver outputs structured JSON logs, one event per line.
type JSONObserver struct {
	logger *log.Logger
}

// NewJSONObserver creates a JSONObserver.
func NewJSONObserver(out io.Writer) *JSONObserver {
	if out == nil {
		out = io.Discard
	}
	return &JSONObserver{logger: log.New(out, "", 0)}
}

func (o *JSONObserver) OnRequest(_ context.Context, req *schema.Request) {
	o.log("request", map[string]interface{}{
		"id":       req.ID,
		"text_len": len(req.Text),
		"image":    req.ImageURL != "",
	})
}

func (o *JSONObserver) OnVerdict(_ context.Context, requestID string, stage schema.Stage, verdict schema.Verdict) {
	fields := map[string]interface{}{
		"id":    requestID,
		"stage": stage,
	}
	if verdict.Allowed {
		o.log("verdict_allowed", fields)
		return
	}
	fields["reason"] = verdict.Reason
	if verdict.Category != "" {
		fields["category"] = verdict.Category
	}
	o.log("verdict_blocked", fields)
}

func (o *JSONObserver) OnRoute(_ context.Context, requestID, handlerName string) {
	o.log("route", map[string]interface{}{
		"id":      requestID,
		"handler": handlerName,
	})
}

func (o *JSONObserver) OnToolResult(_ context.Context, requestID, tool string, err error) {
	fields := map[string]interface{}{
		"id":   requestID,
		"tool": tool,
	}
	if err != nil {
		fields["error"] = err.Error()
		o.log("tool_error", fields)
		return
	}
	o.log("tool_result", fields)
}

func (o *JSONObserver) OnError(_ context.Context, requestID string, err error) {
	if err == nil {
		return
	}
	o.log("error", map[string]interface{}{
		"id":    requestID,
		"error": err.Error(),
	})
}

func (o *JSONObserver) log(event string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"event": event,
		"time":  time.Now().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	o.logger.Print(string(data))
}

var _ Observer = (*JSONObserver)(nil)
