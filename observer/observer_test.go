package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/voocel/aegis/schema"
)

type countingObserver struct {
	requests, verdicts, routes, toolResults, errs int
}

func (c *countingObserver) OnRequest(context.Context, *schema.Request) {
	c.requests++
}

func (c *countingObserver) OnVerdict(context.Context, string, schema.Stage, schema.Verdict) {
	c.verdicts++
}

func (c *countingObserver) OnRoute(context.Context, string, string) {
	c.routes++
}

func (c *countingObserver) OnToolResult(context.Context, string, string, error) {
	c.toolResults++
}

func (c *countingObserver) OnError(context.Context, string, error) {
	c.errs++
}

func TestCompositeObserverFansOut(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	composite := NewCompositeObserver(a, nil, b)

	ctx := context.Background()
	composite.OnRequest(ctx, &schema.Request{ID: "r1"})
	composite.OnVerdict(ctx, "r1", schema.StageInput, schema.Allow())
	composite.OnRoute(ctx, "r1", "research")
	composite.OnToolResult(ctx, "r1", "web_search", nil)
	composite.OnError(ctx, "r1", errors.New("boom"))

	for _, obs := range []*countingObserver{a, b} {
		if obs.requests != 1 || obs.verdicts != 1 || obs.routes != 1 || obs.toolResults != 1 || obs.errs != 1 {
			t.Errorf("events not fanned out: %+v", obs)
		}
	}
}

func TestLoggerObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLoggerObserver(&buf)
	ctx := context.Background()

	obs.OnRequest(ctx, &schema.Request{ID: "r1", Text: "hello"})
	obs.OnVerdict(ctx, "r1", schema.StageAction, schema.Deny("tool not permitted"))
	obs.OnRoute(ctx, "r1", "research")

	out := buf.String()
	if !strings.Contains(out, "aegis ") {
		t.Error("log lines missing the aegis prefix")
	}
	if !strings.Contains(out, "verdict blocked stage=action") {
		t.Errorf("missing blocked verdict line: %s", out)
	}
	if !strings.Contains(out, "handler=research") {
		t.Errorf("missing route line: %s", out)
	}
}

func TestJSONObserverEmitsOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewJSONObserver(&buf)
	ctx := context.Background()

	obs.OnRequest(ctx, &schema.Request{ID: "r1", Text: "hello"})
	obs.OnVerdict(ctx, "r1", schema.StageInput, schema.DenyCategory("toxic content", schema.CategoryToxic))
	obs.OnToolResult(ctx, "r1", "web_search", errors.New("timeout"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var verdict map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &verdict); err != nil {
		t.Fatalf("line is not valid json: %v", err)
	}
	if verdict["event"] != "verdict_blocked" {
		t.Errorf("event = %v", verdict["event"])
	}
	if verdict["category"] != "toxic" {
		t.Errorf("category = %v", verdict["category"])
	}

	var toolEvent map[string]interface{}
	if err := json.Unmarshal([]byte(lines[2]), &toolEvent); err != nil {
		t.Fatalf("line is not valid json: %v", err)
	}
	if toolEvent["event"] != "tool_error" {
		t.Errorf("event = %v", toolEvent["event"])
	}
}

func TestObserversIgnoreNilOutput(t *testing.T) {
	// Writers default to discard; no panic on nil.
	NewLoggerObserver(nil).OnRequest(context.Background(), &schema.Request{ID: "x"})
	NewJSONObserver(nil).OnRequest(context.Background(), &schema.Request{ID: "x"})
}
