package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voocel/aegis/handler"
	"github.com/voocel/aegis/schema"
)

type fakeChatModel struct {
	response string
	err      error
	prompt   string
}

func (m *fakeChatModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func TestLLMRouterSelectsHandler(t *testing.T) {
	model := &fakeChatModel{response: `{"handler": "creative", "reason": "asks for a poem"}`}
	r := NewLLMRouter(model, handler.Builtin(), "research")

	got, err := r.Route(context.Background(), &schema.Request{Text: "write me a poem"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if got != "creative" {
		t.Errorf("Route = %q, want creative", got)
	}

	// The prompt lists every handler with its capabilities.
	for _, name := range []string{"research", "creative", "data", "archive"} {
		if !strings.Contains(model.prompt, name) {
			t.Errorf("prompt missing handler %q", name)
		}
	}
	if !strings.Contains(model.prompt, "write me a poem") {
		t.Error("prompt missing the request text")
	}
}

func TestLLMRouterFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		model ChatModel
	}{
		{"model error", &fakeChatModel{err: errors.New("rate limited")}},
		{"invalid json", &fakeChatModel{response: "the best handler is creative"}},
		{"empty handler", &fakeChatModel{response: `{"handler": "", "reason": "unsure"}`}},
		{"unregistered handler", &fakeChatModel{response: `{"handler": "ghost"}`}},
		{"nil model", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fellBack := false
			r := NewLLMRouter(tt.model, handler.Builtin(), "research")
			r.OnFallback = func(err error, defaultName string) {
				fellBack = true
				if err == nil {
					t.Error("fallback callback got a nil error")
				}
				if defaultName != "research" {
					t.Errorf("fallback default = %q", defaultName)
				}
			}

			got, err := r.Route(context.Background(), &schema.Request{Text: "anything"})
			if err != nil {
				t.Fatalf("Route failed: %v", err)
			}
			if got != "research" {
				t.Errorf("Route = %q, want the default", got)
			}
			if !fellBack {
				t.Error("OnFallback was not called")
			}
		})
	}
}

func TestLLMRouterRequiresHandlers(t *testing.T) {
	r := NewLLMRouter(&fakeChatModel{}, handler.NewRegistry(), "research")
	if _, err := r.Route(context.Background(), &schema.Request{Text: "x"}); err == nil {
		t.Error("expected an error with no handlers registered")
	}

	r = NewLLMRouter(&fakeChatModel{}, handler.Builtin(), "ghost")
	if _, err := r.Route(context.Background(), &schema.Request{Text: "x"}); err == nil {
		t.Error("expected an error with an unregistered default")
	}
}
