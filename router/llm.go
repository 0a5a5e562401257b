package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voocel/litellm"

	"github.com/voocel/aegis/handler"
	"github.com/voocel/aegis/schema"
)

// ChatModel is the minimal completion surface the LLM router needs.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LiteLLMModel adapts a litellm client to ChatModel.
type LiteLLMModel struct {
	client *litellm.Client
	model  string
}

// NewLiteLLMModel creates a litellm-backed chat model. An empty baseURL
// uses the provider default.
func NewLiteLLMModel(apiKey, model, baseURL string) *LiteLLMModel {
	var client *litellm.Client
	if baseURL != "" {
		client = litellm.New(litellm.WithOpenAI(apiKey, baseURL))
	} else {
		client = litellm.New(litellm.WithOpenAI(apiKey))
	}
	return &LiteLLMModel{client: client, model: model}
}

func (m *LiteLLMModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Complete(ctx, &litellm.Request{
		Model: m.model,
		Messages: []litellm.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

var _ ChatModel = (*LiteLLMModel)(nil)

// handlerSelection is the structured output for LLM handler selection.
type handlerSelection struct {
	Handler string `json:"handler"`
	Reason  string `json:"reason"`
}

// LLMRouter asks a model to pick the best handler. Any failure falls
// back to the default handler so routing stays total.
type LLMRouter struct {
	Model    ChatModel
	Registry *handler.Registry
	Default  string
	// OnFallback is called when falling back to the default. Optional.
	OnFallback func(err error, defaultName string)
}

// NewLLMRouter creates an LLM-driven router.
func NewLLMRouter(model ChatModel, reg *handler.Registry, defaultName string) *LLMRouter {
	return &LLMRouter{Model: model, Registry: reg, Default: defaultName}
}

// Route asks the model for a selection, falling back on any error or
// unregistered answer.
func (r *LLMRouter) Route(ctx context.Context, req *schema.Request) (string, error) {
	if r.Registry == nil || r.Registry.Count() == 0 {
		return "", fmt.Errorf("llm router: no handlers registered")
	}
	if _, ok := r.Registry.Get(r.Default); !ok {
		return "", fmt.Errorf("llm router: default handler %q not registered", r.Default)
	}
	if r.Model == nil {
		return r.fallback(fmt.Errorf("model is nil"))
	}

	name, err := r.selectViaModel(ctx, req.Text)
	if err != nil {
		return r.fallback(err)
	}
	if _, ok := r.Registry.Get(name); !ok {
		return r.fallback(fmt.Errorf("selected handler %q not registered", name))
	}
	return name, nil
}

func (r *LLMRouter) fallback(err error) (string, error) {
	if r.OnFallback != nil {
		r.OnFallback(err, r.Default)
	}
	return r.Default, nil
}

func (r *LLMRouter) selectViaModel(ctx context.Context, text string) (string, error) {
	content, err := r.Model.Complete(ctx, r.buildPrompt(text))
	if err != nil {
		return "", err
	}

	var selection handlerSelection
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &selection); err != nil {
		return "", err
	}
	if selection.Handler == "" {
		return "", fmt.Errorf("empty handler in response")
	}
	return selection.Handler, nil
}

func (r *LLMRouter) buildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Select the best handler for this request.\n\nHandlers:\n")

	for _, name := range r.Registry.Names() {
		h, ok := r.Registry.Get(name)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, h.Capabilities()))
	}

	sb.WriteString("\nRequest: ")
	sb.WriteString(text)
	sb.WriteString("\n\nRespond: {\"handler\": \"<name>\", \"reason\": \"<why>\"}")
	return sb.String()
}

var _ Router = (*LLMRouter)(nil)
