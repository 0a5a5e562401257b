// Package handler defines the specialized handlers a router can
// dispatch to. A handler produces a candidate response together with
// the action it intends to execute; the action guardrail vets the
// action before anything runs.
package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/voocel/aegis/schema"
)

// Response is a handler's candidate output. Action is nil when the
// response required no privileged tool; the action guardrail stage is
// skipped in that case.
type Response struct {
	Text   string
	Action *schema.Action
}

// Handler produces a response and a proposed action for a request.
type Handler interface {
	// Name returns the handler's routing identifier.
	Name() string

	// Capabilities describes what the handler is good at, as a short
	// keyword-rich sentence used for intent matching.
	Capabilities() string

	// Handle produces the candidate response and proposed action.
	Handle(ctx context.Context, req *schema.Request) (Response, error)
}

// Registry stores registered handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry constructs a registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler, replacing any existing one with the name.
func (r *Registry) Register(h Handler) error {
	if h == nil || h.Name() == "" {
		return schema.NewValidationError("handler.name", "", "handler name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
	return nil
}

// Get retrieves a handler by name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns registered handler names, sorted for deterministic
// iteration.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
