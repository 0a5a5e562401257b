// Package observer provides hooks into the dispatch pipeline for
// logging and audit.
package observer

import (
	"context"

	"github.com/voocel/aegis/schema"
)

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; requests are handled independently.
type Observer interface {
	OnRequest(ctx context.Context, req *schema.Request)
	OnVerdict(ctx context.Context, requestID string, stage schema.Stage, verdict schema.Verdict)
	OnRoute(ctx context.Context, requestID, handlerName string)
	OnToolResult(ctx context.Context, requestID, tool string, err error)
	OnError(ctx context.Context, requestID string, err error)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnRequest(context.Context, *schema.Request)                      {}
func (NoopObserver) OnVerdict(context.Context, string, schema.Stage, schema.Verdict) {}
func (NoopObserver) OnRoute(context.Context, string, string)                         {}
func (NoopObserver) OnToolResult(context.Context, string, string, error)             {}
func (NoopObserver) OnError(context.Context, string, error)                          {}

var _ Observer = NoopObserver{}

// CompositeObserver combines multiple observers.
type CompositeObserver struct {
	items []Observer
}

// NewCompositeObserver creates a composite observer.
func NewCompositeObserver(items ...Observer) *CompositeObserver {
	return &CompositeObserver{items: filterObservers(items)}
}

// Add appends observers.
func (o *CompositeObserver) Add(items ...Observer) {
	o.items = append(o.items, filterObservers(items)...)
}

func (o *CompositeObserver) OnRequest(ctx context.Context, req *schema.Request) {
	for _, obs := range o.items {
		obs.OnRequest(ctx, req)
	}
}

func (o *CompositeObserver) OnVerdict(ctx context.Context, requestID string, stage schema.Stage, verdict schema.Verdict) {
	for _, obs := range o.items {
		obs.OnVerdict(ctx, requestID, stage, verdict)
	}
}

func (o *CompositeObserver) OnRoute(ctx context.Context, requestID, handlerName string) {
	for _, obs := range o.items {
		obs.OnRoute(ctx, requestID, handlerName)
	}
}

func (o *CompositeObserver) OnToolResult(ctx context.Context, requestID, tool string, err error) {
	for _, obs := range o.items {
		obs.OnToolResult(ctx, requestID, tool, err)
	}
}

func (o *CompositeObserver) OnError(ctx context.Context, requestID string, err error) {
	for _, obs := range o.items {
		obs.OnError(ctx, requestID, err)
	}
}

func filterObservers(items []Observer) []Observer {
	filtered := make([]Observer, 0, len(items))
	for _, item := range items {
		if item != nil {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

var _ Observer = (*CompositeObserver)(nil)
