// Package router selects exactly one handler for every request.
// Routing is total: ambiguity resolves to a configured default, never
// to "none" or "multiple".
package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/voocel/aegis/handler"
	"github.com/voocel/aegis/schema"
)

// Router selects a handler name for a request.
type Router interface {
	Route(ctx context.Context, req *schema.Request) (string, error)
}

// IntentRouter scores a request against each handler's declared
// capability description. The same input always routes to the same
// handler; ties and zero-score requests resolve to the default.
type IntentRouter struct {
	Registry *handler.Registry
	Default  string
}

// NewIntentRouter creates an intent router with a default handler.
func NewIntentRouter(reg *handler.Registry, defaultName string) *IntentRouter {
	return &IntentRouter{Registry: reg, Default: defaultName}
}

// Route picks the handler whose capabilities overlap the request most.
func (r *IntentRouter) Route(_ context.Context, req *schema.Request) (string, error) {
	if r.Registry == nil || r.Registry.Count() == 0 {
		return "", fmt.Errorf("router: no handlers registered")
	}
	if _, ok := r.Registry.Get(r.Default); !ok {
		return "", fmt.Errorf("router: default handler %q not registered", r.Default)
	}

	request := wordSet(req.Text)

	best := ""
	bestScore := 0
	tied := false
	for _, name := range r.Registry.Names() {
		h, ok := r.Registry.Get(name)
		if !ok {
			continue
		}
		score := overlap(request, wordSet(h.Capabilities()))
		switch {
		case score > bestScore:
			best, bestScore, tied = name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return r.Default, nil
	}
	return best, nil
}

// stopwords carry no intent and are excluded from scoring.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {},
	"this": {}, "from": {}, "about": {}, "into": {}, "please": {},
}

// wordSet lowercases and tokenizes text, dropping words too short or
// too common to carry intent.
func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, common := stopwords[w]; common {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	count := 0
	for w := range a {
		if _, ok := b[w]; ok {
			count++
		}
	}
	return count
}

var _ Router = (*IntentRouter)(nil)
