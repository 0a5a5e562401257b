// Package guardrail converts untrusted inputs and proposed agent
// actions into allow/deny verdicts. Denials are values, not errors:
// every input maps to a Verdict and nothing panics past this boundary.
package guardrail

import (
	"context"
	"fmt"

	"github.com/voocel/aegis/schema"
)

// InputGuardrail screens a user request before any handler sees it.
type InputGuardrail interface {
	Name() string
	CheckInput(ctx context.Context, req *schema.Request) schema.Verdict
}

// ActionGuardrail screens a proposed action before execution.
type ActionGuardrail interface {
	Name() string
	CheckAction(ctx context.Context, action schema.Action) schema.Verdict
}

// BlockError reports a guardrail denial to callers that need an error
// value at an outer boundary.
type BlockError struct {
	GuardrailName string
	Stage         schema.Stage
	Verdict       schema.Verdict
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("guardrail %q (%s) blocked: %s", e.GuardrailName, e.Stage, e.Verdict.Reason)
}

// InputFunc is the input check function signature.
type InputFunc func(ctx context.Context, req *schema.Request) schema.Verdict

// ActionFunc is the action check function signature.
type ActionFunc func(ctx context.Context, action schema.Action) schema.Verdict

type inputFunc struct {
	name string
	fn   InputFunc
}

func (g *inputFunc) Name() string { return g.name }
func (g *inputFunc) CheckInput(ctx context.Context, req *schema.Request) schema.Verdict {
	return g.fn(ctx, req)
}

type actionFunc struct {
	name string
	fn   ActionFunc
}

func (g *actionFunc) Name() string { return g.name }
func (g *actionFunc) CheckAction(ctx context.Context, action schema.Action) schema.Verdict {
	return g.fn(ctx, action)
}

// NewInputGuardrail creates an input guardrail from a function.
func NewInputGuardrail(name string, fn InputFunc) InputGuardrail {
	return &inputFunc{name: name, fn: fn}
}

// NewActionGuardrail creates an action guardrail from a function.
func NewActionGuardrail(name string, fn ActionFunc) ActionGuardrail {
	return &actionFunc{name: name, fn: fn}
}

// InputChain combines input guardrails, denying on the first failure.
func InputChain(name string, guardrails ...InputGuardrail) InputGuardrail {
	return NewInputGuardrail(name, func(ctx context.Context, req *schema.Request) schema.Verdict {
		for _, g := range guardrails {
			if verdict := g.CheckInput(ctx, req); !verdict.Allowed {
				return verdict
			}
		}
		return schema.Allow()
	})
}

// ActionChain combines action guardrails, denying on the first failure.
func ActionChain(name string, guardrails ...ActionGuardrail) ActionGuardrail {
	return NewActionGuardrail(name, func(ctx context.Context, action schema.Action) schema.Verdict {
		for _, g := range guardrails {
			if verdict := g.CheckAction(ctx, action); !verdict.Allowed {
				return verdict
			}
		}
		return schema.Allow()
	})
}
