// Package dispatch runs a request through the full two-stage guardrail
// pipeline: input screen, routing, handling, action check, execution.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voocel/aegis/guardrail"
	"github.com/voocel/aegis/handler"
	"github.com/voocel/aegis/observer"
	"github.com/voocel/aegis/router"
	"github.com/voocel/aegis/schema"
	"github.com/voocel/aegis/tools"
)

// Result is the outcome of one dispatched request. Denials are normal
// outcomes: BlockReason and Stage are set and no error is returned.
type Result struct {
	RequestID    string          `json:"request_id"`
	HandlerUsed  string          `json:"handler_used,omitempty"`
	ResponseText string          `json:"response_text,omitempty"`
	Action       *schema.Action  `json:"action,omitempty"`
	ToolOutput   json.RawMessage `json:"tool_output,omitempty"`
	BlockReason  string          `json:"block_reason,omitempty"`
	Category     schema.Category `json:"category,omitempty"`
	Stage        schema.Stage    `json:"stage_blocked_at"`
}

// Blocked reports whether the request was denied at any stage.
func (r Result) Blocked() bool {
	return r.Stage != schema.StageNone
}

// Config wires a dispatcher's collaborators. Input, Tools and Observer
// are optional; Router, Handlers and Action are required.
type Config struct {
	Input    guardrail.InputGuardrail
	Router   router.Router
	Handlers *handler.Registry
	Action   guardrail.ActionGuardrail
	Tools    *tools.Registry
	Observer observer.Observer
}

// Dispatcher coordinates the pipeline. It is stateless across requests
// beyond its collaborators, so concurrent dispatches are independent.
type Dispatcher struct {
	input    guardrail.InputGuardrail
	router   router.Router
	handlers *handler.Registry
	action   guardrail.ActionGuardrail
	tools    *tools.Registry
	obs      observer.Observer
}

// New creates a dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Router == nil {
		return nil, fmt.Errorf("dispatch: router is required")
	}
	if cfg.Handlers == nil || cfg.Handlers.Count() == 0 {
		return nil, fmt.Errorf("dispatch: handlers are required")
	}
	if cfg.Action == nil {
		return nil, fmt.Errorf("dispatch: action guardrail is required")
	}
	obs := cfg.Observer
	if obs == nil {
		obs = observer.NoopObserver{}
	}
	return &Dispatcher{
		input:    cfg.Input,
		router:   cfg.Router,
		handlers: cfg.Handlers,
		action:   cfg.Action,
		tools:    cfg.Tools,
		obs:      obs,
	}, nil
}

// Dispatch runs one request end to end. Guardrail denials come back as
// a blocked Result; only infrastructure faults return an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *schema.Request) (Result, error) {
	if req == nil {
		return Result{}, schema.ErrInvalidInput
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	d.obs.OnRequest(ctx, req)

	result := Result{RequestID: req.ID, Stage: schema.StageNone}

	if d.input != nil {
		verdict := d.input.CheckInput(ctx, req)
		d.obs.OnVerdict(ctx, req.ID, schema.StageInput, verdict)
		if !verdict.Allowed {
			result.Stage = schema.StageInput
			result.BlockReason = verdict.Reason
			result.Category = verdict.Category
			return result, nil
		}
	}

	name, err := d.router.Route(ctx, req)
	if err != nil {
		d.obs.OnError(ctx, req.ID, err)
		return result, err
	}
	d.obs.OnRoute(ctx, req.ID, name)

	h, ok := d.handlers.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %s", schema.ErrHandlerNotFound, name)
		d.obs.OnError(ctx, req.ID, err)
		return result, err
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		d.obs.OnError(ctx, req.ID, err)
		return result, err
	}
	result.HandlerUsed = name
	result.ResponseText = resp.Text

	// No privileged tool needed: skip the action stage entirely.
	if resp.Action == nil {
		return result, nil
	}
	result.Action = resp.Action

	verdict := d.action.CheckAction(ctx, *resp.Action)
	d.obs.OnVerdict(ctx, req.ID, schema.StageAction, verdict)
	if !verdict.Allowed {
		result.Stage = schema.StageAction
		result.BlockReason = verdict.Reason
		result.ResponseText = ""
		return result, nil
	}

	output, err := d.execute(ctx, req.ID, *resp.Action)
	if err != nil {
		return result, err
	}
	result.ToolOutput = output
	return result, nil
}

// execute runs the approved action when an executor is registered.
// Without one the approved action is returned to the caller untouched.
func (d *Dispatcher) execute(ctx context.Context, requestID string, action schema.Action) (json.RawMessage, error) {
	if d.tools == nil {
		return nil, nil
	}
	tool, ok := d.tools.Get(action.Tool)
	if !ok {
		return nil, nil
	}

	args, err := tools.PayloadArgs(tool, action.Payload)
	if err != nil {
		d.obs.OnToolResult(ctx, requestID, action.Tool, err)
		return nil, schema.NewToolError(action.Tool, "arguments", err)
	}

	output, err := tool.Execute(ctx, args)
	d.obs.OnToolResult(ctx, requestID, action.Tool, err)
	if err != nil {
		return nil, schema.NewToolError(action.Tool, "execute", err)
	}
	return output, nil
}
