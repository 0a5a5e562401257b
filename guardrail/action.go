package guardrail

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/voocel/aegis/policy"
	"github.com/voocel/aegis/schema"
)

// Denial reasons for action evaluation. Reasons are stable strings so
// audit logs can be matched on them.
const (
	ReasonToolNotPermitted = "tool not permitted"
	ReasonPathNotAllowed   = "path not in allowed directories"
	ReasonExtensionBlocked = "file extension is blocked"
	ReasonMalformedPayload = "malformed action payload"
	ReasonPolicyNotLoaded  = "policy not loaded"
)

// Evaluate checks a proposed action against the policy snapshot. The
// allow-list gate runs first: every tool, known or unknown, passes
// through it. Tool-specific checks follow, dispatched on the rule kind.
func Evaluate(p *policy.Policy, action schema.Action) schema.Verdict {
	if p == nil {
		return schema.Deny(ReasonPolicyNotLoaded)
	}
	if !p.IsToolAllowed(action.Tool) {
		return schema.Deny(ReasonToolNotPermitted)
	}

	rule, ok := p.RuleFor(action.Tool)
	if !ok {
		return schema.Allow()
	}

	switch r := rule.(type) {
	case *policy.FileRule:
		return evaluateFile(r, action.Payload)
	case *policy.QueryRule:
		return evaluateQuery(r, action.Payload)
	default:
		// Unknown rule kinds fail closed.
		return schema.Deny(fmt.Sprintf("unsupported rule for tool %q", action.Tool))
	}
}

// evaluateFile runs both file checks independently so a denial reports
// every violated constraint, not just the first.
func evaluateFile(rule *policy.FileRule, payload string) schema.Verdict {
	cleaned, ok := normalizePath(payload)
	if !ok {
		return schema.Deny(ReasonMalformedPayload)
	}

	var reasons []string
	if !underAnyPrefix(cleaned, rule.AllowedPathPrefixes) {
		reasons = append(reasons, ReasonPathNotAllowed)
	}
	if ext := strings.ToLower(path.Ext(cleaned)); ext != "" {
		if _, blocked := rule.DisallowedExtensions[ext]; blocked {
			reasons = append(reasons, ReasonExtensionBlocked)
		}
	}
	if len(reasons) > 0 {
		return schema.Deny(strings.Join(reasons, "; "))
	}
	return schema.Allow()
}

func evaluateQuery(rule *policy.QueryRule, payload string) schema.Verdict {
	if strings.TrimSpace(payload) == "" {
		return schema.Deny(ReasonMalformedPayload)
	}
	for _, token := range queryTokens(payload) {
		if _, forbidden := rule.ForbiddenKeywords[strings.ToLower(token)]; forbidden {
			return schema.Deny(fmt.Sprintf("query contains forbidden keyword %q", token))
		}
	}
	return schema.Allow()
}

// normalizePath cleans the payload into an absolute path. A payload
// that cannot be normalized maps to a denial, never a crash.
func normalizePath(payload string) (string, bool) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" || strings.ContainsRune(trimmed, 0) {
		return "", false
	}
	cleaned := path.Clean(trimmed)
	if !path.IsAbs(cleaned) {
		return "", false
	}
	return cleaned, true
}

// underAnyPrefix matches on path segments, not raw substrings:
// /data/public2 is not under /data/public.
func underAnyPrefix(cleaned string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix == "/" {
			return true
		}
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return true
		}
	}
	return false
}

// queryTokens splits a query into word tokens. Underscores join tokens
// so column names like updated_at never match the keyword UPDATE.
func queryTokens(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// PolicyGuardrail is the action guardrail backed by the policy store.
// Each check evaluates against the snapshot current at call time.
type PolicyGuardrail struct {
	store *policy.Store
}

// NewPolicyGuardrail creates the policy-backed action guardrail.
func NewPolicyGuardrail(store *policy.Store) *PolicyGuardrail {
	return &PolicyGuardrail{store: store}
}

func (g *PolicyGuardrail) Name() string { return "action_policy" }

// CheckAction fails closed when no policy has been loaded.
func (g *PolicyGuardrail) CheckAction(_ context.Context, action schema.Action) schema.Verdict {
	p, err := g.store.Current()
	if err != nil {
		return schema.Deny(ReasonPolicyNotLoaded)
	}
	return Evaluate(p, action)
}

var _ ActionGuardrail = (*PolicyGuardrail)(nil)
