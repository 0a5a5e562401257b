// Package policy loads and holds the declarative rule set governing
// which tools agents may invoke and under what constraints.
package policy

import (
	"path"
	"strings"
)

// Policy is the immutable rule set for action evaluation. It is built
// once by Parse/Load and never mutated afterwards; a reload installs a
// whole new instance.
type Policy struct {
	allowedTools map[string]struct{}
	toolRules    map[string]ToolRule
}

// ToolRule is a per-tool constraint. The set of implementations is
// closed: FileRule and QueryRule. Evaluation dispatches on the concrete
// type, so adding a rule kind is a compile-time-checked addition.
type ToolRule interface {
	ruleKind() string
}

// FileRule constrains file-access tools. Prefixes are cleaned absolute
// paths without trailing slash; extensions are lower-case with a
// leading dot. Normalization happens at load time so evaluation is a
// pure string/set lookup.
type FileRule struct {
	AllowedPathPrefixes  []string
	DisallowedExtensions map[string]struct{}
}

func (*FileRule) ruleKind() string { return "file" }

// QueryRule constrains query tools. Keywords are stored lower-case and
// matched as whole-word tokens.
type QueryRule struct {
	ForbiddenKeywords map[string]struct{}
}

func (*QueryRule) ruleKind() string { return "query" }

// IsToolAllowed reports whether the tool is on the allow list. Any tool
// not present is denied.
func (p *Policy) IsToolAllowed(tool string) bool {
	_, ok := p.allowedTools[tool]
	return ok
}

// RuleFor returns the rule registered for the tool, if any. Absence
// means no constraints beyond being allowed.
func (p *Policy) RuleFor(tool string) (ToolRule, bool) {
	rule, ok := p.toolRules[tool]
	return rule, ok
}

// AllowedTools returns the allow list for inspection.
func (p *Policy) AllowedTools() []string {
	names := make([]string, 0, len(p.allowedTools))
	for name := range p.allowedTools {
		names = append(names, name)
	}
	return names
}

// NormalizeExtension lower-cases an extension and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NormalizePathPrefix cleans a path prefix, removing trailing-slash
// ambiguity. The result of cleaning "/data/public/" is "/data/public".
func NormalizePathPrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
