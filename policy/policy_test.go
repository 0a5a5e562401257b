package policy

import (
	"errors"
	"testing"

	"github.com/voocel/aegis/schema"
)

const validPolicy = `
allowed_tools:
  - web_search
  - file_reader
  - database_query

tool_rules:
  file_reader:
    allowed_paths:
      - /data/public/
      - /data/reports
    disallowed_extensions:
      - env
      - .PEM
  database_query:
    forbidden_keywords:
      - DROP
      - delete
`

func TestParseValidPolicy(t *testing.T) {
	p, err := Parse([]byte(validPolicy))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for _, tool := range []string{"web_search", "file_reader", "database_query"} {
		if !p.IsToolAllowed(tool) {
			t.Errorf("expected %s to be allowed", tool)
		}
	}
	if p.IsToolAllowed("shell_exec") {
		t.Error("unlisted tool should not be allowed")
	}

	rule, ok := p.RuleFor("file_reader")
	if !ok {
		t.Fatal("expected a rule for file_reader")
	}
	fr, ok := rule.(*FileRule)
	if !ok {
		t.Fatalf("expected *FileRule, got %T", rule)
	}
	// Trailing slash removed at load.
	if got := fr.AllowedPathPrefixes[0]; got != "/data/public" {
		t.Errorf("prefix not normalized: %q", got)
	}
	// Extensions lower-cased with a leading dot.
	if _, ok := fr.DisallowedExtensions[".env"]; !ok {
		t.Error("expected .env in disallowed extensions")
	}
	if _, ok := fr.DisallowedExtensions[".pem"]; !ok {
		t.Error("expected .pem in disallowed extensions")
	}

	rule, ok = p.RuleFor("database_query")
	if !ok {
		t.Fatal("expected a rule for database_query")
	}
	qr, ok := rule.(*QueryRule)
	if !ok {
		t.Fatalf("expected *QueryRule, got %T", rule)
	}
	// Keywords stored lower-case.
	if _, ok := qr.ForbiddenKeywords["drop"]; !ok {
		t.Error("expected drop in forbidden keywords")
	}
	if _, ok := qr.ForbiddenKeywords["delete"]; !ok {
		t.Error("expected delete in forbidden keywords")
	}
}

func TestParseNoRuleForTool(t *testing.T) {
	p, err := Parse([]byte("allowed_tools:\n  - web_search\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := p.RuleFor("web_search"); ok {
		t.Error("expected no rule for web_search")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "missing allowed_tools",
			doc:  "tool_rules:\n  x:\n    forbidden_keywords: [DROP]\n",
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "empty document",
			doc:  "",
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "mixed rule shape",
			doc: `
allowed_tools: [x]
tool_rules:
  x:
    allowed_paths: [/data]
    forbidden_keywords: [DROP]
`,
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "empty rule",
			doc: `
allowed_tools: [x]
tool_rules:
  x: {}
`,
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "unknown rule field",
			doc: `
allowed_tools: [x]
tool_rules:
  x:
    max_rows: 10
`,
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "non-absolute path prefix",
			doc: `
allowed_tools: [x]
tool_rules:
  x:
    allowed_paths: [data/public]
`,
			want: schema.ErrPolicyMalformed,
		},
		{
			name: "empty tool name",
			doc:  `allowed_tools: ["", web_search]`,
			want: schema.ErrPolicyMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var cfgErr *schema.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}
}

func TestParseBadYAML(t *testing.T) {
	_, err := Parse([]byte(":\n  - ["))
	if err == nil {
		t.Fatal("expected an error")
	}
	var cfgErr *schema.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected a ConfigError, got %T", err)
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"env", ".env"},
		{".ENV", ".env"},
		{" .Pem ", ".pem"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeExtension(tt.in); got != tt.want {
			t.Errorf("NormalizeExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePathPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/public/", "/data/public"},
		{"/data//public", "/data/public"},
		{"/data/./public", "/data/public"},
		{"/", "/"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePathPrefix(tt.in); got != tt.want {
			t.Errorf("NormalizePathPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
