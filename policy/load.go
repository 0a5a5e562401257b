package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/voocel/aegis/schema"
)

// ruleDoc is the raw YAML shape of a single tool rule. The rule kind is
// inferred from which fields are present: allowed_paths and
// disallowed_extensions mark a file rule, forbidden_keywords a query
// rule. Mixing the two shapes is a config error.
type ruleDoc struct {
	AllowedPaths         []string `yaml:"allowed_paths" json:"allowed_paths,omitempty"`
	DisallowedExtensions []string `yaml:"disallowed_extensions" json:"disallowed_extensions,omitempty"`
	ForbiddenKeywords    []string `yaml:"forbidden_keywords" json:"forbidden_keywords,omitempty"`
}

// policyDoc is the raw YAML shape of the whole policy file.
type policyDoc struct {
	AllowedTools []string           `yaml:"allowed_tools" json:"allowed_tools"`
	ToolRules    map[string]ruleDoc `yaml:"tool_rules" json:"tool_rules,omitempty"`
}

// policySchema validates the structural shape of a policy document
// before typed decoding. Each rule object must match exactly one of the
// two known shapes.
const policySchema = `{
  "type": "object",
  "required": ["allowed_tools"],
  "properties": {
    "allowed_tools": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "tool_rules": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "allowed_paths": {"type": "array", "items": {"type": "string"}},
          "disallowed_extensions": {"type": "array", "items": {"type": "string"}},
          "forbidden_keywords": {"type": "array", "items": {"type": "string"}}
        },
        "oneOf": [
          {
            "anyOf": [
              {"required": ["allowed_paths"]},
              {"required": ["disallowed_extensions"]}
            ],
            "not": {"required": ["forbidden_keywords"]}
          },
          {
            "required": ["forbidden_keywords"],
            "not": {"anyOf": [
              {"required": ["allowed_paths"]},
              {"required": ["disallowed_extensions"]}
            ]}
          }
        ]
      }
    }
  },
  "additionalProperties": false
}`

// Load reads and parses a policy file. On any error the previous policy
// (held elsewhere) remains untouched; Load never partially applies.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.NewConfigError(path, err)
	}
	p, err := Parse(data)
	if err != nil {
		var cfgErr *schema.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, schema.NewConfigError(path, cfgErr.Err)
		}
		return nil, schema.NewConfigError(path, err)
	}
	return p, nil
}

// Parse builds a Policy from raw YAML bytes. The document is validated
// against the embedded JSON schema first, then decoded and normalized.
func Parse(data []byte) (*Policy, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, schema.NewConfigError("", fmt.Errorf("parse yaml: %w", err))
	}
	if raw == nil {
		return nil, schema.NewConfigError("", fmt.Errorf("%w: empty document", schema.ErrPolicyMalformed))
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, schema.NewConfigError("", fmt.Errorf("convert to json: %w", err))
	}
	if err := validateShape(jsonData); err != nil {
		return nil, schema.NewConfigError("", err)
	}

	var doc policyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, schema.NewConfigError("", fmt.Errorf("decode: %w", err))
	}
	return build(doc)
}

func validateShape(jsonData []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(policySchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrPolicyMalformed, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%w: %s", schema.ErrPolicyMalformed, strings.Join(details, "; "))
	}
	return nil
}

func build(doc policyDoc) (*Policy, error) {
	p := &Policy{
		allowedTools: make(map[string]struct{}, len(doc.AllowedTools)),
		toolRules:    make(map[string]ToolRule, len(doc.ToolRules)),
	}
	for _, tool := range doc.AllowedTools {
		tool = strings.TrimSpace(tool)
		if tool == "" {
			return nil, schema.NewConfigError("", fmt.Errorf("%w: empty tool name in allowed_tools", schema.ErrPolicyMalformed))
		}
		p.allowedTools[tool] = struct{}{}
	}

	for tool, rd := range doc.ToolRules {
		rule, err := buildRule(tool, rd)
		if err != nil {
			return nil, err
		}
		p.toolRules[tool] = rule
	}
	return p, nil
}

func buildRule(tool string, rd ruleDoc) (ToolRule, error) {
	isFile := len(rd.AllowedPaths) > 0 || len(rd.DisallowedExtensions) > 0
	isQuery := len(rd.ForbiddenKeywords) > 0

	switch {
	case isFile && isQuery:
		return nil, schema.NewConfigError("", fmt.Errorf("%w: rule for %q mixes file and query fields", schema.ErrUnknownRuleShape, tool))
	case isFile:
		rule := &FileRule{
			AllowedPathPrefixes:  make([]string, 0, len(rd.AllowedPaths)),
			DisallowedExtensions: make(map[string]struct{}, len(rd.DisallowedExtensions)),
		}
		for _, prefix := range rd.AllowedPaths {
			normalized := NormalizePathPrefix(prefix)
			if normalized == "" || !path.IsAbs(normalized) {
				return nil, schema.NewConfigError("", fmt.Errorf("%w: rule for %q has non-absolute path prefix %q", schema.ErrPolicyMalformed, tool, prefix))
			}
			rule.AllowedPathPrefixes = append(rule.AllowedPathPrefixes, normalized)
		}
		for _, ext := range rd.DisallowedExtensions {
			normalized := NormalizeExtension(ext)
			if normalized == "" || normalized == "." {
				return nil, schema.NewConfigError("", fmt.Errorf("%w: rule for %q has empty extension", schema.ErrPolicyMalformed, tool))
			}
			rule.DisallowedExtensions[normalized] = struct{}{}
		}
		return rule, nil
	case isQuery:
		rule := &QueryRule{
			ForbiddenKeywords: make(map[string]struct{}, len(rd.ForbiddenKeywords)),
		}
		for _, kw := range rd.ForbiddenKeywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, schema.NewConfigError("", fmt.Errorf("%w: rule for %q has empty keyword", schema.ErrPolicyMalformed, tool))
			}
			rule.ForbiddenKeywords[kw] = struct{}{}
		}
		return rule, nil
	default:
		return nil, schema.NewConfigError("", fmt.Errorf("%w: rule for %q has no recognized fields", schema.ErrUnknownRuleShape, tool))
	}
}
