package codec

import (
	"bytes"

	"github.com/goccy/go-yaml"
)

// YAML is the YAML codec. Merge/Prune use the shared generic semantics;
// the kimi provider manifest merges and prunes ~/.kimi/config.yaml through
// them via the mutation engine.
type YAML struct{}

func NewYAML() *YAML { return &YAML{} }

func (YAML) Ext() string { return "yaml" }

func (YAML) Parse(text []byte) (Document, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return normalizeYamlValue(doc), nil
}

func (YAML) Serialize(doc Document) ([]byte, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	return yaml.MarshalWithOptions(doc, yaml.IndentSequence(true))
}

func (YAML) Merge(base, patch Document) Document {
	return DeepMerge(base, patch)
}

func (YAML) Prune(doc, shape Document) (Document, bool) {
	return Prune(doc, shape)
}

// normalizeYamlValue converts goccy/go-yaml's ordered-map output (or, for
// already-plain maps, map[any]any on some code paths) into our canonical
// map[string]any/[]any document shape.
func normalizeYamlValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalizeYamlValue(sub)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = normalizeYamlValue(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalizeYamlValue(sub)
		}
		return out
	default:
		return v
	}
}
