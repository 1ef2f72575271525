package codec

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
)

// TOML parses into the same config-document tree used by the other codecs
// (tables become objects) and serializes with stable table-section order.
type TOML struct{}

func NewTOML() *TOML { return &TOML{} }

func (TOML) Ext() string { return "toml" }

func (TOML) Parse(text []byte) (Document, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	var doc map[string]any
	if err := toml.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return normalizeTomlValue(doc).(map[string]any), nil
}

func (TOML) Serialize(doc Document) ([]byte, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (TOML) Merge(base, patch Document) Document {
	return DeepMerge(base, patch)
}

func (TOML) Prune(doc, shape Document) (Document, bool) {
	return Prune(doc, shape)
}

// normalizeTomlValue recursively converts the toml decoder's
// map[string]interface{}/[]interface{} output into our canonical
// map[string]any/[]any document shape (they are the same underlying type
// in modern Go, this just makes the conversion explicit and handles nested
// table arrays).
func normalizeTomlValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalizeTomlValue(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalizeTomlValue(sub)
		}
		return out
	default:
		return v
	}
}
