package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the strict JSON codec (§4.A). Empty input or a JSON null
// deserializes to an empty object; a top-level non-object fails. Output is
// two-space-indented with a trailing newline.
type JSON struct{}

func NewJSON() *JSON { return &JSON{} }

func (JSON) Ext() string { return "json" }

func (JSON) Parse(text []byte) (Document, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &topLevelNotObjectError{}
	}
	return obj, nil
}

func (JSON) Serialize(doc Document) ([]byte, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	buf = append(buf, '\n')
	return buf, nil
}

func (JSON) Merge(base, patch Document) Document {
	return DeepMerge(base, patch)
}

func (JSON) Prune(doc, shape Document) (Document, bool) {
	return Prune(doc, shape)
}

type topLevelNotObjectError struct{}

func (*topLevelNotObjectError) Error() string {
	return "top-level JSON value must be an object"
}
