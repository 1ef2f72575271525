package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONC is the JSON-with-comments codec (§4.A). It tolerates line and block
// comments and trailing commas (via hujson) for Parse/Serialize, and in
// addition exposes surgical edit primitives that rewrite only the byte
// range belonging to one key path, leaving the rest of the document —
// including every comment — untouched. Providers reach for these when the
// user's original file carries comments they don't want stripped.
type JSONC struct{}

func NewJSONC() *JSONC { return &JSONC{} }

func (JSONC) Ext() string { return "jsonc" }

func (JSONC) Parse(text []byte) (Document, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	std, err := hujson.Standardize(append([]byte(nil), trimmed...))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(std))
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

func (JSONC) Serialize(doc Document) ([]byte, error) {
	return NewJSON().Serialize(doc)
}

func (JSONC) Merge(base, patch Document) Document {
	return DeepMerge(base, patch)
}

func (JSONC) Prune(doc, shape Document) (Document, bool) {
	return Prune(doc, shape)
}

// DetectIndent inspects the first indented line of original and returns the
// indentation unit it uses: a literal tab, or a string of N spaces. Falls
// back to two spaces when no indented line is found.
func DetectIndent(original []byte) string {
	for _, line := range bytes.Split(original, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if line[0] == '\t' {
			return "\t"
		}
		if line[0] == ' ' {
			n := 0
			for n < len(line) && line[n] == ' ' {
				n++
			}
			if n < len(line) && line[n] != ' ' {
				return strings.Repeat(" ", n)
			}
		}
	}
	return "  "
}

// keyPathToSJSON converts a caller-facing []string key path (e.g.
// []string{"mcpServers", "poe-code"}) into sjson/gjson's dot-path syntax,
// escaping path components that themselves contain dots.
func keyPathToSJSON(keyPath []string) string {
	parts := make([]string, len(keyPath))
	for i, p := range keyPath {
		parts[i] = strings.ReplaceAll(p, ".", "\\.")
	}
	return strings.Join(parts, ".")
}

// SurgicalSet rewrites only the byte range for keyPath within original,
// preserving every other byte (comments, whitespace, unrelated keys)
// untouched. sjson marshals value itself, compact and on one line; callers
// that need a detected indent style applied to newly-introduced content use
// SurgicalSetRaw instead.
func (JSONC) SurgicalSet(original []byte, keyPath []string, value any) ([]byte, error) {
	if len(keyPath) == 0 {
		return nil, fmt.Errorf("surgical set requires a non-empty key path")
	}
	path := keyPathToSJSON(keyPath)
	opts := &sjson.Options{
		Optimistic:     true,
		ReplaceInPlace: true,
	}
	out, err := sjson.SetBytesOptions(original, path, value, opts)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SurgicalDelete removes only the byte range for keyPath, leaving the rest
// of the document, including comments, untouched.
func (JSONC) SurgicalDelete(original []byte, keyPath []string) ([]byte, error) {
	if len(keyPath) == 0 {
		return nil, fmt.Errorf("surgical delete requires a non-empty key path")
	}
	path := keyPathToSJSON(keyPath)
	return sjson.DeleteBytes(original, path)
}

// SurgicalSetRaw splices the pre-encoded JSON fragment raw in at keyPath
// verbatim, rather than letting sjson marshal a value itself. Callers use
// this to control the indentation of newly-introduced content, since
// sjson's own value marshaling writes compact, single-line JSON regardless
// of the indent style of the rest of the document.
func (JSONC) SurgicalSetRaw(original []byte, keyPath []string, raw []byte) ([]byte, error) {
	if len(keyPath) == 0 {
		return nil, fmt.Errorf("surgical set requires a non-empty key path")
	}
	path := keyPathToSJSON(keyPath)
	opts := &sjson.Options{
		Optimistic:     true,
		ReplaceInPlace: true,
	}
	return sjson.SetRawBytesOptions(original, path, raw, opts)
}

// SurgicalGet reads the raw value at keyPath without parsing the whole
// document, returning ok=false if the path is absent.
func (JSONC) SurgicalGet(original []byte, keyPath []string) (value gjson.Result, ok bool) {
	path := keyPathToSJSON(keyPath)
	res := gjson.GetBytes(original, path)
	return res, res.Exists()
}
