// Package codec implements the format codecs of the declarative
// configuration-mutation engine: parse/serialize/merge/prune over a
// recursively defined config-document tree, for JSON, JSON-with-comments,
// TOML and YAML.
//
// A Document is always one of: nil, bool, float64/int64/json.Number-ish
// number, string, map[string]any (object, order-preserving where the codec
// can preserve it), or []any (array). Equality between documents is
// structural, not positional: two objects with the same keys in different
// order are equal.
package codec

// Document is a config-document node: nil, bool, string, a number,
// map[string]any (object) or []any (array).
type Document = any

// Codec parses, serializes, merges and prunes documents in one on-disk
// format.
type Codec interface {
	// Parse decodes text into a Document. Empty input parses to an empty
	// object for object-rooted formats.
	Parse(text []byte) (Document, error)
	// Serialize encodes a Document back to text in this codec's canonical
	// form.
	Serialize(doc Document) ([]byte, error)
	// Merge deep-merges patch into base per the shared merge semantics and
	// returns a new document; neither input is mutated.
	Merge(base, patch Document) Document
	// Prune removes every key path matched by shape from doc and reports
	// whether anything changed.
	Prune(doc Document, shape Document) (result Document, changed bool)
	// Ext is the file extension (without dot) used for quarantine/backup
	// filenames, e.g. "json", "toml", "yaml".
	Ext() string
}

// SurgicalEditor is implemented by codecs that can rewrite a single key
// path's byte range of an already-serialized document in place, leaving
// everything else — including comments — untouched. mutate's config-merge
// and config-prune operations use it instead of a full parse/serialize
// round trip whenever the target codec supports it and a prior file exists.
type SurgicalEditor interface {
	// SurgicalSet rewrites the byte range for keyPath within original,
	// creating intermediate objects as needed.
	SurgicalSet(original []byte, keyPath []string, value any) ([]byte, error)
	// SurgicalDelete removes the byte range for keyPath from original.
	SurgicalDelete(original []byte, keyPath []string) ([]byte, error)
	// SurgicalSetRaw splices a pre-encoded fragment in at keyPath verbatim,
	// so the caller controls its indentation instead of the codec's default
	// (compact, single-line) value marshaling.
	SurgicalSetRaw(original []byte, keyPath []string, raw []byte) ([]byte, error)
}
