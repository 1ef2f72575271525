package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCodecs() map[string]Codec {
	return map[string]Codec{
		"json":  NewJSON(),
		"jsonc": NewJSONC(),
		"toml":  NewTOML(),
		"yaml":  NewYAML(),
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []Document{
		map[string]any{},
		map[string]any{"a": "b"},
		map[string]any{"nested": map[string]any{"x": "one", "y": true}},
		map[string]any{"list": []any{"a", "b", "c"}},
	}

	for name, c := range allCodecs() {
		for i, doc := range docs {
			t.Run(name, func(t *testing.T) {
				text, err := c.Serialize(doc)
				require.NoError(t, err)

				got, err := c.Parse(text)
				require.NoError(t, err, "case %d", i)
				assert.Equal(t, doc, got, "case %d", i)
			})
		}
	}
}

func TestJSONEmptyInputYieldsEmptyObject(t *testing.T) {
	c := NewJSON()

	doc, err := c.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc)

	doc, err = c.Parse([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc)
}

func TestJSONTopLevelNonObjectFails(t *testing.T) {
	c := NewJSON()
	_, err := c.Parse([]byte(`["a", "b"]`))
	require.Error(t, err)
}

func TestJSONCTolerantOfCommentsAndTrailingCommas(t *testing.T) {
	c := NewJSONC()
	text := []byte(`{
  // a line comment
  "a": 1, /* block */
  "b": 2,
}`)
	doc, err := c.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1"), "b": json.Number("2")}, doc)
}

func TestDeepMerge(t *testing.T) {
	base := map[string]any{
		"mcpServers": map[string]any{
			"other": map[string]any{"command": "t"},
		},
		"otherKey": "value",
	}
	patch := map[string]any{
		"mcpServers": map[string]any{
			"poe-code": map[string]any{"command": "npx"},
		},
	}

	got := DeepMerge(base, patch)

	gotObj := got.(map[string]any)
	assert.Equal(t, "value", gotObj["otherKey"])
	servers := gotObj["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other")
	assert.Contains(t, servers, "poe-code")
}

func TestDeepMergeArraysReplaceWholesale(t *testing.T) {
	base := map[string]any{"list": []any{"a", "b"}}
	patch := map[string]any{"list": []any{"c"}}

	got := DeepMerge(base, patch).(map[string]any)
	assert.Equal(t, []any{"c"}, got["list"])
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"x": 1}}
	patch := map[string]any{"a": map[string]any{"y": 2}}

	DeepMerge(base, patch)

	assert.Equal(t, map[string]any{"x": 1}, base["a"])
	assert.Equal(t, map[string]any{"y": 2}, patch["a"])
}

func TestPruneDeletesEmptyLeaf(t *testing.T) {
	doc := map[string]any{"remove": true, "keep": "x"}
	shape := map[string]any{"remove": map[string]any{}}

	result, changed := Prune(doc, shape)
	require.True(t, changed)
	assert.Equal(t, map[string]any{"keep": "x"}, result)
}

func TestPruneDeletesParentWhenEmptiedByRecursion(t *testing.T) {
	doc := map[string]any{
		"models": map[string]any{"poe/gpt": map[string]any{}},
		"keep":   "x",
	}
	shape := map[string]any{
		"models": map[string]any{"poe/gpt": map[string]any{}},
	}

	result, changed := Prune(doc, shape)
	require.True(t, changed)
	assert.Equal(t, map[string]any{"keep": "x"}, result)
}

func TestPruneUnchangedWhenShapeDoesNotMatch(t *testing.T) {
	doc := map[string]any{"keep": "x"}
	shape := map[string]any{"absent": map[string]any{}}

	result, changed := Prune(doc, shape)
	require.False(t, changed)
	assert.Equal(t, doc, result)
}

func TestPruneByPrefixBoundedToOneLevel(t *testing.T) {
	base := map[string]any{
		"models": map[string]any{
			"poe/gpt-4":    map[string]any{"keep": true},
			"poe/gpt-3.5":  map[string]any{"keep": true},
			"other/claude": map[string]any{"keep": true},
		},
	}
	patch := map[string]any{
		"models": map[string]any{
			"poe/gpt-5": map[string]any{"new": true},
		},
	}

	policy := PruneByPrefixPolicy{"models": "poe/"}
	got := MergeWithPruneByPrefix(base, patch, policy).(map[string]any)
	models := got["models"].(map[string]any)

	assert.NotContains(t, models, "poe/gpt-4")
	assert.NotContains(t, models, "poe/gpt-3.5")
	assert.Contains(t, models, "other/claude")
	assert.Contains(t, models, "poe/gpt-5")
}

func TestJSONCSurgicalSetPreservesComments(t *testing.T) {
	c := NewJSONC()
	original := []byte(`{
  // keep me
  "mcpServers": {
    "other": {"command": "t"}
  }
}`)

	out, err := c.SurgicalSet(original, []string{"mcpServers", "poe-code", "command"}, "npx")
	require.NoError(t, err)

	assert.Contains(t, string(out), "// keep me")
	assert.Contains(t, string(out), `"other"`)
	assert.Contains(t, string(out), "npx")
}

func TestJSONCSurgicalDelete(t *testing.T) {
	c := NewJSONC()
	original := []byte(`{"a": 1, "b": 2}`)

	out, err := c.SurgicalDelete(original, []string{"a"})
	require.NoError(t, err)

	doc, err := c.Parse(out)
	require.NoError(t, err)
	assert.NotContains(t, doc.(map[string]any), "a")
}

func TestJSONCSurgicalSetRawSplicesVerbatim(t *testing.T) {
	c := NewJSONC()
	original := []byte("{\n  // keep me\n  \"theme\": \"dark\"\n}")

	out, err := c.SurgicalSetRaw(original, []string{"provider"}, []byte("{\n    \"poe\": {}\n  }"))
	require.NoError(t, err)

	assert.Contains(t, string(out), "// keep me")
	assert.Contains(t, string(out), "\"theme\": \"dark\"")

	doc, err := c.Parse(out)
	require.NoError(t, err)
	provider, ok := doc.(map[string]any)["provider"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, provider, "poe")
}

func TestDetectIndent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"two spaces", "{\n  \"a\": 1\n}", "  "},
		{"four spaces", "{\n    \"a\": 1\n}", "    "},
		{"tab", "{\n\t\"a\": 1\n}", "\t"},
		{"no indent", "{}", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIndent([]byte(tt.text)))
		})
	}
}
