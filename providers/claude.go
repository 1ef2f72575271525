package providers

import (
	"regexp"

	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/mutate"
)

func init() {
	register(Manifest{
		ID:          "claude",
		DisplayName: "Claude Code",
		Binary:      "claude",
		Configure:   claudeConfigure,
		Unconfigure: claudeUnconfigure,
	})
}

// claudeConfigure routes Claude Code through Poe by merging an "env" block
// (ANTHROPIC_BASE_URL and ANTHROPIC_API_KEY) into ~/.claude.json.
func claudeConfigure(opts mutate.Options) []mutate.Mutation {
	j := codec.NewJSON()
	return []mutate.Mutation{
		mutate.ConfigMutation().Merge("route through Poe", "~/.claude.json", j,
			func(o mutate.Options) (codec.Document, error) {
				return map[string]any{
					"env": map[string]any{
						"ANTHROPIC_BASE_URL": stringOpt(o, "baseURL", "https://api.poe.com/anthropic"),
						"ANTHROPIC_API_KEY":  stringOpt(o, "apiKey", ""),
					},
				}, nil
			}, nil),
	}
}

func claudeUnconfigure(opts mutate.Options) []mutate.Mutation {
	j := codec.NewJSON()
	return []mutate.Mutation{
		mutate.ConfigMutation().Prune("remove Poe routing", "~/.claude.json", j,
			map[string]any{
				"env": map[string]any{
					"ANTHROPIC_BASE_URL": map[string]any{},
					"ANTHROPIC_API_KEY":  map[string]any{},
				},
			}, nil),
		mutate.FileMutation().RemoveFile("drop empty settings file", "~/.claude.json",
			mutate.WhenContentMatches(regexp.MustCompile(`^\{\s*\}$`))),
	}
}

func stringOpt(opts mutate.Options, key, fallback string) string {
	if v, ok := opts[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
