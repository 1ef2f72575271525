package providers

import (
	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/mutate"
)

func init() {
	register(Manifest{
		ID:          "kimi",
		DisplayName: "Kimi",
		Binary:      "kimi",
		Configure:   kimiConfigure,
		Unconfigure: kimiUnconfigure,
	})
}

// kimiConfigure merges Poe routing into ~/.kimi/config.yaml, which Kimi
// reads as plain YAML rather than JSON.
func kimiConfigure(opts mutate.Options) []mutate.Mutation {
	y := codec.NewYAML()
	return []mutate.Mutation{
		mutate.ConfigMutation().Merge("route through Poe", "~/.kimi/config.yaml", y,
			func(o mutate.Options) (codec.Document, error) {
				return map[string]any{
					"api": map[string]any{
						"base_url": stringOpt(o, "baseURL", "https://api.poe.com/v1"),
						"api_key":  stringOpt(o, "apiKey", ""),
						"model":    stringOpt(o, "model", "claude-3.7-sonnet"),
					},
				}, nil
			}, nil),
	}
}

func kimiUnconfigure(opts mutate.Options) []mutate.Mutation {
	y := codec.NewYAML()
	return []mutate.Mutation{
		mutate.ConfigMutation().Prune("remove Poe routing", "~/.kimi/config.yaml", y,
			map[string]any{
				"api": map[string]any{"base_url": map[string]any{}, "api_key": map[string]any{}, "model": map[string]any{}},
			}, nil),
	}
}
