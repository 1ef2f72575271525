package providers

import (
	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/mutate"
)

func init() {
	register(Manifest{
		ID:          "opencode",
		DisplayName: "OpenCode",
		Binary:      "opencode",
		Configure:   opencodeConfigure,
		Unconfigure: opencodeUnconfigure,
	})
}

// opencodeConfigure merges a Poe provider entry into
// ~/.config/opencode/opencode.json, preserving any comments already present
// (the file is treated as JSONC so hand-written annotations survive).
func opencodeConfigure(opts mutate.Options) []mutate.Mutation {
	jc := codec.NewJSONC()
	return []mutate.Mutation{
		mutate.ConfigMutation().Merge("add Poe provider", "~/.config/opencode/opencode.json", jc,
			func(o mutate.Options) (codec.Document, error) {
				return map[string]any{
					"provider": map[string]any{
						"poe": map[string]any{
							"npm": "@ai-sdk/openai-compatible",
							"options": map[string]any{
								"baseURL": stringOpt(o, "baseURL", "https://api.poe.com/openai"),
								"apiKey":  stringOpt(o, "apiKey", ""),
							},
							"models": map[string]any{
								stringOpt(o, "model", "claude-3.7-sonnet"): map[string]any{},
							},
						},
					},
				}, nil
			}, nil),
	}
}

func opencodeUnconfigure(opts mutate.Options) []mutate.Mutation {
	jc := codec.NewJSONC()
	return []mutate.Mutation{
		mutate.ConfigMutation().Prune("remove Poe provider", "~/.config/opencode/opencode.json", jc,
			map[string]any{
				"provider": map[string]any{"poe": map[string]any{}},
			}, nil),
	}
}
