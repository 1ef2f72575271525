package providers

import (
	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/mutate"
)

const codexProviderTemplate = "codex/poe-provider.toml"

const codexProviderTemplateBody = `[model_providers.poe]
name = "Poe"
base_url = "{{ .BaseURL }}"
env_key = "POE_API_KEY"
wire_api = "chat"

[profiles.poe]
model = "{{ .Model }}"
model_provider = "poe"
`

func init() {
	register(Manifest{
		ID:          "codex",
		DisplayName: "Codex",
		Binary:      "codex",
		Configure:   codexConfigure,
		Unconfigure: codexUnconfigure,
	})
	registerTemplate(codexProviderTemplate, codexProviderTemplateBody)
}

// codexConfigure merges a Poe model_providers/profiles stanza into
// ~/.codex/config.toml by rendering codexProviderTemplate.
func codexConfigure(opts mutate.Options) []mutate.Mutation {
	return []mutate.Mutation{
		mutate.TemplateMutation().MergeToml("add Poe model provider", "~/.codex/config.toml", codexProviderTemplate,
			func(o mutate.Options) (map[string]any, error) {
				return map[string]any{
					"BaseURL": stringOpt(o, "baseURL", "https://api.poe.com/openai"),
					"Model":   stringOpt(o, "model", "claude-3.7-sonnet"),
				}, nil
			}),
	}
}

func codexUnconfigure(opts mutate.Options) []mutate.Mutation {
	t := codec.NewTOML()
	return []mutate.Mutation{
		mutate.ConfigMutation().Prune("remove Poe model provider", "~/.codex/config.toml", t,
			map[string]any{
				"model_providers": map[string]any{"poe": map[string]any{}},
				"profiles":        map[string]any{"poe": map[string]any{}},
			}, nil),
	}
}
