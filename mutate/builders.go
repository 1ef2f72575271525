package mutate

import (
	"io/fs"
	"regexp"

	"github.com/poe-code/poe-code/codec"
)

// fileMutation is the builder namespace for VFS-only mutation kinds.
var fileMutation = struct {
	EnsureDirectory func(label, path string) Mutation
	RemoveDirectory func(label, path string, force bool) Mutation
	RemoveFile      func(label, target string, guards RemoveFileGuards) Mutation
	Chmod           func(label, target string, mode uint32) Mutation
	Backup          func(label, target string) Mutation
}{
	EnsureDirectory: func(label, path string) Mutation {
		return Mutation{Kind: KindEnsureDirectory, Label: label, Target: Literal(path)}
	},
	RemoveDirectory: func(label, path string, force bool) Mutation {
		return Mutation{Kind: KindRemoveDirectory, Label: label, Target: Literal(path), Force: force}
	},
	RemoveFile: func(label, target string, guards RemoveFileGuards) Mutation {
		return Mutation{Kind: KindRemoveFile, Label: label, Target: Literal(target), Guards: guards}
	},
	Chmod: func(label, target string, mode uint32) Mutation {
		return Mutation{Kind: KindChmod, Label: label, Target: Literal(target), Mode: fs.FileMode(mode)}
	},
	Backup: func(label, target string) Mutation {
		return Mutation{Kind: KindBackup, Label: label, Target: Literal(target)}
	},
}

// FileMutation exposes the fileMutation.* builder namespace.
func FileMutation() struct {
	EnsureDirectory func(label, path string) Mutation
	RemoveDirectory func(label, path string, force bool) Mutation
	RemoveFile      func(label, target string, guards RemoveFileGuards) Mutation
	Chmod           func(label, target string, mode uint32) Mutation
	Backup          func(label, target string) Mutation
} {
	return fileMutation
}

// configMutation is the builder namespace for codec-backed mutation kinds.
var configMutation = struct {
	Merge     func(label, target string, c codec.Codec, value Resolver[codec.Document], pruneByPrefix codec.PruneByPrefixPolicy) Mutation
	Prune     func(label, target string, c codec.Codec, shape codec.Document, onlyIf func(codec.Document, Options) bool) Mutation
	Transform func(label, target string, c codec.Codec, transform TransformFunc) Mutation
}{
	Merge: func(label, target string, c codec.Codec, value Resolver[codec.Document], pruneByPrefix codec.PruneByPrefixPolicy) Mutation {
		return Mutation{
			Kind:          KindConfigMerge,
			Label:         label,
			Target:        Literal(target),
			Codec:         c,
			Value:         value,
			PruneByPrefix: pruneByPrefix,
		}
	},
	Prune: func(label, target string, c codec.Codec, shape codec.Document, onlyIf func(codec.Document, Options) bool) Mutation {
		return Mutation{
			Kind:   KindConfigPrune,
			Label:  label,
			Target: Literal(target),
			Codec:  c,
			Shape:  shape,
			OnlyIf: onlyIf,
		}
	},
	Transform: func(label, target string, c codec.Codec, transform TransformFunc) Mutation {
		return Mutation{
			Kind:      KindConfigTransform,
			Label:     label,
			Target:    Literal(target),
			Codec:     c,
			Transform: transform,
		}
	},
}

// ConfigMutation exposes the configMutation.* builder namespace.
func ConfigMutation() struct {
	Merge     func(label, target string, c codec.Codec, value Resolver[codec.Document], pruneByPrefix codec.PruneByPrefixPolicy) Mutation
	Prune     func(label, target string, c codec.Codec, shape codec.Document, onlyIf func(codec.Document, Options) bool) Mutation
	Transform func(label, target string, c codec.Codec, transform TransformFunc) Mutation
} {
	return configMutation
}

// templateMutation is the builder namespace for renderer-backed mutation
// kinds.
var templateMutation = struct {
	Write      func(label, target, templateID string, context Resolver[map[string]any]) Mutation
	MergeToml  func(label, target, templateID string, context Resolver[map[string]any]) Mutation
	MergeJson  func(label, target, templateID string, context Resolver[map[string]any]) Mutation
}{
	Write: func(label, target, templateID string, context Resolver[map[string]any]) Mutation {
		return Mutation{Kind: KindTemplateWrite, Label: label, Target: Literal(target), TemplateID: templateID, Context: context}
	},
	MergeToml: func(label, target, templateID string, context Resolver[map[string]any]) Mutation {
		return Mutation{
			Kind:       KindTemplateMergeToml,
			Label:      label,
			Target:     Literal(target),
			TemplateID: templateID,
			Context:    context,
			Codec:      codec.NewTOML(),
		}
	},
	MergeJson: func(label, target, templateID string, context Resolver[map[string]any]) Mutation {
		return Mutation{
			Kind:       KindTemplateMergeJson,
			Label:      label,
			Target:     Literal(target),
			TemplateID: templateID,
			Context:    context,
			Codec:      codec.NewJSON(),
		}
	},
}

// TemplateMutation exposes the templateMutation.* builder namespace.
func TemplateMutation() struct {
	Write     func(label, target, templateID string, context Resolver[map[string]any]) Mutation
	MergeToml func(label, target, templateID string, context Resolver[map[string]any]) Mutation
	MergeJson func(label, target, templateID string, context Resolver[map[string]any]) Mutation
} {
	return templateMutation
}

// WhenEmpty returns RemoveFileGuards that pass only when the file's trimmed
// content is empty.
func WhenEmpty() RemoveFileGuards {
	return RemoveFileGuards{WhenEmpty: true}
}

// WhenContentMatches returns RemoveFileGuards that pass only when the
// file's trimmed content matches pattern.
func WhenContentMatches(pattern *regexp.Regexp) RemoveFileGuards {
	return RemoveFileGuards{WhenContentMatches: pattern}
}
