// Package mutate implements the declarative configuration-mutation engine
// (§4.E): an ordered list of typed mutations executed against a virtual
// filesystem, a format codec, an optional path mapper, and an optional
// template renderer, producing one outcome per step.
package mutate

import (
	"io/fs"
	"regexp"

	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/render"
	"github.com/poe-code/poe-code/vfs"
)

// Options is the caller-supplied, opaque bag threaded unchanged into every
// resolver and template context.
type Options map[string]any

// Resolver produces a value of type T from the caller's options, either
// from a literal constant or a function closing over it (§9 "function
// valued resolvers").
type Resolver[T any] func(opts Options) (T, error)

// Literal returns a Resolver that ignores opts and always yields v.
func Literal[T any](v T) Resolver[T] {
	return func(Options) (T, error) { return v, nil }
}

// Kind discriminates the mutation variants of §3.
type Kind string

const (
	KindEnsureDirectory    Kind = "ensureDirectory"
	KindRemoveDirectory    Kind = "removeDirectory"
	KindRemoveFile         Kind = "removeFile"
	KindChmod              Kind = "chmod"
	KindBackup             Kind = "backup"
	KindConfigMerge        Kind = "configMerge"
	KindConfigPrune        Kind = "configPrune"
	KindConfigTransform    Kind = "configTransform"
	KindTemplateWrite      Kind = "templateWrite"
	KindTemplateMergeToml  Kind = "templateMergeToml"
	KindTemplateMergeJson  Kind = "templateMergeJson"
)

// Effect is the category of side effect a mutation performed.
type Effect string

const (
	EffectNone  Effect = "none"
	EffectMkdir Effect = "mkdir"
	EffectDelete Effect = "delete"
	EffectChmod Effect = "chmod"
	EffectCopy  Effect = "copy"
	EffectWrite Effect = "write"
)

// Detail refines Effect with the specific thing that happened.
type Detail string

const (
	DetailCreate Detail = "create"
	DetailUpdate Detail = "update"
	DetailDelete Detail = "delete"
	DetailBackup Detail = "backup"
	DetailNoop   Detail = "noop"
)

// Outcome is the per-mutation result returned by the engine.
type Outcome struct {
	Changed bool
	Effect  Effect
	Detail  Detail
}

// Details describes a mutation step to observers, independent of outcome.
type Details struct {
	Kind       Kind
	Label      string
	TargetPath string
}

// Guards for removeFile: the removal proceeds only if all set guards pass.
type RemoveFileGuards struct {
	WhenEmpty          bool
	WhenContentMatches *regexp.Regexp
}

// TransformResult is returned by a configTransform function: Content == nil
// (with Changed true) signals "delete the file".
type TransformResult struct {
	Changed bool
	Content codec.Document
}

// TransformFunc is a pure function from the current document (nil if the
// file was absent) and the caller's options to a TransformResult.
type TransformFunc func(doc codec.Document, opts Options) (TransformResult, error)

// Mutation is one step of a mutation list. Exactly the fields relevant to
// Kind are consulted; the others are ignored, mirroring the tagged-union
// variant of §3.
type Mutation struct {
	Kind  Kind
	Label string

	// Target path resolver, shared by every kind.
	Target Resolver[string]

	// removeDirectory
	Force bool

	// removeFile
	Guards RemoveFileGuards

	// chmod
	Mode fs.FileMode

	// configMerge / configPrune / configTransform / templateMerge*
	Codec codec.Codec

	// configMerge
	Value          Resolver[codec.Document]
	PruneByPrefix  codec.PruneByPrefixPolicy

	// configPrune
	Shape  codec.Document
	OnlyIf func(doc codec.Document, opts Options) bool

	// configTransform
	Transform TransformFunc

	// templateWrite / templateMerge*
	TemplateID string
	Context    Resolver[map[string]any]
}

// Observers receive synchronous callbacks around each mutation step. Any
// method may be nil.
type Observers struct {
	OnStart    func(d Details)
	OnComplete func(d Details, o Outcome)
	OnError    func(d Details, err error)
}

// Context is the shared environment a mutation list runs against.
type Context struct {
	FS         vfs.FS
	HomeDir    string
	DryRun     bool
	PathMapper func(target string) (string, error)
	Templates  *render.Registry
	Observers  Observers
}

// Result is runMutations' overall return value.
type Result struct {
	Changed bool
	Effects []Outcome
}
