package mutate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poe-code/poe-code/codec"
	"github.com/poe-code/poe-code/internal/xerrors"
	"github.com/poe-code/poe-code/pathmap"
	"github.com/poe-code/poe-code/vfs"
)

// Run executes list in order against ctx, threading opts into every
// resolver and template context. Each step runs the five-phase lifecycle
// of §4.E: onStart, resolve+validate the target path, dispatch on kind,
// then onComplete or onError.
func Run(list []Mutation, ctx Context, opts Options) (Result, error) {
	result := Result{Effects: make([]Outcome, 0, len(list))}

	for _, m := range list {
		outcome, err := runOne(m, ctx, opts)
		if err != nil {
			return result, err
		}
		result.Effects = append(result.Effects, outcome)
		if outcome.Changed {
			result.Changed = true
		}
	}

	return result, nil
}

func runOne(m Mutation, ctx Context, opts Options) (Outcome, error) {
	details := Details{Kind: m.Kind, Label: m.Label}

	if ctx.Observers.OnStart != nil {
		ctx.Observers.OnStart(details)
	}

	target, err := resolveTarget(ctx, m.Target, opts)
	if err != nil {
		if ctx.Observers.OnError != nil {
			ctx.Observers.OnError(details, err)
		}
		return Outcome{}, err
	}
	details.TargetPath = target

	outcome, err := dispatch(m, ctx, opts, target)
	if err != nil {
		if ctx.Observers.OnError != nil {
			ctx.Observers.OnError(details, err)
		}
		return Outcome{}, err
	}

	if ctx.Observers.OnComplete != nil {
		ctx.Observers.OnComplete(details, outcome)
	}
	return outcome, nil
}

// resolveTarget implements step 2+3: resolve, tilde-expand, path-map, then
// validate home-boundary for any path that originated with "~".
func resolveTarget(ctx Context, resolver Resolver[string], opts Options) (string, error) {
	if resolver == nil {
		return "", &xerrors.ValidationError{Message: "mutation has no target resolver"}
	}

	raw, err := resolver(opts)
	if err != nil {
		return "", err
	}

	tildeOrigin := strings.HasPrefix(raw, "~")
	expanded := pathmap.ExpandTilde(raw, ctx.HomeDir)

	mapped := expanded
	if ctx.PathMapper != nil {
		mapped, err = ctx.PathMapper(expanded)
		if err != nil {
			return "", &xerrors.ValidationError{Message: err.Error()}
		}
	}

	if tildeOrigin && !pathmap.IsUnderHome(ctx.HomeDir, mapped) {
		return "", &xerrors.ValidationError{
			Message: "Isolated config targets must live under the user's home directory",
		}
	}

	return mapped, nil
}

func dispatch(m Mutation, ctx Context, opts Options, target string) (Outcome, error) {
	switch m.Kind {
	case KindEnsureDirectory:
		return runEnsureDirectory(ctx, target)
	case KindRemoveDirectory:
		return runRemoveDirectory(ctx, target, m.Force)
	case KindRemoveFile:
		return runRemoveFile(ctx, target, m.Guards)
	case KindChmod:
		return runChmod(ctx, target, m.Mode)
	case KindBackup:
		return runBackup(ctx, target)
	case KindConfigMerge:
		return runConfigMerge(ctx, opts, m, target)
	case KindConfigPrune:
		return runConfigPrune(ctx, opts, m, target)
	case KindConfigTransform:
		return runConfigTransform(ctx, opts, m, target)
	case KindTemplateWrite:
		return runTemplateWrite(ctx, opts, m, target)
	case KindTemplateMergeToml, KindTemplateMergeJson:
		return runTemplateMerge(ctx, opts, m, target)
	default:
		return Outcome{}, &xerrors.ValidationError{Message: fmt.Sprintf("unknown mutation kind: %s", m.Kind)}
	}
}

func runEnsureDirectory(ctx Context, target string) (Outcome, error) {
	exists, err := vfs.Exists(ctx.FS, target)
	if err != nil {
		return Outcome{}, err
	}
	if exists {
		return Outcome{Changed: false, Effect: EffectMkdir, Detail: DetailNoop}, nil
	}
	if !ctx.DryRun {
		if err := ctx.FS.Mkdir(target, true, 0o755); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectMkdir, Detail: DetailCreate}, nil
}

func runRemoveDirectory(ctx Context, target string, force bool) (Outcome, error) {
	exists, err := vfs.Exists(ctx.FS, target)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	if !force {
		empty, err := vfs.IsDirEmpty(ctx.FS, target)
		if err != nil {
			return Outcome{}, err
		}
		if !empty {
			return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
		}
	}

	if !ctx.DryRun {
		if err := ctx.FS.Remove(target, force, true); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectDelete, Detail: DetailDelete}, nil
}

func runRemoveFile(ctx Context, target string, guards RemoveFileGuards) (Outcome, error) {
	content, err := ctx.FS.ReadFile(target)
	if err != nil {
		return Outcome{}, err
	}
	if content == nil {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	trimmed := strings.TrimSpace(string(content))
	if guards.WhenEmpty && trimmed != "" {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}
	if guards.WhenContentMatches != nil && !guards.WhenContentMatches.MatchString(trimmed) {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	if !ctx.DryRun {
		if err := ctx.FS.Unlink(target); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectDelete, Detail: DetailDelete}, nil
}

func runChmod(ctx Context, target string, mode fs.FileMode) (Outcome, error) {
	info, err := ctx.FS.Stat(target)
	if err != nil {
		return Outcome{}, err
	}
	if info == nil {
		return Outcome{Changed: false, Effect: EffectChmod, Detail: DetailNoop}, nil
	}
	if info.Mode().Perm() == mode.Perm() {
		return Outcome{Changed: false, Effect: EffectChmod, Detail: DetailNoop}, nil
	}
	if !ctx.DryRun {
		if err := ctx.FS.Chmod(target, mode); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectChmod, Detail: DetailUpdate}, nil
}

func runBackup(ctx Context, target string) (Outcome, error) {
	content, err := ctx.FS.ReadFile(target)
	if err != nil {
		return Outcome{}, err
	}
	if content == nil {
		return Outcome{Changed: false, Effect: EffectCopy, Detail: DetailNoop}, nil
	}

	backupPath := target + ".backup-" + vfs.TimestampSuffix()
	if !ctx.DryRun {
		backupPath, err = disambiguate(ctx, backupPath)
		if err != nil {
			return Outcome{}, err
		}
		if err := ctx.FS.WriteFile(backupPath, content, 0o644); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectCopy, Detail: DetailBackup}, nil
}

// readAndParseWithQuarantine reads target, parses it with m.Codec, and
// quarantines the original on parse failure (configMerge/configTransform
// policy of §4.E/§7: the content is then treated as if it had been empty).
func readAndParseWithQuarantine(ctx Context, m Mutation, target string) (codec.Document, []byte, error) {
	content, err := ctx.FS.ReadFile(target)
	if err != nil {
		return nil, nil, err
	}
	if content == nil {
		return nil, nil, nil
	}

	doc, err := m.Codec.Parse(content)
	if err != nil {
		quarantinePath := fmt.Sprintf("%s.invalid-%s.%s", target, vfs.TimestampSuffix(), m.Codec.Ext())
		if !ctx.DryRun {
			quarantinePath, err = disambiguate(ctx, quarantinePath)
			if err != nil {
				return nil, nil, err
			}
			if writeErr := ctx.FS.WriteFile(quarantinePath, content, 0o644); writeErr != nil {
				return nil, nil, writeErr
			}
		}
		return nil, content, nil
	}

	return doc, content, nil
}

func runConfigMerge(ctx Context, opts Options, m Mutation, target string) (Outcome, error) {
	doc, original, err := readAndParseWithQuarantine(ctx, m, target)
	if err != nil {
		return Outcome{}, err
	}
	existed := original != nil

	value, err := m.Value(opts)
	if err != nil {
		return Outcome{}, err
	}

	var merged codec.Document
	if len(m.PruneByPrefix) > 0 {
		merged = codec.MergeWithPruneByPrefix(doc, value, m.PruneByPrefix)
	} else {
		merged = m.Codec.Merge(doc, value)
	}

	serialized, err := m.Codec.Serialize(merged)
	if err != nil {
		return Outcome{}, err
	}

	if existed && string(serialized) == string(original) {
		return Outcome{Changed: false, Effect: EffectWrite, Detail: DetailNoop}, nil
	}

	// Prefer a surgical byte-range edit over the full re-serialize above when
	// the codec carries comments worth keeping: editor.SurgicalSet touches
	// only the patch's own key paths, so anything else in the file the user
	// wrote — comments included — survives untouched.
	if editor, ok := m.Codec.(codec.SurgicalEditor); ok && existed && doc != nil && len(m.PruneByPrefix) == 0 {
		surgical, ok, serr := applySurgicalMerge(editor, original, doc, value)
		if serr != nil {
			return Outcome{}, serr
		}
		if ok {
			serialized = surgical
		}
	}

	if !ctx.DryRun {
		if err := writeFileEnsuringParent(ctx, target, serialized); err != nil {
			return Outcome{}, err
		}
	}

	detail := DetailUpdate
	if !existed {
		detail = DetailCreate
	}
	return Outcome{Changed: true, Effect: EffectWrite, Detail: detail}, nil
}

func runConfigPrune(ctx Context, opts Options, m Mutation, target string) (Outcome, error) {
	content, err := ctx.FS.ReadFile(target)
	if err != nil {
		return Outcome{}, err
	}
	if content == nil {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	doc, err := m.Codec.Parse(content)
	if err != nil {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	if m.OnlyIf != nil && !m.OnlyIf(doc, opts) {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	pruned, changed := m.Codec.Prune(doc, m.Shape)
	if !changed {
		return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
	}

	if isEmptyObject(pruned) {
		if !ctx.DryRun {
			if err := ctx.FS.Unlink(target); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{Changed: true, Effect: EffectDelete, Detail: DetailDelete}, nil
	}

	serialized, err := m.Codec.Serialize(pruned)
	if err != nil {
		return Outcome{}, err
	}

	if editor, ok := m.Codec.(codec.SurgicalEditor); ok {
		if surgical, sok, serr := applySurgicalPrune(editor, content, doc, pruned); serr == nil && sok {
			serialized = surgical
		}
	}

	if !ctx.DryRun {
		if err := writeFileEnsuringParent(ctx, target, serialized); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Changed: true, Effect: EffectWrite, Detail: DetailUpdate}, nil
}

func runConfigTransform(ctx Context, opts Options, m Mutation, target string) (Outcome, error) {
	doc, original, err := readAndParseWithQuarantine(ctx, m, target)
	if err != nil {
		return Outcome{}, err
	}
	existed := original != nil

	res, err := m.Transform(doc, opts)
	if err != nil {
		return Outcome{}, err
	}
	if !res.Changed {
		return Outcome{Changed: false, Effect: EffectWrite, Detail: DetailNoop}, nil
	}

	if res.Content == nil {
		if !existed {
			return Outcome{Changed: false, Effect: EffectDelete, Detail: DetailNoop}, nil
		}
		if !ctx.DryRun {
			if err := ctx.FS.Unlink(target); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{Changed: true, Effect: EffectDelete, Detail: DetailDelete}, nil
	}

	serialized, err := m.Codec.Serialize(res.Content)
	if err != nil {
		return Outcome{}, err
	}
	if !ctx.DryRun {
		if err := writeFileEnsuringParent(ctx, target, serialized); err != nil {
			return Outcome{}, err
		}
	}

	detail := DetailUpdate
	if !existed {
		detail = DetailCreate
	}
	return Outcome{Changed: true, Effect: EffectWrite, Detail: detail}, nil
}

func runTemplateWrite(ctx Context, opts Options, m Mutation, target string) (Outcome, error) {
	if ctx.Templates == nil {
		return Outcome{}, &xerrors.TemplateError{TemplateID: m.TemplateID, Err: fmt.Errorf("missing templates loader")}
	}

	renderCtx, err := resolveTemplateContext(m, opts)
	if err != nil {
		return Outcome{}, err
	}

	rendered, err := ctx.Templates.Render(m.TemplateID, renderCtx)
	if err != nil {
		return Outcome{}, err
	}

	existed, err := vfs.Exists(ctx.FS, target)
	if err != nil {
		return Outcome{}, err
	}

	if !ctx.DryRun {
		if err := writeFileEnsuringParent(ctx, target, []byte(rendered)); err != nil {
			return Outcome{}, err
		}
	}

	detail := DetailUpdate
	if !existed {
		detail = DetailCreate
	}
	return Outcome{Changed: true, Effect: EffectWrite, Detail: detail}, nil
}

func runTemplateMerge(ctx Context, opts Options, m Mutation, target string) (Outcome, error) {
	if ctx.Templates == nil {
		return Outcome{}, &xerrors.TemplateError{TemplateID: m.TemplateID, Err: fmt.Errorf("missing templates loader")}
	}

	renderCtx, err := resolveTemplateContext(m, opts)
	if err != nil {
		return Outcome{}, err
	}

	rendered, err := ctx.Templates.Render(m.TemplateID, renderCtx)
	if err != nil {
		return Outcome{}, err
	}

	renderedDoc, err := m.Codec.Parse([]byte(rendered))
	if err != nil {
		return Outcome{}, &xerrors.TemplateError{TemplateID: m.TemplateID, Err: err}
	}

	doc, original, err := readAndParseWithQuarantine(ctx, m, target)
	if err != nil {
		return Outcome{}, err
	}
	existed := original != nil

	merged := m.Codec.Merge(doc, renderedDoc)
	serialized, err := m.Codec.Serialize(merged)
	if err != nil {
		return Outcome{}, err
	}

	if existed && string(serialized) == string(original) {
		return Outcome{Changed: false, Effect: EffectWrite, Detail: DetailNoop}, nil
	}

	if !ctx.DryRun {
		if err := writeFileEnsuringParent(ctx, target, serialized); err != nil {
			return Outcome{}, err
		}
	}

	detail := DetailUpdate
	if !existed {
		detail = DetailCreate
	}
	return Outcome{Changed: true, Effect: EffectWrite, Detail: detail}, nil
}

func resolveTemplateContext(m Mutation, opts Options) (map[string]any, error) {
	if m.Context == nil {
		return map[string]any{}, nil
	}
	return m.Context(opts)
}

func writeFileEnsuringParent(ctx Context, target string, data []byte) error {
	if err := ctx.FS.Mkdir(filepath.Dir(target), true, 0o755); err != nil {
		return err
	}
	return ctx.FS.WriteFile(target, data, 0o644)
}

func isEmptyObject(doc codec.Document) bool {
	obj, ok := doc.(map[string]any)
	return ok && len(obj) == 0
}

// applySurgicalMerge rewrites only the key paths value touches, in sorted
// order for determinism. ok is false when value carries no leaves to set
// (an empty patch object), leaving the caller's full-serialize result as is.
//
// A top-level key that doesn't exist in doc yet is spliced in as one
// pre-indented raw fragment (codec.DetectIndent's tab-or-N-spaces guess for
// original), since the codec's own value marshaling writes new content
// compact on a single line regardless of the rest of the file's style. A
// top-level key that already exists is merged leaf by leaf instead, which
// only touches the specific scalars changing and leaves the surrounding
// formatting of that key's existing content alone.
func applySurgicalMerge(editor codec.SurgicalEditor, original []byte, doc, value codec.Document) ([]byte, bool, error) {
	patchObj, ok := value.(map[string]any)
	if !ok || len(patchObj) == 0 {
		return nil, false, nil
	}
	baseObj, _ := doc.(map[string]any)
	indent := codec.DetectIndent(original)

	keys := make([]string, 0, len(patchObj))
	for k := range patchObj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := original
	wrote := false
	for _, k := range keys {
		if _, exists := baseObj[k]; !exists {
			raw, err := json.MarshalIndent(patchObj[k], "", indent)
			if err != nil {
				return nil, false, err
			}
			edited, err := editor.SurgicalSetRaw(out, []string{k}, raw)
			if err != nil {
				return nil, false, err
			}
			out = edited
			wrote = true
			continue
		}

		for _, leaf := range flattenLeaves(patchObj[k], []string{k}) {
			edited, err := editor.SurgicalSet(out, leaf.path, leaf.value)
			if err != nil {
				return nil, false, err
			}
			out = edited
			wrote = true
		}
	}
	return out, wrote, nil
}

// applySurgicalPrune deletes only the top-level (and, one level down,
// second-level) key paths that codec.Prune actually removed between doc and
// pruned, bounded the same way codec.PruneByPrefixPolicy is: deep enough for
// every shape this module ever builds, shallow enough to stay simple.
func applySurgicalPrune(editor codec.SurgicalEditor, original []byte, doc, pruned codec.Document) ([]byte, bool, error) {
	docObj, ok := doc.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	prunedObj, _ := pruned.(map[string]any)

	var paths [][]string
	keys := make([]string, 0, len(docObj))
	for k := range docObj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		newVal, stillPresent := prunedObj[k]
		if !stillPresent {
			paths = append(paths, []string{k})
			continue
		}
		oldSub, oldIsObj := docObj[k].(map[string]any)
		newSub, newIsObj := newVal.(map[string]any)
		if !oldIsObj || !newIsObj {
			continue
		}
		subKeys := make([]string, 0, len(oldSub))
		for sk := range oldSub {
			subKeys = append(subKeys, sk)
		}
		sort.Strings(subKeys)
		for _, sk := range subKeys {
			if _, present := newSub[sk]; !present {
				paths = append(paths, []string{k, sk})
			}
		}
	}

	if len(paths) == 0 {
		return nil, false, nil
	}

	out := original
	for _, path := range paths {
		edited, err := editor.SurgicalDelete(out, path)
		if err != nil {
			return nil, false, err
		}
		out = edited
	}
	return out, true, nil
}

type surgicalLeaf struct {
	path  []string
	value any
}

// flattenLeaves walks a merge patch to its non-object leaves (or empty
// objects, which are themselves leaves), returning one surgicalLeaf per key
// path. Arrays are always leaves, matching DeepMerge's "patch replaces
// wholesale" array semantics.
func flattenLeaves(value codec.Document, prefix []string) []surgicalLeaf {
	obj, ok := value.(map[string]any)
	if !ok || len(obj) == 0 {
		if len(prefix) == 0 {
			return nil
		}
		return []surgicalLeaf{{path: prefix, value: value}}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var leaves []surgicalLeaf
	for _, k := range keys {
		leaves = append(leaves, flattenLeaves(obj[k], append(append([]string{}, prefix...), k))...)
	}
	return leaves
}

// disambiguate appends a monotonic "-N" suffix if path is already taken,
// avoiding a same-tick quarantine/backup collision between two mutations
// against the same target in one run (§9 supplement, same idiom as
// isFirstRun's O_EXCL marker file: never silently overwrite a sideways
// copy meant to preserve prior data).
func disambiguate(ctx Context, path string) (string, error) {
	candidate := path
	for n := 1; ; n++ {
		info, err := ctx.FS.Stat(candidate)
		if err != nil {
			return "", err
		}
		if info == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", path, n)
	}
}
