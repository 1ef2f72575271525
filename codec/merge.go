package codec

// DeepMerge implements the shared merge semantics of §4.A: for each key in
// patch, if both sides hold an object, recurse; otherwise patch wins
// outright. Arrays are replaced wholesale, never concatenated. Absent patch
// values are skipped. Neither input is mutated.
func DeepMerge(base, patch Document) Document {
	patchObj, patchIsObj := patch.(map[string]any)
	if !patchIsObj {
		if patch == nil {
			return cloneDoc(base)
		}
		return cloneDoc(patch)
	}

	baseObj, baseIsObj := base.(map[string]any)
	if !baseIsObj {
		baseObj = map[string]any{}
	}

	result := make(map[string]any, len(baseObj)+len(patchObj))
	for k, v := range baseObj {
		result[k] = cloneDoc(v)
	}

	for k, pv := range patchObj {
		bv, exists := result[k]
		if !exists {
			result[k] = cloneDoc(pv)
			continue
		}
		_, bvIsObj := bv.(map[string]any)
		_, pvIsObj := pv.(map[string]any)
		if bvIsObj && pvIsObj {
			result[k] = DeepMerge(bv, pv)
		} else {
			result[k] = cloneDoc(pv)
		}
	}

	return result
}

// PruneByPrefixPolicy maps a top-level key to a prefix: every nested key of
// that top-level value whose name begins with prefix is dropped before the
// merge runs. Recursion is intentionally bounded to one level deep (§9 open
// question: a feature, not a bug — it bounds the blast radius).
type PruneByPrefixPolicy map[string]string

// MergeWithPruneByPrefix applies policy to base before deep-merging patch
// into the result.
func MergeWithPruneByPrefix(base, patch Document, policy PruneByPrefixPolicy) Document {
	baseObj, ok := base.(map[string]any)
	if !ok || len(policy) == 0 {
		return DeepMerge(base, patch)
	}

	pruned := make(map[string]any, len(baseObj))
	for k, v := range baseObj {
		prefix, hasPolicy := policy[k]
		sub, isObj := v.(map[string]any)
		if !hasPolicy || !isObj {
			pruned[k] = cloneDoc(v)
			continue
		}
		newSub := make(map[string]any, len(sub))
		for sk, sv := range sub {
			if len(sk) >= len(prefix) && sk[:len(prefix)] == prefix {
				continue
			}
			newSub[sk] = cloneDoc(sv)
		}
		pruned[k] = newSub
	}

	return DeepMerge(pruned, patch)
}

// Prune implements the shared prune semantics of §4.A: shape is a tree
// whose leaves signal "delete this key regardless of value" — an empty
// object at a leaf position means delete, a non-empty object means recurse.
// After recursion, if a key's recursive result becomes an empty object, the
// key itself is deleted too. Returns the new document and whether anything
// changed.
func Prune(doc Document, shape Document) (Document, bool) {
	docObj, docIsObj := doc.(map[string]any)
	shapeObj, shapeIsObj := shape.(map[string]any)
	if !docIsObj || !shapeIsObj {
		return cloneDoc(doc), false
	}

	result := make(map[string]any, len(docObj))
	for k, v := range docObj {
		result[k] = cloneDoc(v)
	}

	changed := false
	for key, shapeVal := range shapeObj {
		current, exists := result[key]
		if !exists {
			continue
		}

		shapeSub, shapeSubIsObj := shapeVal.(map[string]any)
		if !shapeSubIsObj || len(shapeSub) == 0 {
			delete(result, key)
			changed = true
			continue
		}

		newSub, subChanged := Prune(current, shapeSub)
		if !subChanged {
			continue
		}
		changed = true
		if subObj, ok := newSub.(map[string]any); ok && len(subObj) == 0 {
			delete(result, key)
		} else {
			result[key] = newSub
		}
	}

	return result, changed
}

func cloneDoc(doc Document) Document {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = cloneDoc(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = cloneDoc(val)
		}
		return out
	default:
		return v
	}
}
