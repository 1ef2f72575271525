// Package pathmap implements the optional path-mapping hook of §4.C: it
// redirects a provider's natural configuration directory (e.g. ~/.codex)
// into an isolated subtree (~/.poe-code/codex), collapsing the agent's
// hidden-home segment away so the isolated tree doesn't nest an extra
// directory level.
package pathmap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mapper maps a resolved, tilde-expanded target path into an isolated base
// directory.
type Mapper func(target string) (string, error)

// New builds a Mapper that redirects everything under home into
// isolatedBase, collapsing a leading ".<agentBinary>" path segment so the
// agent's usual hidden directory becomes the isolated base itself.
//
// Mapping rules (§4.C):
//   - target == home or target == isolatedBase maps to isolatedBase.
//   - target under home/... is rebased to isolatedBase/....
//   - if the first segment of the rebased path equals ".<agentBinary>", that
//     segment is dropped (~/.codex/config.toml -> isolatedBase/config.toml,
//     not isolatedBase/.codex/config.toml).
//   - anything not under home fails validation.
func New(home, isolatedBase, agentBinary string) Mapper {
	home = filepath.Clean(home)
	isolatedBase = filepath.Clean(isolatedBase)
	collapse := "." + agentBinary

	return func(target string) (string, error) {
		target = filepath.Clean(target)

		if target == home || target == isolatedBase {
			return isolatedBase, nil
		}

		rel, ok := relativeTo(home, target)
		if !ok {
			return "", fmt.Errorf("pathmap: target %q is not under home %q", target, home)
		}

		segments := strings.Split(rel, string(filepath.Separator))
		if len(segments) > 0 && segments[0] == collapse {
			segments = segments[1:]
		}

		if len(segments) == 0 {
			return isolatedBase, nil
		}
		return filepath.Join(append([]string{isolatedBase}, segments...)...), nil
	}
}

// relativeTo reports whether target lies under base (strictly, or equal)
// and returns the path relative to base. A trailing-separator-aware prefix
// check is used so "/home/user2" is never mistaken for being under
// "/home/user".
func relativeTo(base, target string) (string, bool) {
	if target == base {
		return "", true
	}
	baseWithSep := base
	if !strings.HasSuffix(baseWithSep, string(filepath.Separator)) {
		baseWithSep += string(filepath.Separator)
	}
	if !strings.HasPrefix(target, baseWithSep) {
		return "", false
	}
	return strings.TrimPrefix(target, baseWithSep), true
}

// IsUnderHome reports whether target is home itself or lies strictly under
// it, using a trailing-separator-aware prefix check so "/home/user2" never
// satisfies "under /home/user" (§9 design note).
func IsUnderHome(home, target string) bool {
	home = filepath.Clean(home)
	target = filepath.Clean(target)
	if target == home {
		return true
	}
	_, ok := relativeTo(home, target)
	return ok
}

// ExpandTilde expands a leading "~" or "~/" in path to home. Paths without
// a leading tilde are returned unchanged.
func ExpandTilde(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}
