// Package xerrors collects the small set of typed errors the mutation engine
// and its collaborators use to let callers distinguish "this is normal, treat
// as a noop" from "this must surface to the user" without string matching.
package xerrors

import "fmt"

// NotFoundError means a resource (file, agent, cache entry) is missing.
// Most call sites that can reach it treat it as a no-op rather than bubbling it.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Resource)
}

// ValidationError means caller-supplied input violates a contract: a target
// path escaping $HOME, a bad file mode, a missing required option.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseError wraps a codec failure with the path that failed to parse, so
// the mutation layer can decide whether to quarantine, noop, or raise it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedAgentError means the given provider id is not in the registry.
type UnsupportedAgentError struct {
	Agent string
}

func (e *UnsupportedAgentError) Error() string {
	return fmt.Sprintf("unsupported agent: %s", e.Agent)
}

// LogSinkError means the debug log file couldn't be opened or rotated.
// Never fatal to the command itself: callers use it to fall back to a
// discard or stderr logger instead of failing the whole invocation over a
// broken log sink.
type LogSinkError struct {
	Path string
	Err  error
}

func (e *LogSinkError) Error() string {
	return fmt.Sprintf("log file %s: %v", e.Path, e.Err)
}

func (e *LogSinkError) Unwrap() error {
	return e.Err
}

// TemplateError means a bundled template failed to render or the template it
// rendered failed to parse as the target format — always an author bug, never
// a user-data problem, so it is never quarantined.
type TemplateError struct {
	TemplateID string
	Err        error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %v", e.TemplateID, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
