// Package ninja serializes build declarations into the ninja manifest
// syntax: variables, rules, build edges, phony aliases and defaults.
package ninja

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const lineWidth = 78

// Writer emits ninja syntax to an underlying writer. Write errors are sticky:
// the first one is remembered and returned by Err and Flush, so callers can
// emit a whole manifest and check once.
type Writer struct {
	w     io.Writer
	width int
	err   error
}

// NewWriter creates a manifest writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, width: lineWidth}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error { return w.err }

// Flush reports the first write error. The underlying writer is not owned by
// the Writer and is left open.
func (w *Writer) Flush() error { return w.err }

// Comment writes a comment line.
func (w *Writer) Comment(text string) {
	w.writeLine("# " + text)
}

// Newline writes a blank separator line.
func (w *Writer) Newline() {
	w.write("\n")
}

// Variable writes a global or edge-scoped variable binding. Empty values are
// skipped entirely; indent 1 scopes the binding to the preceding declaration.
func (w *Writer) Variable(name, value string, indent int) {
	if value == "" {
		return
	}
	w.wrappedLine(fmt.Sprintf("%s = %s", name, value), indent)
}

// Rule writes a rule declaration. The description is omitted when empty.
func (w *Writer) Rule(name, command, description string) {
	w.wrappedLine("rule "+name, 0)
	w.Variable("command", command, 1)
	if description != "" {
		w.Variable("description", description, 1)
	}
}

// Build writes a build edge: explicit and implicit outputs, the rule,
// explicit and implicit inputs, the pool, and per-edge variable overrides.
// Variables are written in sorted order for deterministic output.
func (w *Writer) Build(outputs []string, rule string, inputs, implicits, implicitOutputs []string, pool string, variables map[string]string) {
	line := "build " + joinPaths(outputs)
	if len(implicitOutputs) > 0 {
		line += " | " + joinPaths(implicitOutputs)
	}
	line += ": " + rule
	if len(inputs) > 0 {
		line += " " + joinPaths(inputs)
	}
	if len(implicits) > 0 {
		line += " | " + joinPaths(implicits)
	}
	w.wrappedLine(line, 0)

	if pool != "" {
		w.Variable("pool", pool, 1)
	}
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.Variable(name, variables[name], 1)
	}
}

// Default writes a default-target declaration.
func (w *Writer) Default(paths []string) {
	w.wrappedLine("default "+joinPaths(paths), 0)
}

// EscapePath escapes the characters ninja treats specially in paths.
func EscapePath(path string) string {
	path = strings.ReplaceAll(path, "$", "$$")
	path = strings.ReplaceAll(path, " ", "$ ")
	return strings.ReplaceAll(path, ":", "$:")
}

func joinPaths(paths []string) string {
	escaped := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		escaped = append(escaped, EscapePath(p))
	}
	return strings.Join(escaped, " ")
}

// wrappedLine writes text with the given indent, wrapping long lines with
// " $" continuations at spaces that are not themselves escaped.
func (w *Writer) wrappedLine(text string, indent int) {
	leading := strings.Repeat("  ", indent)

	for len(leading)+len(text) > w.width {
		// Leave room for the " $" continuation marker.
		available := w.width - len(leading) - 2
		space := breakableSpace(text, available)
		if space < 0 {
			break
		}
		w.write(leading + text[:space] + " $\n")
		text = text[space+1:]
		leading = strings.Repeat("  ", indent+2)
	}
	w.write(leading + text + "\n")
}

// breakableSpace finds the rightmost space at or before limit that is not
// preceded by a '$' escape, falling back to the first such space after it.
func breakableSpace(text string, limit int) int {
	if limit < 0 {
		limit = 0
	}
	candidate := -1
	if limit < len(text) {
		candidate = strings.LastIndex(text[:limit], " ")
	} else {
		candidate = strings.LastIndex(text, " ")
	}
	for candidate > 0 && text[candidate-1] == '$' {
		candidate = strings.LastIndex(text[:candidate-1], " ")
	}
	if candidate > 0 {
		return candidate
	}
	// No space fits: take the first breakable one past the limit.
	rest := limit
	for rest < len(text) {
		idx := strings.Index(text[rest:], " ")
		if idx < 0 {
			return -1
		}
		candidate = rest + idx
		if candidate > 0 && text[candidate-1] != '$' {
			return candidate
		}
		rest = candidate + 1
	}
	return -1
}

func (w *Writer) writeLine(line string) {
	w.write(line + "\n")
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	if _, err := io.WriteString(w.w, s); err != nil {
		w.err = err
	}
}
