// Package domain contains the core domain model for the build graph: rules,
// build edges, backends and the project layout conventions.
package domain

import (
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"
)

// Rule describes one class of build action: a named command template with
// variable placeholders, plus the conventions needed to derive the output of
// an edge built from it.
//
// Rule is a value type. Every With- method returns an independent copy; two
// handles to "the same" rule never observe each other's later customization.
type Rule struct {
	name            string
	description     string
	command         string
	ext             string
	output          string
	implicits       []string
	implicitOutputs []string
	pool            string
	variables       map[string]string
}

// NewRule creates a rule with the given identity. An empty description is
// permitted and omitted from the manifest declaration.
func NewRule(name, description, command string) Rule {
	return Rule{
		name:        name,
		description: description,
		command:     command,
	}
}

// Name returns the rule's stable identity key.
func (r Rule) Name() string { return r.name }

// Description returns the display-only description.
func (r Rule) Description() string { return r.description }

// Command returns the command template.
func (r Rule) Command() string { return r.command }

// Ext returns the extension used to derive output paths, if any.
func (r Rule) Ext() string { return r.ext }

// Output returns the explicit output path, if any.
func (r Rule) Output() string { return r.output }

// Implicits returns the implicit input paths in declaration order.
func (r Rule) Implicits() []string { return slices.Clone(r.implicits) }

// ImplicitOutputs returns the implicit output paths in declaration order.
func (r Rule) ImplicitOutputs() []string { return slices.Clone(r.implicitOutputs) }

// Pool returns the resource pool, if any.
func (r Rule) Pool() string { return r.pool }

// Variables returns a copy of the variable bindings.
func (r Rule) Variables() map[string]string {
	if r.variables == nil {
		return nil
	}
	return maps.Clone(r.variables)
}

// clone deep-copies the slices and map so the returned rule shares no
// mutable state with the receiver.
func (r Rule) clone() Rule {
	r.implicits = slices.Clone(r.implicits)
	r.implicitOutputs = slices.Clone(r.implicitOutputs)
	r.variables = maps.Clone(r.variables)
	return r
}

// WithExt returns a copy deriving edge outputs as "<input>.<ext>".
func (r Rule) WithExt(ext string) Rule {
	c := r.clone()
	c.ext = ext
	return c
}

// WithOutput returns a copy producing the given explicit output path.
func (r Rule) WithOutput(output string) Rule {
	c := r.clone()
	c.output = output
	return c
}

// WithImplicits returns a copy with the given paths appended to the implicit
// inputs.
func (r Rule) WithImplicits(paths ...string) Rule {
	c := r.clone()
	c.implicits = append(c.implicits, paths...)
	return c
}

// WithImplicitOutputs returns a copy with the given paths appended to the
// implicit outputs.
func (r Rule) WithImplicitOutputs(paths ...string) Rule {
	c := r.clone()
	c.implicitOutputs = append(c.implicitOutputs, paths...)
	return c
}

// WithPool returns a copy assigned to the named resource pool.
func (r Rule) WithPool(pool string) Rule {
	c := r.clone()
	c.pool = pool
	return c
}

// WithVar returns a copy with a single variable bound.
func (r Rule) WithVar(name, value string) Rule {
	c := r.clone()
	if c.variables == nil {
		c.variables = make(map[string]string)
	}
	c.variables[name] = value
	return c
}

// WithVars returns a copy with the given bindings merged over the existing
// ones.
func (r Rule) WithVars(vars map[string]string) Rule {
	c := r.clone()
	if c.variables == nil {
		c.variables = make(map[string]string, len(vars))
	}
	maps.Copy(c.variables, vars)
	return c
}

// OutputPath derives the output path for an edge applying this rule to the
// given source path. The explicit output wins; otherwise the extension
// convention applies and the caller is expected to run the result through the
// project placement policy. A rule with neither is a configuration error.
func (r Rule) OutputPath(source string) (string, error) {
	if r.output != "" {
		if filepath.IsAbs(r.output) {
			return "", zerr.With(zerr.With(ErrAbsoluteOutput, "rule", r.name), "output", r.output)
		}
		return r.output, nil
	}
	if r.ext != "" {
		return source + "." + r.ext, nil
	}
	return "", zerr.With(ErrNoOutputRule, "rule", r.name)
}

// Snapshot fixes the rule's customization into a build edge over the given
// inputs and outputs. The edge shares no state with the rule.
func (r Rule) Snapshot(inputs, outputs []string) Edge {
	return Edge{
		Rule:            r.name,
		Inputs:          slices.Clone(inputs),
		Outputs:         slices.Clone(outputs),
		Implicits:       slices.Clone(r.implicits),
		ImplicitOutputs: slices.Clone(r.implicitOutputs),
		Pool:            r.pool,
		Variables:       maps.Clone(r.variables),
	}
}
