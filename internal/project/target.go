package project

import "github.com/nishantjr/kninja/internal/core/domain"

// Target references a single node in the build graph: a file path, or the
// symbolic name of a phony alias. Targets are immutable after construction;
// chaining operations return new targets.
type Target struct {
	proj *Project
	path string
}

// Path returns the target's path. It is empty for the placeholder target
// used by edges with no real input.
func (t *Target) Path() string { return t.path }

func (t *Target) String() string { return t.path }

// Then applies a rule to the target, recording a build edge in the owning
// project, and returns the successor target.
func (t *Target) Then(rule domain.Rule) (*Target, error) {
	return t.proj.then(t, rule)
}

// Alias groups the target under a phony name and returns the target itself
// for further chaining.
func (t *Target) Alias(name string) (*Target, error) {
	if _, err := t.proj.Alias(name, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Default marks the target as a default and returns it for further chaining.
func (t *Target) Default() *Target {
	t.proj.Default(t)
	return t
}
