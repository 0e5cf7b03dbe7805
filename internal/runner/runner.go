// Package runner dispatches a named definition to one of the external K
// tools, replacing the current process image.
package runner

import (
	"os"
	"strings"

	"github.com/nishantjr/kninja/internal/core/ports"
	"github.com/nishantjr/kninja/internal/project"
)

// Action selects which external tool a dispatch hands off to.
type Action string

const (
	// ActionKast parses a program against a definition.
	ActionKast Action = "kast"
	// ActionRun runs a program against a definition.
	ActionRun Action = "run"
	// ActionProve checks a specification against a definition.
	ActionProve Action = "prove"
)

// binary maps the action to the tool invoked in its place.
func (a Action) binary() string {
	switch a {
	case ActionRun:
		return "krun"
	case ActionProve:
		return "kprove"
	default:
		return "kast"
	}
}

// Runner resolves definitions from a project and hands control to a
// launcher. It holds no state of its own; everything comes from the project's
// definition registry.
type Runner struct {
	proj     *project.Project
	launcher ports.Launcher
}

// New creates a Runner over the project's registered definitions.
func New(proj *project.Project, launcher ports.Launcher) *Runner {
	return &Runner{proj: proj, launcher: launcher}
}

// Dispatch resolves the definition (the project default when alias is empty)
// and replaces the process with the action's tool, forwarding the
// definition's directory and flags plus any trailing arguments verbatim.
// Alias resolution errors are reported here, before any replacement.
func (r *Runner) Dispatch(action Action, alias, program string, trailing []string) error {
	def, err := r.proj.LookupDefinition(alias)
	if err != nil {
		return err
	}

	var flags string
	switch action {
	case ActionRun:
		flags = def.KrunFlags()
	case ActionProve:
		flags = def.KproveFlags()
	}

	bin := r.proj.Layout().KBinPath(action.binary())
	argv := []string{bin, "--directory", def.Directory(), program}
	argv = append(argv, strings.Fields(flags)...)
	argv = append(argv, trailing...)

	return r.launcher.Exec(bin, argv, os.Environ())
}
