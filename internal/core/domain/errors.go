package domain

import "go.trai.ch/zerr"

var (
	// ErrNoOutputRule is returned when a rule without an explicit output or an
	// extension is asked to derive an output path.
	ErrNoOutputRule = zerr.New("rule produces no derivable output: explicit output or extension required")

	// ErrAbsoluteOutput is returned when an absolute path reaches the
	// build-directory placement policy.
	ErrAbsoluteOutput = zerr.New("absolute output paths cannot be placed in the build directory")

	// ErrRuleConflict is returned when a rule name is re-registered with a
	// different description or command.
	ErrRuleConflict = zerr.New("rule already registered with a different body")

	// ErrAliasConflict is returned when a phony alias is re-registered with a
	// different target set.
	ErrAliasConflict = zerr.New("alias already declared for a different target set")

	// ErrUnboundVariable is returned when a rule command references a variable
	// that is bound neither on the edge nor globally.
	ErrUnboundVariable = zerr.New("command references an unbound variable")

	// ErrManifestClosed is returned when the project is mutated or flushed
	// after Flush has completed.
	ErrManifestClosed = zerr.New("manifest already flushed")

	// ErrCycleDetected is returned when the accumulated build edges form a
	// dependency cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownBackend is returned when a backend name is not one of the
	// supported kompile backends.
	ErrUnknownBackend = zerr.New("unknown backend")

	// ErrUnknownDefinition is returned when a definition alias is not
	// registered in the project.
	ErrUnknownDefinition = zerr.New("unknown definition")

	// ErrNoDefinitions is returned when a dispatch is attempted against a
	// project with no registered definitions.
	ErrNoDefinitions = zerr.New("no definitions registered")

	// ErrKompileNotFound is returned when a system-wide K installation is
	// requested but no kompile binary can be found on PATH.
	ErrKompileNotFound = zerr.New("kompile not found in PATH")
)
