package project

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nishantjr/kninja/internal/core/domain"
)

// Mode selects what the runner script does with an input.
type Mode string

const (
	// ModeRun executes a program against the definition.
	ModeRun Mode = "run"
	// ModeProve checks a specification against the definition.
	ModeProve Mode = "prove"
)

// DefinitionConfig carries the optional parameters of a definition.
type DefinitionConfig struct {
	// Other lists additional sources the kompile edge depends on.
	Other []string
	// Directory overrides the kompile output directory. It must be the
	// default or a path under the build directory.
	Directory string
	// RunnerScript is the script the test and proof stages invoke.
	RunnerScript string
	// Flags are extra kompile flags.
	Flags string
	// KrunFlags are appended to every krun invocation for this definition.
	KrunFlags string
	// KproveFlags are appended to every kprove invocation for this definition.
	KproveFlags string
	// Env is a prefix command wrapping toolchain invocations, e.g. a sandbox.
	Env string
}

// Definition is the compiled artifact for one named K definition, plus the
// parameterized rule factories for the pipelines derived from it. It is
// immutable after construction; every rule factory hands out a fresh
// functional copy.
type Definition struct {
	proj         *Project
	alias        string
	backend      domain.Backend
	directory    string
	kompiledDir  string
	target       *Target
	runnerScript string
	krunFlags    string
	kproveFlags  string
	env          string
}

// Definition kompiles main for the given backend, aliases the artifact under
// alias, and registers the resulting definition for dispatch. The first
// registered definition is the dispatch default.
func (p *Project) Definition(alias string, backend domain.Backend, main string, cfg DefinitionConfig) (*Definition, error) {
	if _, exists := p.defs[alias]; exists {
		return nil, zerr.With(domain.ErrAliasConflict, "definition", alias)
	}

	directory := cfg.Directory
	if directory == "" {
		directory = p.layout.BuildPath("defn", alias)
	}
	base := strings.TrimSuffix(filepath.Base(main), filepath.Ext(main))
	kompiledDir := filepath.Join(directory, base+"-kompiled")

	kompile, err := p.Rule("kompile", "kompile: $directory $in",
		`$env "kompile" --backend "$backend" $flags --directory "$directory" $in`)
	if err != nil {
		return nil, err
	}
	kompile = kompile.
		WithOutput(filepath.Join(kompiledDir, backend.KompiledOutput())).
		WithImplicits(cfg.Other...).
		WithVar("backend", backend.String()).
		WithVar("directory", directory).
		WithVar("env", cfg.Env).
		WithVar("flags", "-I "+directory+" "+cfg.Flags)

	if !p.layout.UsesSystemK() {
		buildK, err := p.BuildK(backend)
		if err != nil {
			return nil, err
		}
		kompile = kompile.WithImplicits(buildK.Path())
	}

	target, err := p.Source(main).Then(kompile)
	if err != nil {
		return nil, err
	}
	if _, err := target.Alias(alias); err != nil {
		return nil, err
	}

	d := &Definition{
		proj:         p,
		alias:        alias,
		backend:      backend,
		directory:    directory,
		kompiledDir:  kompiledDir,
		target:       target,
		runnerScript: cfg.RunnerScript,
		krunFlags:    cfg.KrunFlags,
		kproveFlags:  cfg.KproveFlags,
		env:          cfg.Env,
	}
	p.defs[alias] = d
	p.defOrder = append(p.defOrder, d)
	if p.defaultDef == "" {
		p.defaultDef = alias
	}
	return d, nil
}

// Definitions returns the registered definitions in registration order.
func (p *Project) Definitions() []*Definition {
	return append([]*Definition(nil), p.defOrder...)
}

// SetDefaultDefinition changes which definition a dispatch without
// --definition resolves to.
func (p *Project) SetDefaultDefinition(alias string) error {
	if _, ok := p.defs[alias]; !ok {
		return zerr.With(domain.ErrUnknownDefinition, "definition", alias)
	}
	p.defaultDef = alias
	return nil
}

// LookupDefinition resolves an alias, or the default definition when the
// alias is empty.
func (p *Project) LookupDefinition(alias string) (*Definition, error) {
	if len(p.defOrder) == 0 {
		return nil, domain.ErrNoDefinitions
	}
	if alias == "" {
		alias = p.defaultDef
	}
	d, ok := p.defs[alias]
	if !ok {
		return nil, zerr.With(
			zerr.With(domain.ErrUnknownDefinition, "definition", alias),
			"registered", strings.Join(p.DefinitionAliases(), ", "))
	}
	return d, nil
}

// DefinitionAliases returns the registered aliases in registration order.
func (p *Project) DefinitionAliases() []string {
	aliases := make([]string, len(p.defOrder))
	for i, d := range p.defOrder {
		aliases[i] = d.alias
	}
	return aliases
}

// Alias returns the definition's name.
func (d *Definition) Alias() string { return d.alias }

// Backend returns the definition's compilation backend.
func (d *Definition) Backend() domain.Backend { return d.backend }

// Target returns the compiled artifact target.
func (d *Definition) Target() *Target { return d.target }

// KrunFlags returns the definition's krun flags.
func (d *Definition) KrunFlags() string { return d.krunFlags }

// KproveFlags returns the definition's kprove flags.
func (d *Definition) KproveFlags() string { return d.kproveFlags }

// Directory joins paths under the definition's kompile directory.
func (d *Definition) Directory(paths ...string) string {
	return filepath.Join(append([]string{d.directory}, paths...)...)
}

// KompiledDir joins paths under the kompiled output directory.
func (d *Definition) KompiledDir(paths ...string) string {
	return filepath.Join(append([]string{d.kompiledDir}, paths...)...)
}

// SuiteConfig parameterizes a batch of test or proof chains.
type SuiteConfig struct {
	// Inputs are the programs (or specifications) to fan out over.
	Inputs []string
	// Expected overrides the expected-output path for every input. For tests
	// the default is "<input>.expected" per input; for proofs it is the
	// shared prove baseline.
	Expected string
	// ImplicitInputs are extra dependencies of each execute stage.
	ImplicitInputs []string
	// Alias groups the chain heads under a phony name when non-empty.
	Alias string
	// MarkDefault adds every chain head to the default-target set.
	MarkDefault bool
	// Flags are passed to the runner script.
	Flags string
}

// Tests chains each input through the runner script's run stage and a diff
// check against its expected output. The chains are independent; each
// returned target is the check stage of one input.
func (d *Definition) Tests(cfg SuiteConfig) ([]*Target, error) {
	return d.suite(ModeRun, cfg, func(input string) string {
		if cfg.Expected != "" {
			return cfg.Expected
		}
		return input + ".expected"
	})
}

// Proofs chains each specification through the runner script's prove stage
// and a diff check against a shared baseline.
func (d *Definition) Proofs(cfg SuiteConfig) ([]*Target, error) {
	return d.suite(ModeProve, cfg, func(string) string {
		if cfg.Expected != "" {
			return cfg.Expected
		}
		return d.proj.proveExpected
	})
}

func (d *Definition) suite(mode Mode, cfg SuiteConfig, expected func(input string) string) ([]*Target, error) {
	targets := make([]*Target, 0, len(cfg.Inputs))
	for _, input := range cfg.Inputs {
		runner, err := d.RunnerScript(mode, cfg.Flags)
		if err != nil {
			return nil, err
		}
		staged, err := d.proj.Source(input).Then(runner.WithImplicits(cfg.ImplicitInputs...))
		if err != nil {
			return nil, err
		}
		check, err := d.proj.Check(expected(input))
		if err != nil {
			return nil, err
		}
		checked, err := staged.Then(check)
		if err != nil {
			return nil, err
		}
		if cfg.MarkDefault {
			checked.Default()
		}
		targets = append(targets, checked)
	}
	if cfg.Alias != "" {
		if _, err := d.proj.Alias(cfg.Alias, targets...); err != nil {
			return nil, err
		}
	}
	return targets, nil
}

// RunnerScript returns the execute-stage rule for one mode. The rule is
// scoped to this definition because the output extension is tied to the rule
// rather than the edge; a failed run still dumps its captured output before
// propagating the failure.
func (d *Definition) RunnerScript(mode Mode, flags string) (domain.Rule, error) {
	name := "runner-script-" + d.alias + "-" + string(mode)
	rule, err := d.proj.Rule(name,
		string(mode)+": "+d.alias+" $in",
		d.runnerScript+" "+string(mode)+` --definition "$definition" "$in" $flags > "$out" || (cat $out ; false)`)
	if err != nil {
		return domain.Rule{}, err
	}
	return rule.
		WithExt(d.alias + "-" + string(mode)).
		WithVar("definition", d.alias).
		WithVar("flags", flags).
		WithImplicits(d.target.Path()), nil
}

// Krun returns the execute-stage rule running krun directly.
func (d *Definition) Krun(extraFlags string) (domain.Rule, error) {
	rule, err := d.proj.Rule("krun", "krun: $in ($directory)",
		`$env "krun" $flags --directory $directory $in > $out || (cat $out ; false)`)
	if err != nil {
		return domain.Rule{}, err
	}
	return rule.
		WithExt(d.alias+"-krun").
		WithVar("directory", d.directory).
		WithVar("flags", strings.TrimSpace(d.krunFlags+" "+extraFlags)).
		WithVar("env", d.env).
		WithImplicits(d.target.Path()), nil
}

// Kast returns the rule parsing an input against the definition.
func (d *Definition) Kast() (domain.Rule, error) {
	rule, err := d.proj.Rule("kast", "kast: $in ($directory)",
		`$env "kast" $flags --directory "$directory" "$in" > "$out" || (cat $out ; false)`)
	if err != nil {
		return domain.Rule{}, err
	}
	return rule.
		WithExt("kast").
		WithVar("directory", d.directory).
		WithVar("env", d.env).
		WithVar("flags", "").
		WithImplicits(d.target.Path()), nil
}

// KProve returns the rule checking a specification against the definition.
// kprove prints errors to stdout, so the command cats its output after a
// failure.
func (d *Definition) KProve() (domain.Rule, error) {
	rule, err := d.proj.Rule("kprove", "kprove: $in ($directory)",
		`$env "kprove" $flags --directory "$directory" "$in" > "$out" || (cat "$out"; false)`)
	if err != nil {
		return domain.Rule{}, err
	}
	return rule.
		WithExt(d.alias+"-kprove").
		WithVar("directory", d.directory).
		WithVar("env", d.env).
		WithVar("flags", strings.TrimSpace(d.kproveFlags)).
		WithImplicits(d.target.Path()), nil
}
