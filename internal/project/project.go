// Package project owns the build graph under construction: the rule
// registry, the accumulated build edges, aliases and defaults, the singleton
// infrastructure targets, and the definition pipelines layered on top. A
// Project is finalized exactly once by Flush, which validates the graph and
// emits the ninja manifest.
//
// Graph construction is single-threaded by contract. Nothing here locks;
// callers building one project from multiple goroutines must synchronize
// externally.
package project

import (
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"github.com/nishantjr/kninja/internal/core/domain"
	"github.com/nishantjr/kninja/internal/ninja"
)

// ErrRuleNotRegistered is returned when an edge references a rule that was
// never registered with the project.
var ErrRuleNotRegistered = zerr.New("rule not registered")

type globalVar struct {
	name  string
	value string
}

type aliasDecl struct {
	name  string
	paths []string
}

// Project accumulates rules, edges, aliases and defaults and writes them to
// a ninja manifest on Flush.
type Project struct {
	out    io.Writer
	layout domain.Layout

	globals     []globalVar
	globalNames map[string]bool

	ruleOrder []string
	rules     map[string]registeredRule

	edges []domain.Edge

	aliasOrder []string
	aliases    map[string]aliasDecl

	defaultOrder []string
	defaultSet   map[string]bool

	singletons map[string]*Target

	defOrder   []*Definition
	defs       map[string]*Definition
	defaultDef string

	proveExpected string
	flushed       bool
}

type registeredRule struct {
	rule   domain.Rule
	digest uint64
}

// Option customizes project construction.
type Option func(*Project)

// WithLayout overrides the default directory layout.
func WithLayout(l domain.Layout) Option {
	return func(p *Project) { p.layout = l }
}

// WithProveExpected overrides the shared baseline for proof check stages.
func WithProveExpected(path string) Option {
	return func(p *Project) { p.proveExpected = path }
}

// DetectLayout resolves the project layout. With useSystemK the K release is
// located relative to a kompile binary found on PATH; otherwise K is built
// from the ext submodule.
func DetectLayout(useSystemK bool) (domain.Layout, error) {
	if !useSystemK {
		return domain.NewLayout(domain.BuildDirName, domain.ExtDirName), nil
	}
	kompile, err := exec.LookPath("kompile")
	if err != nil {
		return domain.Layout{}, zerr.Wrap(err, domain.ErrKompileNotFound.Error())
	}
	release := filepath.Dir(filepath.Dir(kompile))
	return domain.NewSystemLayout(domain.BuildDirName, domain.ExtDirName, release), nil
}

// New creates a project writing its manifest to out on Flush. The manifest
// preamble (global variables, the clean rule, and the dummy default alias
// that keeps a bare ninja invocation from running everything) is declared
// immediately.
func New(out io.Writer, opts ...Option) (*Project, error) {
	p := &Project{
		out:           out,
		layout:        domain.NewLayout(domain.BuildDirName, domain.ExtDirName),
		globalNames:   map[string]bool{"in": true, "out": true},
		rules:         make(map[string]registeredRule),
		aliases:       make(map[string]aliasDecl),
		defaultSet:    make(map[string]bool),
		singletons:    make(map[string]*Target),
		defs:          make(map[string]*Definition),
		proveExpected: domain.ProveExpectedFileName,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.global("ninja_required_version", "1.7")
	p.global("builddir", p.layout.BuildDir())
	p.global("k_repository", p.layout.KRepoPath())

	clean, err := p.Rule("clean", "cleaning",
		`ninja -t clean ; rm -rf "$builddir" ; git submodule update --init --recursive`)
	if err != nil {
		return nil, err
	}
	if _, err := p.DotTarget().Then(clean.WithOutput("clean")); err != nil {
		return nil, err
	}

	dummy, err := p.Alias("dummy")
	if err != nil {
		return nil, err
	}
	dummy.Default()

	return p, nil
}

// Layout returns the project's directory conventions.
func (p *Project) Layout() domain.Layout { return p.layout }

func (p *Project) global(name, value string) {
	p.globals = append(p.globals, globalVar{name: name, value: value})
	p.globalNames[name] = true
}

// Rule registers a rule declaration. Registration is idempotent: the same
// name with the same body returns the stored rule and yields exactly one
// manifest declaration. Re-registering a name with a different body is a
// configuration error rather than a silent first-writer-wins.
func (p *Project) Rule(name, description, command string) (domain.Rule, error) {
	if p.flushed {
		return domain.Rule{}, zerr.With(domain.ErrManifestClosed, "rule", name)
	}
	digest := ruleDigest(description, command)
	if existing, ok := p.rules[name]; ok {
		if existing.digest != digest {
			return domain.Rule{}, zerr.With(domain.ErrRuleConflict, "rule", name)
		}
		return existing.rule, nil
	}
	rule := domain.NewRule(name, description, command)
	p.rules[name] = registeredRule{rule: rule, digest: digest}
	p.ruleOrder = append(p.ruleOrder, name)
	return rule, nil
}

func ruleDigest(description, command string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(description)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(command)
	return d.Sum64()
}

// Source returns a target for a source path, relative to the project root.
func (p *Project) Source(path string) *Target {
	return &Target{proj: p, path: path}
}

// DotTarget returns the placeholder target for edges with no real input.
func (p *Project) DotTarget() *Target {
	return &Target{proj: p}
}

// then snapshots the rule into a build edge from source and returns the
// successor target. The rule must be registered; its command must not
// reference variables that are bound neither on the edge nor globally.
func (p *Project) then(source *Target, rule domain.Rule) (*Target, error) {
	if p.flushed {
		return nil, zerr.With(domain.ErrManifestClosed, "rule", rule.Name())
	}
	if _, ok := p.rules[rule.Name()]; !ok {
		return nil, zerr.With(ErrRuleNotRegistered, "rule", rule.Name())
	}

	output, err := p.resolveOutput(rule, source.path)
	if err != nil {
		return nil, err
	}
	if err := p.checkVarCoverage(rule); err != nil {
		return nil, err
	}

	var inputs []string
	if source.path != "" {
		inputs = []string{source.path}
	}
	p.edges = append(p.edges, rule.Snapshot(inputs, []string{output}))
	return &Target{proj: p, path: output}, nil
}

// resolveOutput applies the rule's output convention. Extension-derived
// paths are placed under the build directory; explicit outputs are taken
// verbatim.
func (p *Project) resolveOutput(rule domain.Rule, source string) (string, error) {
	output, err := rule.OutputPath(source)
	if err != nil {
		return "", err
	}
	if rule.Output() != "" {
		return output, nil
	}
	placed, err := p.layout.PlaceInBuildDir(output)
	if err != nil {
		return "", zerr.With(err, "rule", rule.Name())
	}
	return placed, nil
}

// checkVarCoverage verifies every variable the command references has a
// binding on the edge or globally. An unbound variable would silently expand
// to the empty string in the manifest.
func (p *Project) checkVarCoverage(rule domain.Rule) error {
	vars := rule.Variables()
	for _, name := range domain.CommandVars(rule.Command()) {
		if p.globalNames[name] {
			continue
		}
		if _, ok := vars[name]; ok {
			continue
		}
		return zerr.With(zerr.With(domain.ErrUnboundVariable, "rule", rule.Name()), "variable", name)
	}
	return nil
}

// Alias declares a phony node grouping the given targets under a symbolic
// name. Repeated identical registration is idempotent; re-registering the
// name over a different target set is a configuration error.
func (p *Project) Alias(name string, targets ...*Target) (*Target, error) {
	if p.flushed {
		return nil, zerr.With(domain.ErrManifestClosed, "alias", name)
	}
	paths := targetPaths(targets)
	if existing, ok := p.aliases[name]; ok {
		if strings.Join(existing.paths, "\x00") != strings.Join(paths, "\x00") {
			return nil, zerr.With(domain.ErrAliasConflict, "alias", name)
		}
		return &Target{proj: p, path: name}, nil
	}
	p.aliases[name] = aliasDecl{name: name, paths: paths}
	p.aliasOrder = append(p.aliasOrder, name)
	return &Target{proj: p, path: name}, nil
}

// Default adds the given targets to the default-target set. Duplicates are
// harmless.
func (p *Project) Default(targets ...*Target) {
	for _, path := range targetPaths(targets) {
		if !p.defaultSet[path] {
			p.defaultSet[path] = true
			p.defaultOrder = append(p.defaultOrder, path)
		}
	}
}

// Singleton memoizes infrastructure targets by key: the factory runs exactly
// once per key, and every caller shares the resulting target.
func (p *Project) Singleton(key string, factory func() (*Target, error)) (*Target, error) {
	if t, ok := p.singletons[key]; ok {
		return t, nil
	}
	t, err := factory()
	if err != nil {
		return nil, err
	}
	p.singletons[key] = t
	return t, nil
}

// SubmoduleInit returns the shared target initializing the given submodule,
// creating its build edge on first use.
func (p *Project) SubmoduleInit(repo, flags string) (*Target, error) {
	return p.Singleton("submodule-init:"+repo, func() (*Target, error) {
		rule, err := p.Rule("git-submodule-init", "",
			`git submodule update $flags --init "$path" && touch "$out"`)
		if err != nil {
			return nil, err
		}
		stamp := p.layout.BuildPath(filepath.Base(repo) + ".init")
		return p.DotTarget().Then(rule.
			WithOutput(stamp).
			WithVar("path", repo).
			WithVar("flags", flags))
	})
}

// InitKSubmodule returns the shared target checking out the K framework
// submodule.
func (p *Project) InitKSubmodule() (*Target, error) {
	return p.SubmoduleInit(p.layout.KRepoPath(), "--recursive")
}

// BuildK returns the shared target building the K framework for one backend.
// N definitions on the same backend share exactly one build edge.
func (p *Project) BuildK(backend domain.Backend) (*Target, error) {
	return p.Singleton("build-k:"+backend.String(), func() (*Target, error) {
		initK, err := p.InitKSubmodule()
		if err != nil {
			return nil, err
		}
		rule, err := p.Rule("build-k", "build K: $backend",
			"(  cd $k_repository && mvn package -DskipTests $flags ) && touch $out")
		if err != nil {
			return nil, err
		}
		return p.DotTarget().Then(rule.
			WithOutput(p.layout.BuildPath("kbackend-" + backend.String())).
			WithPool("console").
			WithImplicits(initK.Path()).
			WithVar("flags", backend.BuildFlags()).
			WithVar("backend", backend.String()))
	})
}

// Check returns the verify-stage rule: a structural diff between the edge's
// input and the expected file. The expected file is an implicit input so a
// changed expectation invalidates cached results downstream.
func (p *Project) Check(expected string) (domain.Rule, error) {
	rule, err := p.Rule("check-test-result", "diff: $in",
		`git diff --color=always --no-index $flags "$expected" "$in"`)
	if err != nil {
		return domain.Rule{}, err
	}
	return rule.
		WithExt("test").
		WithVar("expected", expected).
		WithVar("flags", "").
		WithImplicits(expected), nil
}

// Suite fans a runner over inputs and groups the results under an alias.
func (p *Project) Suite(name string, inputs []string, runner func(*Target) (*Target, error), markDefault bool) (*Target, error) {
	targets := make([]*Target, 0, len(inputs))
	for _, input := range inputs {
		t, err := runner(p.Source(input))
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	alias, err := p.Alias(name, targets...)
	if err != nil {
		return nil, err
	}
	if markDefault {
		p.Default(alias)
	}
	return alias, nil
}

// Flush validates the accumulated graph and writes the manifest: global
// variables, rule declarations, build edges, phony aliases, then defaults.
// It must be called at most once.
func (p *Project) Flush() error {
	if p.flushed {
		return domain.ErrManifestClosed
	}

	if err := domain.ValidateAcyclic(p.allEdges()); err != nil {
		return err
	}

	w := ninja.NewWriter(p.out)
	w.Comment("This is a generated file")
	w.Newline()
	for _, g := range p.globals {
		w.Variable(g.name, g.value, 0)
	}
	w.Newline()
	for _, name := range p.ruleOrder {
		r := p.rules[name].rule
		w.Rule(r.Name(), r.Command(), r.Description())
		w.Newline()
	}
	for _, e := range p.edges {
		w.Build(e.Outputs, e.Rule, e.Inputs, e.Implicits, e.ImplicitOutputs, e.Pool, e.Variables)
	}
	for _, name := range p.aliasOrder {
		a := p.aliases[name]
		w.Build([]string{a.name}, "phony", a.paths, nil, nil, "", nil)
	}
	if len(p.defaultOrder) > 0 {
		w.Newline()
		w.Default(p.defaultOrder)
	}

	p.flushed = true
	return w.Flush()
}

// allEdges returns the build edges plus the phony alias edges, for
// validation.
func (p *Project) allEdges() []domain.Edge {
	edges := make([]domain.Edge, 0, len(p.edges)+len(p.aliasOrder))
	edges = append(edges, p.edges...)
	for _, name := range p.aliasOrder {
		a := p.aliases[name]
		edges = append(edges, domain.Edge{
			Rule:    "phony",
			Inputs:  a.paths,
			Outputs: []string{a.name},
		})
	}
	return edges
}

// Edges returns a snapshot of the recorded build edges, for inspection and
// tests.
func (p *Project) Edges() []domain.Edge {
	return append([]domain.Edge(nil), p.edges...)
}

func targetPaths(targets []*Target) []string {
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		if t == nil || t.path == "" {
			continue
		}
		paths = append(paths, t.path)
	}
	return paths
}
