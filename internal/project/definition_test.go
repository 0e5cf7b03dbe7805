package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"github.com/nishantjr/kninja/internal/core/domain"
	"github.com/nishantjr/kninja/internal/project"
)

func kompileEdges(p *project.Project) []domain.Edge {
	var edges []domain.Edge
	for _, e := range p.Edges() {
		if e.Rule == "kompile" {
			edges = append(edges, e)
		}
	}
	return edges
}

func TestDefinition_KompileEdge(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{
		Other: []string{"imp-syntax.md"},
		Flags: "--emit-json",
	})
	require.NoError(t, err)

	assert.Equal(t, ".build/defn/imp/imp-kompiled/interpreter", d.Target().Path())

	edges := kompileEdges(p)
	require.Len(t, edges, 1)
	e := edges[0]
	assert.Equal(t, []string{"imp.md"}, e.Inputs)
	assert.Equal(t, "llvm", e.Variables["backend"])
	assert.Equal(t, ".build/defn/imp", e.Variables["directory"])
	assert.Equal(t, "-I .build/defn/imp --emit-json", e.Variables["flags"])
	assert.Contains(t, e.Implicits, "imp-syntax.md")
	assert.Contains(t, e.Implicits, ".build/kbackend-llvm")
}

func TestDefinition_BackendArtifacts(t *testing.T) {
	p, _ := newProject(t)

	java, err := p.Definition("imp-java", domain.BackendJava, "imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	assert.Equal(t, ".build/defn/imp-java/imp-kompiled/timestamp", java.Target().Path())

	haskell, err := p.Definition("imp-haskell", domain.BackendHaskell, "imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	assert.Equal(t, ".build/defn/imp-haskell/imp-kompiled/definition.kore", haskell.Target().Path())
}

func TestDefinition_DuplicateAliasFails(t *testing.T) {
	p, _ := newProject(t)

	_, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	_, err = p.Definition("imp", domain.BackendJava, "imp.md", project.DefinitionConfig{})
	assert.ErrorIs(t, err, domain.ErrAliasConflict)
}

func TestDefinition_SharedBackendBuild(t *testing.T) {
	p, _ := newProject(t)

	_, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	_, err = p.Definition("fun", domain.BackendLLVM, "fun.md", project.DefinitionConfig{})
	require.NoError(t, err)

	buildK := 0
	for _, e := range p.Edges() {
		if e.Rule == "build-k" {
			buildK++
		}
	}
	assert.Equal(t, 1, buildK, "definitions on one backend share one toolchain build")
}

func TestLookupDefinition(t *testing.T) {
	p, _ := newProject(t)

	_, err := p.LookupDefinition("")
	assert.ErrorIs(t, err, domain.ErrNoDefinitions)

	imp, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	fun, err := p.Definition("fun", domain.BackendHaskell, "fun.md", project.DefinitionConfig{})
	require.NoError(t, err)

	got, err := p.LookupDefinition("")
	require.NoError(t, err)
	assert.Same(t, imp, got, "first registered definition is the default")

	got, err = p.LookupDefinition("fun")
	require.NoError(t, err)
	assert.Same(t, fun, got)

	_, err = p.LookupDefinition("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownDefinition)

	// The enumerated choices are part of the error, so a typo is diagnosable
	// without opening the config.
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "imp, fun", zErr.Metadata()["registered"])

	require.NoError(t, p.SetDefaultDefinition("fun"))
	got, err = p.LookupDefinition("")
	require.NoError(t, err)
	assert.Same(t, fun, got)

	assert.ErrorIs(t, p.SetDefaultDefinition("nope"), domain.ErrUnknownDefinition)
	assert.Equal(t, []string{"imp", "fun"}, p.DefinitionAliases())
}

func TestDefinition_Tests(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{
		RunnerScript: "./run-tests.sh",
	})
	require.NoError(t, err)

	heads, err := d.Tests(project.SuiteConfig{
		Inputs: []string{"tests/sum.imp", "tests/collatz.imp"},
		Alias:  "imp-tests",
	})
	require.NoError(t, err)
	require.Len(t, heads, 2)
	assert.Equal(t, ".build/tests/sum.imp.imp-run.test", heads[0].Path())
	assert.Equal(t, ".build/tests/collatz.imp.imp-run.test", heads[1].Path())

	var run, check []domain.Edge
	for _, e := range p.Edges() {
		switch e.Rule {
		case "runner-script-imp-run":
			run = append(run, e)
		case "check-test-result":
			check = append(check, e)
		}
	}
	require.Len(t, run, 2)
	require.Len(t, check, 2)

	// Each run stage depends on the compiled definition; each check stage on
	// its own expected file.
	assert.Contains(t, run[0].Implicits, d.Target().Path())
	assert.Equal(t, "imp", run[0].Variables["definition"])
	assert.Equal(t, "tests/sum.imp.expected", check[0].Variables["expected"])
	assert.Contains(t, check[0].Implicits, "tests/sum.imp.expected")
	assert.Equal(t, "tests/collatz.imp.expected", check[1].Variables["expected"])
}

func TestDefinition_TestsSharedExpected(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{
		RunnerScript: "./run-tests.sh",
	})
	require.NoError(t, err)

	_, err = d.Tests(project.SuiteConfig{
		Inputs:   []string{"tests/a.imp", "tests/b.imp"},
		Expected: "tests/shared.expected",
	})
	require.NoError(t, err)

	for _, e := range p.Edges() {
		if e.Rule == "check-test-result" {
			assert.Equal(t, "tests/shared.expected", e.Variables["expected"])
		}
	}
}

func TestDefinition_ProofsDefaultBaseline(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendHaskell, "imp.md", project.DefinitionConfig{
		RunnerScript: "./run-tests.sh",
	})
	require.NoError(t, err)

	heads, err := d.Proofs(project.SuiteConfig{
		Inputs: []string{"proofs/sum-spec.k"},
	})
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.Equal(t, ".build/proofs/sum-spec.k.imp-prove.test", heads[0].Path())

	for _, e := range p.Edges() {
		if e.Rule == "check-test-result" {
			assert.Equal(t, domain.ProveExpectedFileName, e.Variables["expected"])
		}
	}
}

func TestDefinition_SuiteImplicitInputs(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{
		RunnerScript: "./run-tests.sh",
	})
	require.NoError(t, err)

	_, err = d.Tests(project.SuiteConfig{
		Inputs:         []string{"tests/io.imp"},
		ImplicitInputs: []string{"tests/io.imp.input"},
	})
	require.NoError(t, err)

	for _, e := range p.Edges() {
		if e.Rule == "runner-script-imp-run" {
			assert.Contains(t, e.Implicits, "tests/io.imp.input")
		}
	}
}

func TestDefinition_Krun(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "imp.md", project.DefinitionConfig{
		KrunFlags: "--output none",
	})
	require.NoError(t, err)

	krun, err := d.Krun("--depth 10")
	require.NoError(t, err)
	out, err := p.Source("tests/sum.imp").Then(krun)
	require.NoError(t, err)
	assert.Equal(t, ".build/tests/sum.imp.imp-krun", out.Path())

	edges := p.Edges()
	last := edges[len(edges)-1]
	assert.Equal(t, "--output none --depth 10", last.Variables["flags"])
	assert.Contains(t, last.Implicits, d.Target().Path())
}

func TestDefinition_KastAndKProve(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendHaskell, "imp.md", project.DefinitionConfig{
		KproveFlags: "--smt none",
	})
	require.NoError(t, err)

	kast, err := d.Kast()
	require.NoError(t, err)
	parsed, err := p.Source("tests/sum.imp").Then(kast)
	require.NoError(t, err)
	assert.Equal(t, ".build/tests/sum.imp.kast", parsed.Path())

	kprove, err := d.KProve()
	require.NoError(t, err)
	proved, err := p.Source("proofs/sum-spec.k").Then(kprove)
	require.NoError(t, err)
	assert.Equal(t, ".build/proofs/sum-spec.k.imp-kprove", proved.Path())

	edges := p.Edges()
	last := edges[len(edges)-1]
	assert.Equal(t, "--smt none", last.Variables["flags"])
}

func TestDefinition_DirectoryHelpers(t *testing.T) {
	p, _ := newProject(t)

	d, err := p.Definition("imp", domain.BackendLLVM, "semantics/imp.md", project.DefinitionConfig{})
	require.NoError(t, err)
	assert.Equal(t, ".build/defn/imp/macros.kore", d.Directory("macros.kore"))
	assert.Equal(t, ".build/defn/imp/imp-kompiled/compiled.bin", d.KompiledDir("compiled.bin"))
	assert.Equal(t, domain.BackendLLVM, d.Backend())
	assert.Equal(t, "imp", d.Alias())
}
