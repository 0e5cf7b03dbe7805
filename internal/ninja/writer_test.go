package ninja_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishantjr/kninja/internal/ninja"
)

func TestWriter_GoldenManifest(t *testing.T) {
	var buf bytes.Buffer
	w := ninja.NewWriter(&buf)

	w.Comment("This is a generated file")
	w.Newline()
	w.Variable("ninja_required_version", "1.7", 0)
	w.Variable("builddir", ".build", 0)
	w.Variable("k_repository", "ext/k", 0)
	w.Newline()
	w.Rule("kompile", `"kompile" --backend "$backend" $in`, "kompile: $in")
	w.Newline()
	w.Rule("kast", `kast "$in" > "$out"`, "")
	w.Newline()
	w.Build([]string{".build/imp-kompiled/interpreter"}, "kompile", []string{"imp.md"},
		[]string{".build/kbackend-llvm"}, nil, "", map[string]string{"backend": "llvm"})
	w.Build([]string{".build/sum 1.imp.kast"}, "kast", []string{"tests/sum 1.imp"},
		nil, nil, "console", nil)
	w.Build([]string{"suite"}, "phony", []string{
		".build/tests/addition-regression-one.imp.imp-run.test",
		".build/tests/addition-regression-two.imp.imp-run.test",
	}, nil, nil, "", nil)
	w.Build([]string{"imp"}, "phony", []string{".build/imp-kompiled/interpreter"}, nil, nil, "", nil)
	w.Newline()
	w.Default([]string{"imp", "suite"})
	require.NoError(t, w.Flush())

	g := goldie.New(t)
	g.Assert(t, "manifest", buf.Bytes())
}

func TestWriter_Manifest(t *testing.T) {
	var buf bytes.Buffer
	w := ninja.NewWriter(&buf)

	w.Comment("This is a generated file")
	w.Newline()
	w.Variable("builddir", ".build", 0)
	w.Newline()
	w.Rule("kast", `kast "$in" > "$out"`, "kast: $in")
	w.Newline()
	w.Build([]string{".build/sum.imp.kast"}, "kast", []string{"sum.imp"},
		[]string{".build/imp-kompiled/timestamp"}, nil, "",
		map[string]string{"directory": ".build/defn", "flags": ""})
	w.Default([]string{".build/sum.imp.kast"})
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "# This is a generated file\n")
	assert.Contains(t, out, "builddir = .build\n")
	assert.Contains(t, out, "rule kast\n")
	assert.Contains(t, out, "  command = kast \"$in\" > \"$out\"\n")
	assert.Contains(t, out, "  description = kast: $in\n")
	assert.Contains(t, out, "build .build/sum.imp.kast: kast sum.imp | .build/imp-kompiled/timestamp\n")
	assert.Contains(t, out, "  directory = .build/defn\n")
	assert.Contains(t, out, "default .build/sum.imp.kast\n")

	// Empty variable values are omitted entirely.
	assert.NotContains(t, out, "flags")
}

func TestWriter_BuildWithPoolAndImplicitOutputs(t *testing.T) {
	var buf bytes.Buffer
	w := ninja.NewWriter(&buf)

	w.Build([]string{".build/kbackend-llvm"}, "build-k", nil, nil,
		[]string{".build/kbackend-llvm.log"}, "console", map[string]string{"backend": "llvm"})
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "build .build/kbackend-llvm | .build/kbackend-llvm.log: build-k\n")
	assert.Contains(t, out, "  pool = console\n")
	assert.Contains(t, out, "  backend = llvm\n")
}

func TestWriter_VariablesAreSorted(t *testing.T) {
	var buf bytes.Buffer
	w := ninja.NewWriter(&buf)

	w.Build([]string{"out"}, "r", []string{"in"}, nil, nil, "",
		map[string]string{"zeta": "1", "alpha": "2", "mid": "3"})
	require.NoError(t, w.Flush())

	out := buf.String()
	alpha := strings.Index(out, "alpha")
	mid := strings.Index(out, "mid")
	zeta := strings.Index(out, "zeta")
	assert.True(t, alpha < mid && mid < zeta, "expected sorted variables, got:\n%s", out)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "a$ b", ninja.EscapePath("a b"))
	assert.Equal(t, "c$:d", ninja.EscapePath("c:d"))
	assert.Equal(t, "$$var", ninja.EscapePath("$var"))
}

func TestWriter_WrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	w := ninja.NewWriter(&buf)

	inputs := []string{
		"tests/a-very-long-test-input-name-one.imp",
		"tests/a-very-long-test-input-name-two.imp",
		"tests/a-very-long-test-input-name-three.imp",
	}
	w.Build([]string{"suite"}, "phony", inputs, nil, nil, "", nil)
	require.NoError(t, w.Flush())

	out := buf.String()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 80, "line too long: %q", line)
	}
	assert.Contains(t, out, " $\n")

	// Unwrapping must restore every input.
	joined := strings.ReplaceAll(out, " $\n", " ")
	for _, in := range inputs {
		assert.Contains(t, joined, in)
	}
}
