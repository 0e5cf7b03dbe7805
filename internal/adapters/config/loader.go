// Package config provides the configuration loader for kninja projects.
package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nishantjr/kninja/internal/core/domain"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a configuration file and returns a validated project spec.
// Suite globs are resolved concurrently, relative to the config file's
// directory; graph construction downstream stays single-threaded.
func (l *Loader) Load(ctx context.Context, path string) (*domain.ProjectSpec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file Kninjafile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	if file.Default != "" {
		if _, ok := file.Definitions[file.Default]; !ok {
			return nil, zerr.With(domain.ErrUnknownDefinition, "definition", file.Default)
		}
	}

	// Deterministic definition order under yaml's unordered map.
	aliases := make([]string, 0, len(file.Definitions))
	for alias := range file.Definitions {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	spec := &domain.ProjectSpec{Default: file.Default}
	g, _ := errgroup.WithContext(ctx)
	root := filepath.Dir(path)

	for _, alias := range aliases {
		dto := file.Definitions[alias]
		ds, err := definitionSpec(alias, dto)
		if err != nil {
			return nil, err
		}
		spec.Definitions = append(spec.Definitions, ds)

		def := &spec.Definitions[len(spec.Definitions)-1]
		queueGlobs(g, root, def.Tests, dto.Tests)
		queueGlobs(g, root, def.Proofs, dto.Proofs)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return spec, nil
}

// queueGlobs schedules one goroutine per globbed suite. Each goroutine owns
// exactly one suite slot, so the fan-out needs no locking.
func queueGlobs(g *errgroup.Group, root string, suites []domain.SuiteSpec, dtos []SuiteDTO) {
	for i := range suites {
		pattern := dtos[i].Glob
		if pattern == "" {
			continue
		}
		suite := &suites[i]
		g.Go(func() error {
			matches, err := filepath.Glob(filepath.Join(root, pattern))
			if err != nil {
				return zerr.With(zerr.Wrap(err, "invalid glob"), "glob", pattern)
			}
			sort.Strings(matches)
			for _, m := range matches {
				rel, err := filepath.Rel(root, m)
				if err != nil {
					return zerr.Wrap(err, "failed to relativize glob match")
				}
				suite.Inputs = append(suite.Inputs, rel)
			}
			return nil
		})
	}
}

func definitionSpec(alias string, dto DefinitionDTO) (domain.DefinitionSpec, error) {
	if dto.Main == "" {
		return domain.DefinitionSpec{}, zerr.With(zerr.New("definition has no main source"), "definition", alias)
	}
	backend, err := domain.ParseBackend(dto.Backend)
	if err != nil {
		return domain.DefinitionSpec{}, zerr.With(err, "definition", alias)
	}
	if dto.RunnerScript == "" && (len(dto.Tests) > 0 || len(dto.Proofs) > 0) {
		return domain.DefinitionSpec{}, zerr.With(zerr.New("suites require a runner script"), "definition", alias)
	}

	return domain.DefinitionSpec{
		Alias:        alias,
		Backend:      backend,
		Main:         dto.Main,
		Other:        dto.Other,
		Directory:    dto.Directory,
		RunnerScript: dto.RunnerScript,
		Flags:        dto.Flags,
		KrunFlags:    dto.KrunFlags,
		KproveFlags:  dto.KproveFlags,
		Env:          dto.Env,
		Tests:        suiteSpecs(dto.Tests),
		Proofs:       suiteSpecs(dto.Proofs),
	}, nil
}

func suiteSpecs(dtos []SuiteDTO) []domain.SuiteSpec {
	specs := make([]domain.SuiteSpec, len(dtos))
	for i, dto := range dtos {
		specs[i] = domain.SuiteSpec{
			Inputs:         slices.Clone(dto.Inputs),
			Alias:          dto.Alias,
			MarkDefault:    dto.Default == nil || *dto.Default,
			Flags:          dto.Flags,
			Expected:       dto.Expected,
			ImplicitInputs: dto.ImplicitInputs,
		}
	}
	return specs
}
