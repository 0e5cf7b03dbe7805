package project

import (
	"io"

	"github.com/nishantjr/kninja/internal/core/domain"
)

// FromSpec builds a full project from a parsed project description:
// definitions in declaration order, then each definition's test and proof
// suites. The manifest is not written until Flush.
func FromSpec(out io.Writer, spec *domain.ProjectSpec, opts ...Option) (*Project, error) {
	p, err := New(out, opts...)
	if err != nil {
		return nil, err
	}

	for _, ds := range spec.Definitions {
		d, err := p.Definition(ds.Alias, ds.Backend, ds.Main, DefinitionConfig{
			Other:        ds.Other,
			Directory:    ds.Directory,
			RunnerScript: ds.RunnerScript,
			Flags:        ds.Flags,
			KrunFlags:    ds.KrunFlags,
			KproveFlags:  ds.KproveFlags,
			Env:          ds.Env,
		})
		if err != nil {
			return nil, err
		}

		for _, s := range ds.Tests {
			if _, err := d.Tests(suiteConfig(s)); err != nil {
				return nil, err
			}
		}
		for _, s := range ds.Proofs {
			if _, err := d.Proofs(suiteConfig(s)); err != nil {
				return nil, err
			}
		}
	}

	if spec.Default != "" {
		if err := p.SetDefaultDefinition(spec.Default); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func suiteConfig(s domain.SuiteSpec) SuiteConfig {
	return SuiteConfig{
		Inputs:         s.Inputs,
		Expected:       s.Expected,
		ImplicitInputs: s.ImplicitInputs,
		Alias:          s.Alias,
		MarkDefault:    s.MarkDefault,
		Flags:          s.Flags,
	}
}
