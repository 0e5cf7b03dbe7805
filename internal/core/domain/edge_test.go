package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nishantjr/kninja/internal/core/domain"

	"go.trai.ch/zerr"
)

func TestValidateAcyclic_Chain(t *testing.T) {
	edges := []domain.Edge{
		{Rule: "kompile", Inputs: []string{"imp.k"}, Outputs: []string{".build/defn/imp-kompiled/interpreter"}},
		{Rule: "krun", Inputs: []string{"sum.imp"}, Implicits: []string{".build/defn/imp-kompiled/interpreter"}, Outputs: []string{".build/sum.imp.krun"}},
		{Rule: "check-test-result", Inputs: []string{".build/sum.imp.krun"}, Outputs: []string{".build/sum.imp.krun.test"}},
	}
	if err := domain.ValidateAcyclic(edges); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAcyclic_Cycle(t *testing.T) {
	edges := []domain.Edge{
		{Rule: "a", Inputs: []string{"b.out"}, Outputs: []string{"a.out"}},
		{Rule: "b", Inputs: []string{"a.out"}, Outputs: []string{"b.out"}},
	}

	err := domain.ValidateAcyclic(edges)
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	cycle, _ := zErr.Metadata()["cycle"].(string)
	if !strings.Contains(cycle, "->") {
		t.Errorf("expected cycle path in metadata, got %q", cycle)
	}
}

func TestValidateAcyclic_ImplicitCycle(t *testing.T) {
	edges := []domain.Edge{
		{Rule: "a", Inputs: []string{"src"}, Implicits: []string{"b.out"}, Outputs: []string{"a.out"}},
		{Rule: "b", Inputs: []string{"src"}, Implicits: []string{"a.out"}, Outputs: []string{"b.out"}},
	}
	if err := domain.ValidateAcyclic(edges); !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestValidateAcyclic_SharedImplicitIsNotACycle(t *testing.T) {
	// Two consumers of one singleton target must validate cleanly.
	edges := []domain.Edge{
		{Rule: "build-k", Outputs: []string{".build/kbackend-llvm"}},
		{Rule: "kompile", Inputs: []string{"a.k"}, Implicits: []string{".build/kbackend-llvm"}, Outputs: []string{"a/interpreter"}},
		{Rule: "kompile", Inputs: []string{"b.k"}, Implicits: []string{".build/kbackend-llvm"}, Outputs: []string{"b/interpreter"}},
	}
	if err := domain.ValidateAcyclic(edges); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
