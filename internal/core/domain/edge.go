package domain

import (
	"go.trai.ch/zerr"
)

// Edge is one declared production of output files from input files via a
// named rule with bound variables. It is a snapshot taken when a rule is
// applied to a target; later customization of the rule does not affect it.
type Edge struct {
	Rule            string
	Inputs          []string
	Outputs         []string
	Implicits       []string
	ImplicitOutputs []string
	Pool            string
	Variables       map[string]string
}

// Dependencies returns every path that must exist before the edge runs.
func (e Edge) Dependencies() []string {
	deps := make([]string, 0, len(e.Inputs)+len(e.Implicits))
	deps = append(deps, e.Inputs...)
	deps = append(deps, e.Implicits...)
	return deps
}

// ValidateAcyclic checks that the edges form a DAG. Each output node depends
// on the edge's inputs and implicit inputs; paths with no producing edge are
// sources. The external executor relies on the emitted manifest being
// cycle-free, so a cycle here is fatal.
func ValidateAcyclic(edges []Edge) error {
	producers := make(map[string]Edge)
	for _, e := range edges {
		for _, out := range e.Outputs {
			producers[out] = e
		}
		for _, out := range e.ImplicitOutputs {
			producers[out] = e
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(producers))
	var path []string

	var visit func(node string) error
	visit = func(node string) error {
		state[node] = visiting
		path = append(path, node)

		if e, ok := producers[node]; ok {
			for _, dep := range e.Dependencies() {
				switch state[dep] {
				case visiting:
					return cycleError(path, dep)
				case unvisited:
					if err := visit(dep); err != nil {
						return err
					}
				}
			}
		}

		state[node] = done
		path = path[:len(path)-1]
		return nil
	}

	for _, e := range edges {
		for _, out := range e.Outputs {
			if state[out] == unvisited {
				if err := visit(out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// cycleError reports the cycle portion of the current visit path.
func cycleError(path []string, dep string) error {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}
	cycle := ""
	for _, node := range path[start:] {
		cycle += node + " -> "
	}
	cycle += dep
	return zerr.With(ErrCycleDetected, "cycle", cycle)
}
