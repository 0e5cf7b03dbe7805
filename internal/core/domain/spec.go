package domain

// ProjectSpec is a parsed, validated project description: the definitions to
// kompile and the test and proof suites derived from each. It is what the
// config loader produces and what the project builder consumes.
type ProjectSpec struct {
	// Default is the alias dispatched to when --definition is omitted. When
	// empty the first definition is the default.
	Default     string
	Definitions []DefinitionSpec
}

// DefinitionSpec describes one named artifact to kompile.
type DefinitionSpec struct {
	Alias        string
	Backend      Backend
	Main         string
	Other        []string
	Directory    string
	RunnerScript string
	Flags        string
	KrunFlags    string
	KproveFlags  string
	Env          string
	Tests        []SuiteSpec
	Proofs       []SuiteSpec
}

// SuiteSpec describes a batch of inputs fanned out into per-input
// run-and-check (or prove-and-check) chains. Inputs are fully resolved; glob
// expansion happens in the loader before the spec reaches the graph builder.
type SuiteSpec struct {
	Inputs         []string
	Alias          string
	MarkDefault    bool
	Flags          string
	Expected       string
	ImplicitInputs []string
}
