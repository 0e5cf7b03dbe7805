package config

// Kninjafile represents the structure of the kninja.yaml configuration file.
type Kninjafile struct {
	Version     string                   `yaml:"version"`
	Default     string                   `yaml:"default"`
	Definitions map[string]DefinitionDTO `yaml:"definitions"`
}

// DefinitionDTO represents one definition entry in the configuration.
type DefinitionDTO struct {
	Backend      string     `yaml:"backend"`
	Main         string     `yaml:"main"`
	Other        []string   `yaml:"other"`
	Directory    string     `yaml:"directory"`
	RunnerScript string     `yaml:"runnerScript"`
	Flags        string     `yaml:"flags"`
	KrunFlags    string     `yaml:"krunFlags"`
	KproveFlags  string     `yaml:"kproveFlags"`
	Env          string     `yaml:"env"`
	Tests        []SuiteDTO `yaml:"tests"`
	Proofs       []SuiteDTO `yaml:"proofs"`
}

// SuiteDTO represents a test or proof suite in the configuration. Default is
// a pointer so an omitted value means "mark default" while an explicit false
// opts out.
type SuiteDTO struct {
	Inputs         []string `yaml:"inputs"`
	Glob           string   `yaml:"glob"`
	Alias          string   `yaml:"alias"`
	Default        *bool    `yaml:"default"`
	Flags          string   `yaml:"flags"`
	Expected       string   `yaml:"expected"`
	ImplicitInputs []string `yaml:"implicitInputs"`
}
