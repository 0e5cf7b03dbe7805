package ports

// Launcher replaces the current process image with an external tool.
//
// Exec does not return on success: the process is replaced, exit codes and
// signals belong to the new image. An error return means the replacement
// itself failed.
//
//go:generate go run go.uber.org/mock/mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Exec replaces the process with path, passing argv (argv[0] included)
	// and the environment verbatim.
	Exec(path string, argv []string, env []string) error
}
