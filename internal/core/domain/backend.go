package domain

import "go.trai.ch/zerr"

// Backend is a selectable kompile target. Each backend has its own
// convention for the file kompile produces inside the kompiled directory, and
// its own flags for building the K framework itself.
type Backend int

const (
	// BackendLLVM compiles to a native interpreter.
	BackendLLVM Backend = iota
	// BackendJava compiles for the Java rewrite engine.
	BackendJava
	// BackendHaskell compiles to a kore definition for the Haskell backend.
	BackendHaskell
)

// Backends lists every supported backend in declaration order.
func Backends() []Backend {
	return []Backend{BackendLLVM, BackendJava, BackendHaskell}
}

// ParseBackend maps a configuration string to a backend. Unknown names are an
// enumerated-choice error.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "llvm":
		return BackendLLVM, nil
	case "java":
		return BackendJava, nil
	case "haskell":
		return BackendHaskell, nil
	}
	return 0, zerr.With(ErrUnknownBackend, "backend", name)
}

func (b Backend) String() string {
	switch b {
	case BackendLLVM:
		return "llvm"
	case BackendJava:
		return "java"
	case BackendHaskell:
		return "haskell"
	}
	return "unknown"
}

// KompiledOutput returns the file kompile leaves in the kompiled directory,
// used as the artifact target for all derived pipelines.
func (b Backend) KompiledOutput() string {
	switch b {
	case BackendLLVM:
		return "interpreter"
	case BackendJava:
		return "timestamp"
	case BackendHaskell:
		return "definition.kore"
	}
	return ""
}

// BuildFlags returns the Maven flags for building the K framework with only
// this backend enabled.
func (b Backend) BuildFlags() string {
	switch b {
	case BackendLLVM:
		return "-Dhaskell.backend.skip -Dproject.build.type=RelWithDebInfo"
	case BackendJava:
		return "-Dllvm.backend.skip -Dhaskell.backend.skip"
	case BackendHaskell:
		return "-Dllvm.backend.skip"
	}
	return ""
}
