// Package proc implements process replacement for dispatch.
package proc

import (
	"syscall"

	"go.trai.ch/zerr"

	"github.com/nishantjr/kninja/internal/core/ports"
)

var _ ports.Launcher = (*Launcher)(nil)

// Launcher implements ports.Launcher with execve. On success the current
// process image is gone; exit codes and signals are inherited by the
// replacement.
type Launcher struct{}

// NewLauncher creates a Launcher.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Exec replaces the process with the given binary.
func (l *Launcher) Exec(path string, argv []string, env []string) error {
	if err := syscall.Exec(path, argv, env); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to exec"), "path", path)
	}
	return nil
}
