// Package app implements the application layer for kninja: manifest
// generation and dispatch to the external K tools.
package app

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nishantjr/kninja/internal/core/domain"
	"github.com/nishantjr/kninja/internal/core/ports"
	"github.com/nishantjr/kninja/internal/project"
	"github.com/nishantjr/kninja/internal/runner"
)

// App wires the config loader, the graph builder and the launcher together.
type App struct {
	loader   ports.ConfigLoader
	logger   ports.Logger
	launcher ports.Launcher
}

// New creates an App.
func New(loader ports.ConfigLoader, logger ports.Logger, launcher ports.Launcher) *App {
	return &App{loader: loader, logger: logger, launcher: launcher}
}

// Generate builds the full graph from the configuration and writes the ninja
// manifest under the build directory. Nothing is written when construction or
// validation fails. It returns the manifest path.
func (a *App) Generate(ctx context.Context, configPath string) (string, error) {
	path, _, err := a.generate(ctx, configPath)
	return path, err
}

func (a *App) generate(ctx context.Context, configPath string) (string, domain.Layout, error) {
	p, buf, err := a.build(ctx, configPath)
	if err != nil {
		return "", domain.Layout{}, err
	}
	if err := p.Flush(); err != nil {
		return "", domain.Layout{}, zerr.Wrap(err, "failed to finalize manifest")
	}

	layout := p.Layout()
	if err := os.MkdirAll(layout.BuildDir(), 0o750); err != nil {
		return "", domain.Layout{}, zerr.Wrap(err, "failed to create build directory")
	}
	path := layout.ManifestPath()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // manifest is world-readable
		return "", domain.Layout{}, zerr.Wrap(err, "failed to write manifest")
	}

	a.logger.Info("manifest written: " + path)
	return path, layout, nil
}

// Build generates the manifest and replaces the process with ninja,
// forwarding the remaining arguments. When K is built from the submodule the
// manifest invokes bare tool names, so the submodule's bin directory is
// prepended to PATH for the replaced process.
func (a *App) Build(ctx context.Context, configPath string, ninjaArgs []string) error {
	manifest, layout, err := a.generate(ctx, configPath)
	if err != nil {
		return err
	}
	bin, err := exec.LookPath("ninja")
	if err != nil {
		return zerr.Wrap(err, "ninja not found in PATH")
	}
	env := os.Environ()
	if !layout.UsesSystemK() {
		env = prependPath(env, layout.KBinPath())
	}
	argv := append([]string{"ninja", "-f", manifest}, ninjaArgs...)
	return a.launcher.Exec(bin, argv, env)
}

// prependPath returns env with dir prepended to the PATH entry.
func prependPath(env []string, dir string) []string {
	out := make([]string, len(env))
	copy(out, env)
	for i, kv := range out {
		if strings.HasPrefix(kv, "PATH=") {
			out[i] = "PATH=" + dir + string(os.PathListSeparator) + strings.TrimPrefix(kv, "PATH=")
			return out
		}
	}
	return append(out, "PATH="+dir)
}

// Dispatch resolves a definition from the configuration and replaces the
// process with the selected K tool. The graph is constructed for its
// definition registry only; no manifest is written.
func (a *App) Dispatch(ctx context.Context, configPath string, action runner.Action, alias, program string, trailing []string) error {
	p, _, err := a.build(ctx, configPath)
	if err != nil {
		return err
	}
	return runner.New(p, a.launcher).Dispatch(action, alias, program, trailing)
}

// build loads the configuration and constructs the project graph into an
// in-memory buffer.
func (a *App) build(ctx context.Context, configPath string) (*project.Project, *bytes.Buffer, error) {
	spec, err := a.loader.Load(ctx, configPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	layout, err := project.DetectLayout(os.Getenv(domain.UseSystemKEnv) != "")
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	p, err := project.FromSpec(&buf, spec, project.WithLayout(layout))
	if err != nil {
		return nil, nil, err
	}
	return p, &buf, nil
}
