package container

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
)

// Spec describes the single node container a supervisor manages.
type Spec struct {
	Name  string
	Image string

	// Env is the fully assembled process environment: resolved secrets,
	// chain RPC endpoint, peer bootstrap list, account identifier, home path.
	Env map[string]string

	// Mounts are host:container bind mounts.
	Mounts []Mount

	// Args are appended after the image.
	Args []string
}

// Mount is a bind mount into the container.
type Mount struct {
	Source string
	Target string
}

// Runtime drives a container engine. Implementations wrap the engine's CLI;
// tests substitute a fake.
type Runtime interface {
	// Remove force-removes the named container. Absence is not an error.
	Remove(ctx context.Context, name string) error

	// Run starts a detached container from spec.
	Run(ctx context.Context, spec Spec) error
}

// CLIRuntime drives docker or podman through their (compatible) CLIs.
type CLIRuntime struct {
	// Binary is the engine binary, "docker" or "podman".
	Binary string
	Log    *slog.Logger
}

// Remove force-removes the container. An engine error complaining about a
// missing container is swallowed: removal is idempotent.
func (r *CLIRuntime) Remove(ctx context.Context, name string) error {
	out, err := exec.CommandContext(ctx, r.Binary, "rm", "--force", name).CombinedOutput()
	if err != nil {
		if strings.Contains(strings.ToLower(string(out)), "no such container") {
			return nil
		}
		return fmt.Errorf("removing container %q: %s", name, out)
	}
	r.Log.Debug("removed container", slog.String("name", name))
	return nil
}

// Run starts the container detached.
func (r *CLIRuntime) Run(ctx context.Context, spec Spec) error {
	out, err := exec.CommandContext(ctx, r.Binary, runArgs(spec)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("starting container %q: %s", spec.Name, out)
	}
	r.Log.Info("started container", slog.String("name", spec.Name), slog.String("image", spec.Image))
	return nil
}

func runArgs(spec Spec) []string {
	args := []string{"run", "-d", "--name", spec.Name, "--restart=unless-stopped"}

	// Sorted for deterministic command lines.
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("--env=%s=%s", k, spec.Env[k]))
	}

	for _, m := range spec.Mounts {
		args = append(args, fmt.Sprintf("--mount=type=bind,source=%s,target=%s", m.Source, m.Target))
	}

	args = append(args, spec.Image)
	return append(args, spec.Args...)
}
