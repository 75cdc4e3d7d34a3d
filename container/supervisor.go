package container

import (
	"context"
	"fmt"
	"log/slog"
)

// Supervisor ensures exactly one instance of the node process is running
// with the assembled environment.
type Supervisor struct {
	Runtime Runtime
	Log     *slog.Logger
}

// Ensure unconditionally stops and removes any existing instance, then starts
// a fresh one. No in-place reconfiguration is attempted: the stop-then-start
// shape makes the operation safe to re-run after a crash or a configuration
// change.
func (s *Supervisor) Ensure(ctx context.Context, spec Spec) error {
	if err := s.Runtime.Remove(ctx, spec.Name); err != nil {
		return fmt.Errorf("stopping previous instance: %w", err)
	}

	if err := s.Runtime.Run(ctx, spec); err != nil {
		return fmt.Errorf("starting node container: %w", err)
	}

	s.Log.Info("node container running", slog.String("name", spec.Name))
	return nil
}
