package reset

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/nodestate"
)

// InitRunner invokes the external node binary's init routine to generate a
// fresh chain configuration in the home directory.
//
// The init routine is an opaque external mutator: it is permitted to rewrite
// the genesis file as a side effect. Callers must snapshot the genesis before
// invoking it and restore the pristine copy afterwards.
type InitRunner interface {
	Init(ctx context.Context, home nodestate.Home, chainID interfaces.ChainID) error
}

// BinaryInit runs the node binary's init subcommand.
type BinaryInit struct {
	// Binary is the node binary path.
	Binary string

	// ExtraArgs are appended to the init invocation.
	ExtraArgs []string

	Log *slog.Logger
}

// Init shells out to the node binary.
func (b *BinaryInit) Init(ctx context.Context, home nodestate.Home, chainID interfaces.ChainID) error {
	args := []string{"--home", home.Dir, "init", "--chain-id", chainID.String(), "--genesis", home.GenesisPath()}
	args = append(args, b.ExtraArgs...)

	b.Log.Info("running node init", slog.String("binary", b.Binary), slog.String("chain_id", chainID.String()))
	out, err := exec.CommandContext(ctx, b.Binary, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("node init failed: %v: %s", err, out)
	}
	return nil
}
