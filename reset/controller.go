package reset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mpcops/node-provisioning/container"
	"github.com/mpcops/node-provisioning/cryptoutil"
	"github.com/mpcops/node-provisioning/genesis"
	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/nodestate"
)

// Controller wipes and reinitializes a node's chain state from the current
// genesis descriptor while preserving durable identity material: the operator
// configuration and the secret snapshot survive byte-identically.
type Controller struct {
	Home    nodestate.Home
	Source  genesis.Source
	Init    InitRunner
	Runtime container.Runtime

	// ContainerName is the node container to stop before wiping state.
	ContainerName string

	// AccountID is the node's externally assigned stable identifier, used to
	// rebuild the identity key file.
	AccountID interfaces.AccountID

	// Patch carries the post-init configuration fields. Its ChainID is
	// overwritten with the fetched descriptor's identifier.
	Patch nodestate.PatchOptions

	// BackupSecret, when set, seals the secret snapshot backup at rest.
	BackupSecret []byte

	Log *slog.Logger
}

// Reset performs the wipe-and-reinitialize sequence. Failures while deleting,
// fetching genesis, initializing, patching, restoring, or rebuilding keys are
// fatal and abort the boot; stopping the old container and cleaning up the
// temporary backup are best-effort.
func (c *Controller) Reset(ctx context.Context) error {
	c.Log.Info("resetting node state", slog.String("home", c.Home.Dir))

	// Step 1: stop any running node process. Absence is not an error, and a
	// stubborn engine must not block recovery.
	if err := c.Runtime.Remove(ctx, c.ContainerName); err != nil {
		c.Log.Warn("failed to stop node container, continuing reset", "err", err)
	}

	// Step 2: back up durable identity material before anything is deleted.
	backupDir, err := c.backup()
	if err != nil {
		return fmt.Errorf("backing up identity material: %w", err)
	}

	// Step 3: delete regenerable state. Chain state, chain configuration and
	// derived key files are never authoritative.
	if err := c.wipe(); err != nil {
		return fmt.Errorf("wiping chain state: %w", err)
	}

	// Step 4: the genesis descriptor must be reachable to rebuild anything.
	desc, err := genesis.FetchDescriptor(ctx, c.Source, c.Log)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Home.GenesisPath(), desc.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing genesis descriptor: %w", err)
	}

	// Step 5: run the external init routine. It may mutate the genesis file
	// as a side effect, so the pristine descriptor is restored immediately
	// afterwards - genesis identity is never silently altered by local init.
	if err := c.Init.Init(ctx, c.Home, desc.ChainID()); err != nil {
		return err
	}
	if err := os.WriteFile(c.Home.GenesisPath(), desc.Bytes(), 0o644); err != nil {
		return fmt.Errorf("restoring pristine genesis after init: %w", err)
	}

	// Step 6: patch the generated configuration. Whole-document
	// parse-mutate-serialize; no partial file edits.
	if err := c.patchConfig(desc); err != nil {
		return err
	}

	// Step 7: restore identity material.
	if err := c.restore(backupDir); err != nil {
		return fmt.Errorf("restoring identity material: %w", err)
	}

	// Step 8: rebuild the identity key from the restored secret material,
	// overwriting whatever placeholder identity init generated.
	snap, err := nodestate.LoadSecretSnapshot(c.Home)
	if err != nil {
		return err
	}
	nodeKey, err := nodestate.BuildNodeKey(c.AccountID, snap.P2PPrivateKey)
	if err != nil {
		return err
	}
	if err := nodeKey.Save(c.Home); err != nil {
		return fmt.Errorf("writing identity key: %w", err)
	}

	// Step 9: these nodes are never block validators.
	if err := nodestate.RemoveValidatorKey(c.Home); err != nil {
		return err
	}

	// Step 10: best-effort cleanup.
	if err := os.RemoveAll(backupDir); err != nil {
		c.Log.Warn("failed to remove backup directory", slog.String("dir", backupDir), "err", err)
	}

	c.Log.Info("node state reset complete", slog.String("chain_id", desc.ChainID().String()))
	return nil
}

func (c *Controller) backup() (string, error) {
	backupDir, err := os.MkdirTemp("", "node-reset-backup-")
	if err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	if err := copyFile(c.Home.OperatorConfigPath(), filepath.Join(backupDir, "operator.json"), 0o600); err != nil {
		os.RemoveAll(backupDir)
		return "", err
	}

	snapshot, err := os.ReadFile(c.Home.SecretSnapshotPath())
	if err != nil {
		os.RemoveAll(backupDir)
		return "", fmt.Errorf("reading secret snapshot: %w", err)
	}
	if len(c.BackupSecret) > 0 {
		if snapshot, err = cryptoutil.Seal(c.BackupSecret, snapshot); err != nil {
			os.RemoveAll(backupDir)
			return "", fmt.Errorf("sealing secret snapshot backup: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(backupDir, "secrets.json"), snapshot, 0o600); err != nil {
		os.RemoveAll(backupDir)
		return "", fmt.Errorf("writing secret snapshot backup: %w", err)
	}

	return backupDir, nil
}

func (c *Controller) wipe() error {
	if err := os.RemoveAll(c.Home.DataDir()); err != nil {
		return fmt.Errorf("removing chain state: %w", err)
	}
	for _, path := range []string{
		c.Home.ConfigPath(),
		c.Home.NodeKeyPath(),
		c.Home.ValidatorKeyPath(),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (c *Controller) patchConfig(desc *genesis.Descriptor) error {
	cfg, err := c.Home.ReadChainConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("%w: init produced no chain configuration", interfaces.ErrMalformedInput)
	}

	patch := c.Patch
	patch.ChainID = desc.ChainID()
	cfg.Patch(patch)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("init produced an invalid chain configuration: %w", err)
	}

	return c.Home.WriteChainConfig(cfg)
}

func (c *Controller) restore(backupDir string) error {
	if err := copyFile(filepath.Join(backupDir, "operator.json"), c.Home.OperatorConfigPath(), 0o600); err != nil {
		return err
	}

	snapshot, err := os.ReadFile(filepath.Join(backupDir, "secrets.json"))
	if err != nil {
		return fmt.Errorf("reading secret snapshot backup: %w", err)
	}
	if len(c.BackupSecret) > 0 {
		if snapshot, err = cryptoutil.Open(c.BackupSecret, snapshot); err != nil {
			return fmt.Errorf("unsealing secret snapshot backup: %w", err)
		}
	}
	return os.WriteFile(c.Home.SecretSnapshotPath(), snapshot, 0o600)
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
