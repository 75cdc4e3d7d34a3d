package nodestate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Home is a node's durable state directory. Each node owns exactly one home
// subtree; no node ever reads or writes another's.
//
// Layout:
//
//	config.json         chain configuration (regenerated on reset)
//	genesis.json        genesis descriptor (externally supplied)
//	node_key.json       identity key (derived from secret material)
//	validator_key.json  must never be present on these nodes
//	data/               chain state owned by the node process
//	operator.json       operator configuration (survives resets)
//	secrets.json        secret material snapshot (survives resets)
type Home struct {
	Dir string
}

// NewHome ensures the home directory exists and returns it.
func NewHome(dir string) (Home, error) {
	if dir == "" {
		return Home{}, fmt.Errorf("home directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Home{}, fmt.Errorf("failed to create home directory: %w", err)
	}
	return Home{Dir: dir}, nil
}

// ConfigPath is the chain configuration document.
func (h Home) ConfigPath() string { return filepath.Join(h.Dir, "config.json") }

// GenesisPath is the genesis descriptor document.
func (h Home) GenesisPath() string { return filepath.Join(h.Dir, "genesis.json") }

// NodeKeyPath is the node's identity key file.
func (h Home) NodeKeyPath() string { return filepath.Join(h.Dir, "node_key.json") }

// ValidatorKeyPath is the validator key file the init routine may generate.
// These nodes are never block validators, so the file must not survive a
// reset.
func (h Home) ValidatorKeyPath() string { return filepath.Join(h.Dir, "validator_key.json") }

// DataDir holds the chain state owned by the external node process.
func (h Home) DataDir() string { return filepath.Join(h.Dir, "data") }

// OperatorConfigPath is the operator configuration document.
func (h Home) OperatorConfigPath() string { return filepath.Join(h.Dir, "operator.json") }

// SecretSnapshotPath is the secret material snapshot document.
func (h Home) SecretSnapshotPath() string { return filepath.Join(h.Dir, "secrets.json") }

// ReadChainConfig loads and parses the chain configuration. A missing file
// returns (nil, nil): absence is a normal first-boot condition, while a
// present-but-unparseable document is reported as an error.
func (h Home) ReadChainConfig() (*ChainConfig, error) {
	raw, err := os.ReadFile(h.ConfigPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chain config: %w", err)
	}
	return ParseChainConfig(raw)
}

// WriteChainConfig serializes and writes the chain configuration as a whole
// document.
func (h Home) WriteChainConfig(cfg *ChainConfig) error {
	raw, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(h.ConfigPath(), raw, 0o600); err != nil {
		return fmt.Errorf("failed to write chain config: %w", err)
	}
	return nil
}
