package nodestate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpcops/node-provisioning/interfaces"
)

// OperatorConfig is the operator-supplied configuration document. It is
// written once when the node is enrolled and must survive every reset.
type OperatorConfig struct {
	// AccountID is the node's external identifier on the chain.
	AccountID interfaces.AccountID `json:"account_id"`

	// ResponderAccountID signs responses submitted back to the chain.
	ResponderAccountID interfaces.AccountID `json:"responder_account_id"`

	// WebUIHost and WebUIPort bind the node's status UI.
	WebUIHost string `json:"web_ui_host"`
	WebUIPort int    `json:"web_ui_port"`

	// Triples and Presignatures tune the background cryptographic
	// precomputation pipelines.
	Triples       PrecomputeConfig `json:"triples"`
	Presignatures PrecomputeConfig `json:"presignatures"`
}

// PrecomputeConfig tunes one background precomputation pipeline.
type PrecomputeConfig struct {
	BufferSize     int `json:"buffer_size"`
	Concurrency    int `json:"concurrency"`
	TimeoutSeconds int `json:"timeout_sec"`
}

// SecretSnapshot is the on-disk snapshot of resolved secret material: the
// peer-network private key and the chain-account signing key(s). Like the
// operator configuration it must survive every reset byte-identically.
type SecretSnapshot struct {
	P2PPrivateKey      string   `json:"p2p_private_key"`
	AccountSigningKeys []string `json:"account_signing_keys"`
}

// LoadOperatorConfig reads the operator configuration from the home.
func LoadOperatorConfig(h Home) (*OperatorConfig, error) {
	var cfg OperatorConfig
	if err := readJSON(h.OperatorConfigPath(), &cfg); err != nil {
		return nil, fmt.Errorf("operator config: %w", err)
	}
	return &cfg, nil
}

// SaveOperatorConfig writes the operator configuration.
func (c *OperatorConfig) Save(h Home) error {
	return writeJSON(h.OperatorConfigPath(), c, 0o600)
}

// LoadSecretSnapshot reads the secret snapshot from the home.
func LoadSecretSnapshot(h Home) (*SecretSnapshot, error) {
	var snap SecretSnapshot
	if err := readJSON(h.SecretSnapshotPath(), &snap); err != nil {
		return nil, fmt.Errorf("secret snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the secret snapshot with owner-only permissions.
func (s *SecretSnapshot) Save(h Home) error {
	return writeJSON(h.SecretSnapshotPath(), s, 0o600)
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err)
	}
	return nil
}

func writeJSON(path string, in any, mode os.FileMode) error {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), mode)
}
