package nodestate

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/keyutil"
)

// NodeKey is the node's identity key file, in the format the node process
// expects at node_key.json.
type NodeKey struct {
	AccountID interfaces.AccountID `json:"account_id"`
	PublicKey string               `json:"public_key"`
	SecretKey string               `json:"secret_key"`
}

// BuildNodeKey derives the identity key file from the peer-network secret and
// the node's externally assigned stable identifier. The init routine writes a
// throwaway identity; this replaces it with the durable one.
func BuildNodeKey(accountID interfaces.AccountID, p2pPrivateKey string) (*NodeKey, error) {
	priv, err := keyutil.DecodeED25519(p2pPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: p2p private key: %v", interfaces.ErrMalformedInput, err)
	}

	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type for ed25519 private key")
	}

	return &NodeKey{
		AccountID: accountID,
		PublicKey: keyutil.EncodeED25519PublicKey(pub),
		SecretKey: keyutil.EncodeED25519(priv),
	}, nil
}

// Save writes the identity key file, overwriting any existing one.
func (k *NodeKey) Save(h Home) error {
	return writeJSON(h.NodeKeyPath(), k, 0o600)
}

// LoadNodeKey reads the identity key file.
func LoadNodeKey(h Home) (*NodeKey, error) {
	var key NodeKey
	if err := readJSON(h.NodeKeyPath(), &key); err != nil {
		return nil, fmt.Errorf("node key: %w", err)
	}
	return &key, nil
}

// RemoveValidatorKey deletes any validator-only key material. These nodes are
// never block validators; a lingering validator key is an error condition for
// the surrounding chain. Absence is not an error.
func RemoveValidatorKey(h Home) error {
	err := os.Remove(h.ValidatorKeyPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove validator key: %w", err)
	}
	return nil
}
