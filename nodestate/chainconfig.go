package nodestate

import (
	"encoding/json"
	"fmt"

	"github.com/mpcops/node-provisioning/interfaces"
)

// ChainConfig is the node's chain configuration document. It is held as a
// full structured representation so mutations are always parse-mutate-
// serialize of the whole document; partial textual edits of the file are
// never performed.
type ChainConfig struct {
	doc map[string]any
}

// Required top-level sections of a well-formed chain configuration.
var requiredSections = []string{"store", "rpc", "network"}

// ParseChainConfig parses a chain configuration document.
func ParseChainConfig(raw []byte) (*ChainConfig, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: chain config is not valid JSON: %v", interfaces.ErrMalformedInput, err)
	}
	return &ChainConfig{doc: doc}, nil
}

// NewChainConfig creates a config document from an existing structure.
// Used by tests and the init shim.
func NewChainConfig(doc map[string]any) *ChainConfig {
	if doc == nil {
		doc = map[string]any{}
	}
	return &ChainConfig{doc: doc}
}

// Validate checks for the structural sections the node process requires:
// a storage section, an RPC section, and a network-address section.
func (c *ChainConfig) Validate() error {
	for _, section := range requiredSections {
		v, ok := c.doc[section]
		if !ok {
			return fmt.Errorf("%w: chain config missing required section %q", interfaces.ErrMalformedInput, section)
		}
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: chain config section %q is not an object", interfaces.ErrMalformedInput, section)
		}
	}
	return nil
}

// ChainID returns the chain identifier the configuration is bound to, or
// empty when the field is absent.
func (c *ChainConfig) ChainID() interfaces.ChainID {
	id, _ := c.doc["chain_id"].(string)
	return interfaces.ChainID(id)
}

// PatchOptions are the fields that cannot be supplied at init time and must
// be patched into the freshly generated configuration afterwards.
type PatchOptions struct {
	// ChainID stamps the configuration with the genesis descriptor's chain
	// identifier so later boots can detect drift.
	ChainID interfaces.ChainID

	// StateSyncEnabled selects the node's synchronization mode.
	StateSyncEnabled bool

	// TrackedShards is the shard-tracking policy for the node.
	TrackedShards []int
}

// Patch applies opts to the document. All other fields are preserved as
// parsed; serialization rewrites the whole document.
func (c *ChainConfig) Patch(opts PatchOptions) {
	if opts.ChainID != "" {
		c.doc["chain_id"] = opts.ChainID.String()
	}
	c.doc["state_sync_enabled"] = opts.StateSyncEnabled

	shards := make([]any, len(opts.TrackedShards))
	for i, s := range opts.TrackedShards {
		shards[i] = float64(s)
	}
	c.doc["tracked_shards"] = shards
}

// Get returns a top-level field of the document. Used in tests to assert
// preservation of untouched fields.
func (c *ChainConfig) Get(key string) (any, bool) {
	v, ok := c.doc[key]
	return v, ok
}

// Marshal serializes the whole document.
func (c *ChainConfig) Marshal() ([]byte, error) {
	raw, err := json.MarshalIndent(c.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize chain config: %w", err)
	}
	return append(raw, '\n'), nil
}
