package genesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcops/node-provisioning/nodestate"
)

func descriptorFor(t *testing.T, chainID string) *Descriptor {
	t.Helper()
	desc, err := ParseDescriptor([]byte(`{"chain_id": "` + chainID + `", "genesis_time": "2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	return desc
}

func wellFormedConfig(t *testing.T, chainID string) *nodestate.ChainConfig {
	t.Helper()
	cfg, err := nodestate.ParseChainConfig([]byte(`{
		"chain_id": "` + chainID + `",
		"store": {"path": "data"},
		"rpc": {"addr": "0.0.0.0:3030"},
		"network": {"addr": "0.0.0.0:24567"}
	}`))
	require.NoError(t, err)
	return cfg
}

func TestNeedsResetMissingConfig(t *testing.T) {
	d := NeedsReset(nil, descriptorFor(t, "localnet-42"))
	assert.True(t, d.Reset)
	assert.Contains(t, d.Reason, "no local chain configuration")
}

func TestNeedsResetMalformedConfig(t *testing.T) {
	cfg, err := nodestate.ParseChainConfig([]byte(`{"chain_id": "localnet-42", "store": {}}`))
	require.NoError(t, err)

	d := NeedsReset(cfg, descriptorFor(t, "localnet-42"))
	assert.True(t, d.Reset)
	assert.Contains(t, d.Reason, "malformed")
}

func TestNeedsResetMalformedBeatsIdentifierMismatch(t *testing.T) {
	// Even with a mismatched identifier present, the malformed-config reason
	// must win: an unreadable config makes the comparison meaningless.
	cfg, err := nodestate.ParseChainConfig([]byte(`{"chain_id": "chain-a"}`))
	require.NoError(t, err)

	d := NeedsReset(cfg, descriptorFor(t, "chain-b"))
	assert.True(t, d.Reset)
	assert.Contains(t, d.Reason, "malformed")
}

func TestNeedsResetChainIDMismatch(t *testing.T) {
	d := NeedsReset(wellFormedConfig(t, "chain-a"), descriptorFor(t, "chain-b"))
	assert.True(t, d.Reset)
	assert.Contains(t, d.Reason, "chain-a")
	assert.Contains(t, d.Reason, "chain-b")
}

func TestNeedsResetConsistentState(t *testing.T) {
	cfg := wellFormedConfig(t, "localnet-42")
	desc := descriptorFor(t, "localnet-42")

	// Idempotent: repeated invocation on unchanged state stays false.
	for i := 0; i < 3; i++ {
		d := NeedsReset(cfg, desc)
		assert.False(t, d.Reset)
		assert.Empty(t, d.Reason)
	}
}

func TestNeedsResetLocalWithoutIdentifier(t *testing.T) {
	cfg, err := nodestate.ParseChainConfig([]byte(`{
		"store": {}, "rpc": {}, "network": {}
	}`))
	require.NoError(t, err)

	d := NeedsReset(cfg, descriptorFor(t, "localnet-42"))
	assert.False(t, d.Reset, "a config without an identifier cannot be called drifted")
}
