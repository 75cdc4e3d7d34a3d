package nodestate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcops/node-provisioning/interfaces"
)

const sampleConfig = `{
  "chain_id": "localnet-42",
  "store": {"path": "data"},
  "rpc": {"addr": "0.0.0.0:3030"},
  "network": {"addr": "0.0.0.0:24567", "boot_nodes": ""},
  "telemetry": {"endpoints": []}
}`

func TestParseAndValidate(t *testing.T) {
	cfg, err := ParseChainConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, interfaces.ChainID("localnet-42"), cfg.ChainID())
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := ParseChainConfig([]byte("{not json"))
	assert.ErrorIs(t, err, interfaces.ErrMalformedInput)
}

func TestValidateMissingSection(t *testing.T) {
	cfg, err := ParseChainConfig([]byte(`{"store": {}, "rpc": {}}`))
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrMalformedInput)
	assert.Contains(t, err.Error(), "network")
}

func TestValidateNonObjectSection(t *testing.T) {
	cfg, err := ParseChainConfig([]byte(`{"store": {}, "rpc": "not-an-object", "network": {}}`))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), interfaces.ErrMalformedInput)
}

func TestPatchPreservesOtherFields(t *testing.T) {
	cfg, err := ParseChainConfig([]byte(sampleConfig))
	require.NoError(t, err)

	cfg.Patch(PatchOptions{ChainID: "localnet-43", StateSyncEnabled: true, TrackedShards: []int{0}})

	raw, err := cfg.Marshal()
	require.NoError(t, err)

	reparsed, err := ParseChainConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ChainID("localnet-43"), reparsed.ChainID())

	enabled, ok := reparsed.Get("state_sync_enabled")
	require.True(t, ok)
	assert.Equal(t, true, enabled)

	shards, ok := reparsed.Get("tracked_shards")
	require.True(t, ok)
	assert.Equal(t, []any{float64(0)}, shards)

	// Fields the patch does not own survive the round trip.
	telemetry, ok := reparsed.Get("telemetry")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"endpoints": []any{}}, telemetry)

	network, ok := reparsed.Get("network")
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:24567", network.(map[string]any)["addr"])
}

func TestMarshalProducesValidJSON(t *testing.T) {
	cfg := NewChainConfig(map[string]any{"store": map[string]any{}, "rpc": map[string]any{}, "network": map[string]any{}})
	raw, err := cfg.Marshal()
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}
