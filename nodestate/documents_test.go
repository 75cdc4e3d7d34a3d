package nodestate

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHome(t *testing.T) Home {
	t.Helper()
	home, err := NewHome(t.TempDir())
	require.NoError(t, err)
	return home
}

func TestOperatorConfigRoundTrip(t *testing.T) {
	home := testHome(t)

	cfg := &OperatorConfig{
		AccountID:          "signer-0.testnet",
		ResponderAccountID: "responder-0.testnet",
		WebUIHost:          "127.0.0.1",
		WebUIPort:          8080,
		Triples:            PrecomputeConfig{BufferSize: 128, Concurrency: 4, TimeoutSeconds: 60},
		Presignatures:      PrecomputeConfig{BufferSize: 64, Concurrency: 2, TimeoutSeconds: 30},
	}
	require.NoError(t, cfg.Save(home))

	loaded, err := LoadOperatorConfig(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	info, err := os.Stat(home.OperatorConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSecretSnapshotRoundTrip(t *testing.T) {
	home := testHome(t)

	snap := &SecretSnapshot{
		P2PPrivateKey:      "ed25519:DXkVZkHd7WUUejCK7i74uAoZWy1w9AZqshhTHxhmqHuB",
		AccountSigningKeys: []string{"ed25519:DXkVZkHd7WUUejCK7i74uAoZWy1w9AZqshhTHxhmqHuB"},
	}
	require.NoError(t, snap.Save(home))

	loaded, err := LoadSecretSnapshot(home)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestNodeKeyFromSecret(t *testing.T) {
	home := testHome(t)

	key, err := BuildNodeKey("signer-0.testnet", "ed25519:DXkVZkHd7WUUejCK7i74uAoZWy1w9AZqshhTHxhmqHuB")
	require.NoError(t, err)
	assert.Equal(t, "signer-0.testnet", key.AccountID.String())
	assert.Contains(t, key.PublicKey, "ed25519:")
	assert.Contains(t, key.SecretKey, "ed25519:")

	require.NoError(t, key.Save(home))
	loaded, err := LoadNodeKey(home)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)
}

func TestBuildNodeKeyRejectsMalformedSecret(t *testing.T) {
	_, err := BuildNodeKey("signer-0.testnet", "secp256k1:not-for-identity")
	assert.Error(t, err)
}

func TestRemoveValidatorKey(t *testing.T) {
	home := testHome(t)

	// Absent key is not an error.
	require.NoError(t, RemoveValidatorKey(home))

	require.NoError(t, os.WriteFile(home.ValidatorKeyPath(), []byte(`{}`), 0o600))
	require.NoError(t, RemoveValidatorKey(home))
	_, err := os.Stat(home.ValidatorKeyPath())
	assert.True(t, os.IsNotExist(err))
}

func TestReadChainConfigMissingIsNil(t *testing.T) {
	home := testHome(t)
	cfg, err := home.ReadChainConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestReadChainConfigCorrupt(t *testing.T) {
	home := testHome(t)
	require.NoError(t, os.WriteFile(home.ConfigPath(), []byte("{corrupt"), 0o600))
	_, err := home.ReadChainConfig()
	assert.Error(t, err)
}
