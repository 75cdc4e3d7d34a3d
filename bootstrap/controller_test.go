package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcops/node-provisioning/container"
	"github.com/mpcops/node-provisioning/discovery"
	"github.com/mpcops/node-provisioning/genesis"
	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/nodestate"
	"github.com/mpcops/node-provisioning/secrets"
)

const testP2PKey = "ed25519:DXkVZkHd7WUUejCK7i74uAoZWy1w9AZqshhTHxhmqHuB"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// lagStore returns the placeholder sentinel for the first polls of each
// secret, then the real value, mirroring a provisioning layer catching up.
type lagStore struct {
	mu       sync.Mutex
	real     map[interfaces.SecretName]string
	lag      int
	attempts map[interfaces.SecretName]int
}

func newLagStore(lag int, real map[interfaces.SecretName]string) *lagStore {
	return &lagStore{real: real, lag: lag, attempts: map[interfaces.SecretName]int{}}
}

func (s *lagStore) Resolve(ctx context.Context, name interfaces.SecretName) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[name]++
	if s.attempts[name] < s.lag {
		return interfaces.PlaceholderSentinel, nil
	}
	return s.real[name], nil
}

type fakeInit struct{}

func (fakeInit) Init(ctx context.Context, home nodestate.Home, chainID interfaces.ChainID) error {
	cfg := nodestate.NewChainConfig(map[string]any{
		"store":   map[string]any{"path": "data"},
		"rpc":     map[string]any{"addr": "0.0.0.0:3030"},
		"network": map[string]any{"addr": "0.0.0.0:24567"},
	})
	if err := home.WriteChainConfig(cfg); err != nil {
		return err
	}
	return os.WriteFile(home.NodeKeyPath(), []byte(`{"account_id":"throwaway"}`), 0o600)
}

type fakeRuntime struct {
	mu      sync.Mutex
	removed []string
	started []container.Spec
}

func (f *fakeRuntime) Remove(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeRuntime) Run(ctx context.Context, spec container.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, spec)
	return nil
}

type staticPeers []discovery.Peer

func (p staticPeers) Peers(ctx context.Context) ([]discovery.Peer, error) { return p, nil }

func testConfig(t *testing.T, rt *fakeRuntime, store secrets.Store) Config {
	t.Helper()

	home, err := nodestate.NewHome(t.TempDir())
	require.NoError(t, err)

	genesisPath := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(genesisPath, []byte(`{"chain_id": "localnet-42"}`), 0o600))

	return Config{
		Home:               home,
		Operator:           &nodestate.OperatorConfig{AccountID: "signer-0.testnet", ResponderAccountID: "responder-0.testnet"},
		SecretStore:        store,
		P2PKeySecret:       "mpc/p2p_key",
		AccountKeySecret:   "mpc/account_key",
		SecretPollInterval: time.Millisecond,
		SecretMaxAttempts:  10,
		GenesisSource:      genesis.NewFileSource(genesisPath, testLogger()),
		Discovery: staticPeers{
			{Host: "node-1.mpc.internal", Port: 24567},
		},
		Runtime:       rt,
		Init:          fakeInit{},
		ContainerName: "mpc-node",
		Image:         "mpcops/node:latest",
		RPCEndpoint:   "http://rpc.localnet:3030",
		Patch:         nodestate.PatchOptions{StateSyncEnabled: true, TrackedShards: []int{0}},
		Log:           testLogger(),
	}
}

// Fresh node: placeholder secrets resolve after three polls, no local chain
// config exists, so the boot resets from genesis and starts the container
// exactly once.
func TestBootstrapFreshNode(t *testing.T) {
	rt := &fakeRuntime{}
	store := newLagStore(3, map[interfaces.SecretName]string{
		"mpc/p2p_key":     testP2PKey,
		"mpc/account_key": testP2PKey,
	})
	c := New(testConfig(t, rt, store))
	home := c.cfg.Home

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, PhaseRunning, c.Phase())

	// Reset produced a config bound to the genesis identifier.
	cfg, err := home.ReadChainConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, interfaces.ChainID("localnet-42"), cfg.ChainID())

	// The secret snapshot survived the reset.
	snap, err := nodestate.LoadSecretSnapshot(home)
	require.NoError(t, err)
	assert.Equal(t, testP2PKey, snap.P2PPrivateKey)

	// Exactly one container start with the assembled environment.
	require.Len(t, rt.started, 1)
	spec := rt.started[0]
	assert.Equal(t, "mpc-node", spec.Name)
	assert.Equal(t, "signer-0.testnet", spec.Env["MPC_ACCOUNT_ID"])
	assert.Equal(t, testP2PKey, spec.Env["MPC_P2P_PRIVATE_KEY"])
	assert.Equal(t, "localnet-42", spec.Env["CHAIN_ID"])
	assert.Equal(t, "node-1.mpc.internal:24567", spec.Env["NEAR_BOOT_NODES"])
	assert.Equal(t, "http://rpc.localnet:3030", spec.Env["NEAR_RPC_URL"])
}

// A consistent node reboots without a reset: its chain config and identity
// key files are left alone.
func TestBootstrapConsistentNodeSkipsReset(t *testing.T) {
	rt := &fakeRuntime{}
	store := secrets.NewStaticStore(map[interfaces.SecretName]string{
		"mpc/p2p_key":     testP2PKey,
		"mpc/account_key": testP2PKey,
	})
	c := New(testConfig(t, rt, store))
	home := c.cfg.Home

	require.NoError(t, c.Run(context.Background()))
	nodeKeyBefore, err := os.ReadFile(home.NodeKeyPath())
	require.NoError(t, err)

	rt2 := &fakeRuntime{}
	cfg2 := c.cfg
	cfg2.Runtime = rt2
	c2 := New(cfg2)
	require.NoError(t, c2.Run(context.Background()))

	nodeKeyAfter, err := os.ReadFile(home.NodeKeyPath())
	require.NoError(t, err)
	assert.Equal(t, nodeKeyBefore, nodeKeyAfter, "second boot must not reset a consistent node")
	require.Len(t, rt2.started, 1)
}

func TestBootstrapSecretTimeoutFailsBoot(t *testing.T) {
	rt := &fakeRuntime{}
	store := newLagStore(100, map[interfaces.SecretName]string{})
	cfg := testConfig(t, rt, store)
	cfg.SecretMaxAttempts = 2
	c := New(cfg)

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrProvisioningTimeout)
	assert.Equal(t, PhaseFailed, c.Phase())
	assert.Empty(t, rt.started, "no partial container start on a failed boot")
}

func TestBootstrapRequiresEnrollment(t *testing.T) {
	rt := &fakeRuntime{}
	store := secrets.NewStaticStore(map[interfaces.SecretName]string{})
	cfg := testConfig(t, rt, store)
	cfg.Operator = nil
	c := New(cfg)

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrMalformedInput)
}
