package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.uber.org/atomic"

	"github.com/mpcops/node-provisioning/container"
	"github.com/mpcops/node-provisioning/discovery"
	"github.com/mpcops/node-provisioning/genesis"
	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/nodestate"
	"github.com/mpcops/node-provisioning/reset"
	"github.com/mpcops/node-provisioning/secrets"
)

// Boot phases, exposed on the status endpoint.
const (
	PhaseIdle            = "idle"
	PhaseAwaitingSecrets = "awaiting-secrets"
	PhaseCheckingGenesis = "checking-genesis"
	PhaseResetting       = "resetting"
	PhaseResolvingPeers  = "resolving-peers"
	PhaseStartingNode    = "starting-node"
	PhaseRunning         = "running"
	PhaseFailed          = "failed"
)

// PeerResolver produces the peer bootstrap list. Nil in Config means the node
// boots with an empty boot-node list.
type PeerResolver interface {
	Peers(ctx context.Context) ([]discovery.Peer, error)
}

// Config is the immutable input to one boot sequence. Every phase reads only
// from here and from the node home; nothing consults the process environment.
type Config struct {
	Home nodestate.Home

	// Operator enrolls the node on first boot. When the home already carries
	// an operator configuration the existing document wins.
	Operator *nodestate.OperatorConfig

	// SecretStore resolves the named secrets below.
	SecretStore secrets.Store

	// P2PKeySecret and AccountKeySecret name the two key-bearing secrets the
	// node cannot start without.
	P2PKeySecret     interfaces.SecretName
	AccountKeySecret interfaces.SecretName

	// SecretPollInterval and SecretMaxAttempts bound the secret wait. Zero
	// values select the waiter defaults.
	SecretPollInterval time.Duration
	SecretMaxAttempts  int

	// GenesisSource publishes the genesis descriptor.
	GenesisSource genesis.Source

	// Discovery resolves the peer bootstrap list; nil skips discovery.
	Discovery PeerResolver

	Runtime container.Runtime
	Init    reset.InitRunner

	ContainerName string
	Image         string

	// RPCEndpoint is the chain RPC URL handed to the node process.
	RPCEndpoint string

	// Patch carries the post-init chain configuration fields.
	Patch nodestate.PatchOptions

	// BackupSecret, when set, seals the reset backup at rest.
	BackupSecret []byte

	Log *slog.Logger
}

// Controller executes the boot sequence and tracks its current phase.
type Controller struct {
	cfg   Config
	phase atomic.String
}

// New creates a controller in the idle phase.
func New(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	c.phase.Store(PhaseIdle)
	return c
}

// Phase reports the current boot phase.
func (c *Controller) Phase() string {
	return c.phase.Load()
}

// Run executes the full sequence. Any error aborts the boot with no partial
// container start and leaves the controller in the failed phase.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.run(ctx); err != nil {
		c.phase.Store(PhaseFailed)
		return err
	}
	c.phase.Store(PhaseRunning)
	return nil
}

func (c *Controller) run(ctx context.Context) error {
	if err := c.enroll(); err != nil {
		return err
	}

	c.phase.Store(PhaseAwaitingSecrets)
	snap, err := c.awaitSecrets(ctx)
	if err != nil {
		return err
	}

	c.phase.Store(PhaseCheckingGenesis)
	desc, err := genesis.FetchDescriptor(ctx, c.cfg.GenesisSource, c.cfg.Log)
	if err != nil {
		return err
	}

	local, err := c.cfg.Home.ReadChainConfig()
	if err != nil {
		// An unreadable local configuration gets the same treatment as a
		// malformed one: wipe and rebuild.
		c.cfg.Log.Warn("local chain configuration unreadable", "err", err)
		local = nil
	}

	operator, err := nodestate.LoadOperatorConfig(c.cfg.Home)
	if err != nil {
		return err
	}

	if decision := genesis.NeedsReset(local, desc); decision.Reset {
		c.phase.Store(PhaseResetting)
		c.cfg.Log.Info("node state inconsistent with genesis, resetting", slog.String("reason", decision.Reason))
		rc := &reset.Controller{
			Home:          c.cfg.Home,
			Source:        c.cfg.GenesisSource,
			Init:          c.cfg.Init,
			Runtime:       c.cfg.Runtime,
			ContainerName: c.cfg.ContainerName,
			AccountID:     operator.AccountID,
			Patch:         c.cfg.Patch,
			BackupSecret:  c.cfg.BackupSecret,
			Log:           c.cfg.Log,
		}
		if err := rc.Reset(ctx); err != nil {
			return fmt.Errorf("resetting node state: %w", err)
		}
	}

	c.phase.Store(PhaseResolvingPeers)
	bootNodes := ""
	if c.cfg.Discovery != nil {
		peers, err := c.cfg.Discovery.Peers(ctx)
		if err != nil {
			return err
		}
		bootNodes = discovery.BootNodes(peers)
	}

	c.phase.Store(PhaseStartingNode)
	supervisor := &container.Supervisor{Runtime: c.cfg.Runtime, Log: c.cfg.Log}
	return supervisor.Ensure(ctx, c.containerSpec(desc, operator, snap, bootNodes))
}

// enroll writes the operator configuration on first boot. An existing
// document always wins: enrollment happens once.
func (c *Controller) enroll() error {
	if _, err := os.Stat(c.cfg.Home.OperatorConfigPath()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking operator config: %w", err)
	}

	if c.cfg.Operator == nil {
		return fmt.Errorf("%w: node not enrolled and no operator configuration supplied", interfaces.ErrMalformedInput)
	}
	c.cfg.Log.Info("enrolling node", slog.String("account_id", c.cfg.Operator.AccountID.String()))
	return c.cfg.Operator.Save(c.cfg.Home)
}

// awaitSecrets blocks until both key secrets hold real material, then
// refreshes the on-disk snapshot. The store is authoritative at boot; the
// snapshot exists so resets can restore identity without re-contacting it.
func (c *Controller) awaitSecrets(ctx context.Context) (*nodestate.SecretSnapshot, error) {
	waiter := &secrets.Waiter{
		Store:       c.cfg.SecretStore,
		Interval:    c.cfg.SecretPollInterval,
		MaxAttempts: c.cfg.SecretMaxAttempts,
		Log:         c.cfg.Log,
	}
	resolved, err := waiter.Await(ctx, []secrets.Requirement{
		{Name: c.cfg.P2PKeySecret, Format: secrets.KeyFormat},
		{Name: c.cfg.AccountKeySecret, Format: secrets.KeyFormat},
	})
	if err != nil {
		return nil, err
	}

	snap := &nodestate.SecretSnapshot{
		P2PPrivateKey:      resolved[c.cfg.P2PKeySecret],
		AccountSigningKeys: []string{resolved[c.cfg.AccountKeySecret]},
	}
	if err := snap.Save(c.cfg.Home); err != nil {
		return nil, fmt.Errorf("writing secret snapshot: %w", err)
	}
	return snap, nil
}

func (c *Controller) containerSpec(desc *genesis.Descriptor, operator *nodestate.OperatorConfig, snap *nodestate.SecretSnapshot, bootNodes string) container.Spec {
	return container.Spec{
		Name:  c.cfg.ContainerName,
		Image: c.cfg.Image,
		Env: map[string]string{
			"MPC_ACCOUNT_ID":      operator.AccountID.String(),
			"MPC_ACCOUNT_SK":      snap.AccountSigningKeys[0],
			"MPC_P2P_PRIVATE_KEY": snap.P2PPrivateKey,
			"CHAIN_ID":            desc.ChainID().String(),
			"NEAR_RPC_URL":        c.cfg.RPCEndpoint,
			"NEAR_BOOT_NODES":     bootNodes,
			"MPC_HOME_DIR":        "/data",
		},
		Mounts: []container.Mount{{Source: c.cfg.Home.Dir, Target: "/data"}},
	}
}
