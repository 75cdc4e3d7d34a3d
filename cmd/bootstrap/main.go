package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mpcops/node-provisioning/bootstrap"
	"github.com/mpcops/node-provisioning/cmd/flags"
	"github.com/mpcops/node-provisioning/common"
	"github.com/mpcops/node-provisioning/container"
	"github.com/mpcops/node-provisioning/discovery"
	"github.com/mpcops/node-provisioning/genesis"
	"github.com/mpcops/node-provisioning/httpserver"
	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/nodestate"
	"github.com/mpcops/node-provisioning/reset"
	"github.com/mpcops/node-provisioning/secrets"
)

var cliFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:     "home-dir",
		Required: true,
		Usage:    "node home directory (durable state)",
		EnvVars:  []string{"MPC_HOME_DIR"},
	},
	&cli.StringFlag{
		Name:     "account-id",
		Required: true,
		Usage:    "node account identifier on the chain",
		EnvVars:  []string{"MPC_ACCOUNT_ID"},
	},
	&cli.StringFlag{
		Name:    "responder-account-id",
		Usage:   "account used to sign responses; defaults to the node account",
		EnvVars: []string{"MPC_RESPONDER_ACCOUNT_ID"},
	},
	&cli.StringFlag{
		Name:     "vault-addr",
		Required: true,
		Usage:    "Vault server address",
		EnvVars:  []string{"VAULT_ADDR"},
	},
	&cli.StringFlag{
		Name:     "vault-token",
		Required: true,
		Usage:    "Vault token",
		EnvVars:  []string{"VAULT_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "vault-mount",
		Value:   "secret",
		Usage:   "Vault KV v2 mount path",
		EnvVars: []string{"VAULT_MOUNT"},
	},
	&cli.StringFlag{
		Name:    "vault-path",
		Value:   "mpc",
		Usage:   "path within the mount holding this fleet's secrets",
		EnvVars: []string{"VAULT_PATH"},
	},
	&cli.StringFlag{
		Name:    "p2p-key-secret",
		Value:   "p2p_key",
		Usage:   "secret name of the peer-network private key",
		EnvVars: []string{"P2P_KEY_SECRET"},
	},
	&cli.StringFlag{
		Name:    "account-key-secret",
		Value:   "account_key",
		Usage:   "secret name of the chain-account signing key",
		EnvVars: []string{"ACCOUNT_KEY_SECRET"},
	},
	&cli.StringFlag{
		Name:     "genesis-url",
		Required: true,
		Usage:    "genesis descriptor location (s3://, file://, ipfs://)",
		EnvVars:  []string{"GENESIS_URL"},
	},
	&cli.StringFlag{
		Name:    "dns-server",
		Usage:   "DNS server for peer discovery (host:port); empty disables discovery",
		EnvVars: []string{"DISCOVERY_DNS_SERVER"},
	},
	&cli.StringFlag{
		Name:    "discovery-domain",
		Usage:   "SRV record name listing fleet peers",
		EnvVars: []string{"DISCOVERY_DOMAIN"},
	},
	&cli.StringFlag{
		Name:    "rpc-url",
		Value:   "http://127.0.0.1:3030",
		Usage:   "chain RPC endpoint handed to the node process",
		EnvVars: []string{"NEAR_RPC_URL"},
	},
	&cli.StringFlag{
		Name:    "container-name",
		Value:   "mpc-node",
		Usage:   "name of the supervised node container",
		EnvVars: []string{"CONTAINER_NAME"},
	},
	&cli.StringFlag{
		Name:     "node-image",
		Required: true,
		Usage:    "container image of the node process",
		EnvVars:  []string{"NODE_IMAGE"},
	},
	&cli.StringFlag{
		Name:    "engine",
		Value:   "docker",
		Usage:   "container engine binary, docker or podman",
		EnvVars: []string{"CONTAINER_ENGINE"},
	},
	&cli.StringFlag{
		Name:     "node-binary",
		Required: true,
		Usage:    "node binary used for chain init",
		EnvVars:  []string{"NODE_BINARY"},
	},
	&cli.StringFlag{
		Name:    "backup-secret",
		Usage:   "when set, seals the reset backup at rest",
		EnvVars: []string{"BACKUP_SECRET"},
	},
	&cli.BoolFlag{
		Name:    "state-sync",
		Value:   true,
		Usage:   "enable state sync in the generated chain config",
		EnvVars: []string{"STATE_SYNC"},
	},
	&cli.IntSliceFlag{
		Name:    "tracked-shards",
		Usage:   "shards the node tracks",
		EnvVars: []string{"TRACKED_SHARDS"},
	},
	&cli.StringFlag{
		Name:    "listen-addr",
		Value:   "127.0.0.1:8080",
		Usage:   "address of the bootstrap status API",
		EnvVars: []string{"LISTEN_ADDR"},
	},
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "node-bootstrap",
		Usage:   "Boot and recover a threshold-signing node",
		Version: common.Version,
		Flags:   append(cliFlags, flags.LogServiceFlagFn("node-bootstrap")),
		Action:  runBootstrap,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBootstrap(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	home, err := nodestate.NewHome(cCtx.String("home-dir"))
	if err != nil {
		return err
	}

	accountID, err := interfaces.NewAccountID(cCtx.String("account-id"))
	if err != nil {
		return err
	}
	responderID := accountID
	if raw := cCtx.String("responder-account-id"); raw != "" {
		if responderID, err = interfaces.NewAccountID(raw); err != nil {
			return err
		}
	}

	store, err := secrets.NewVaultStore(
		cCtx.String("vault-addr"), cCtx.String("vault-token"),
		cCtx.String("vault-mount"), cCtx.String("vault-path"), logger)
	if err != nil {
		return err
	}

	source, err := genesis.SourceFor(cCtx.String("genesis-url"), logger)
	if err != nil {
		return err
	}

	var peerResolver bootstrap.PeerResolver
	if dnsServer := cCtx.String("dns-server"); dnsServer != "" {
		peerResolver = discovery.NewResolver(dnsServer, cCtx.String("discovery-domain"), logger)
	}

	controller := bootstrap.New(bootstrap.Config{
		Home: home,
		Operator: &nodestate.OperatorConfig{
			AccountID:          accountID,
			ResponderAccountID: responderID,
		},
		SecretStore:      store,
		P2PKeySecret:     interfaces.SecretName(cCtx.String("p2p-key-secret")),
		AccountKeySecret: interfaces.SecretName(cCtx.String("account-key-secret")),
		GenesisSource:    source,
		Discovery:        peerResolver,
		Runtime:          &container.CLIRuntime{Binary: cCtx.String("engine"), Log: logger},
		Init:             &reset.BinaryInit{Binary: cCtx.String("node-binary"), Log: logger},
		ContainerName:    cCtx.String("container-name"),
		Image:            cCtx.String("node-image"),
		RPCEndpoint:      cCtx.String("rpc-url"),
		Patch: nodestate.PatchOptions{
			StateSyncEnabled: cCtx.Bool("state-sync"),
			TrackedShards:    cCtx.IntSlice("tracked-shards"),
		},
		BackupSecret: []byte(cCtx.String("backup-secret")),
		Log:          logger,
	})

	srv := httpserver.New(flags.ConfigureServer(cCtx, logger, cCtx.String("listen-addr")), controller)
	srv.RunInBackground()

	if err := controller.Run(cCtx.Context); err != nil {
		logger.Error("bootstrap failed", "err", err)
		srv.Shutdown()
		return err
	}
	srv.SetReady(true)
	logger.Info("bootstrap complete, node container running")

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	srv.Shutdown()
	return nil
}
