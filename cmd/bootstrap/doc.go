// Package main (cmd/bootstrap) implements the boot and recovery controller
// for a threshold-signing node.
//
// On startup the controller waits for the node's key secrets to be
// provisioned in Vault, fetches the published genesis descriptor, and checks
// the local chain state against it. A missing, malformed, or drifted chain
// configuration triggers a full reset: the node container is stopped, the
// regenerable chain state is wiped and rebuilt from genesis, and the node's
// durable identity material (operator configuration and secret snapshot) is
// preserved byte-identically across the wipe. The controller then resolves
// the peer bootstrap list from DNS SRV records and starts the node container
// with a fully assembled environment.
//
// The sequence runs once per boot. While it runs, and afterwards while the
// node container is up, a small status API reports the current bootstrap
// phase and serves liveness, readiness, and drain endpoints.
//
// Configuration is handled through command-line flags; every flag can also be
// supplied through its environment variable. The binary exits non-zero if any
// phase of the boot sequence fails: a failed boot never leaves a partially
// started node container behind.
package main
