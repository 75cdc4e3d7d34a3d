// Package bootstrap runs a node's boot and recovery sequence: wait for real
// secret material, check the local chain state against the published genesis
// descriptor, reset if they disagree, resolve the peer bootstrap list, and
// start the node container with a fully assembled environment.
//
// The sequence is single-threaded and runs once per boot. All inputs arrive
// through an explicit immutable Config; no phase reads the ambient process
// environment.
package bootstrap
