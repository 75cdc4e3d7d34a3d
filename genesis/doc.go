// Package genesis handles the externally supplied genesis descriptor: where
// it comes from, what identifies it, and whether the node's local chain state
// is still compatible with it.
//
// Descriptors are delivered out-of-band (object storage, IPFS, or a staged
// file) because they are too large for inline provisioning parameters. Once
// fetched, a descriptor is immutable; it is re-fetched only when the
// controller suspects drift.
//
// NeedsReset implements the drift-detection policy: a missing or structurally
// invalid local configuration always outranks a chain-identifier mismatch,
// and a consistent node repeatedly reconciles to "no reset".
package genesis
