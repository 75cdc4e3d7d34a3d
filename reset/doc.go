// Package reset transitions a node from a possibly inconsistent on-disk state
// to a fresh, self-consistent one derived from the current genesis descriptor.
//
// The sequence is: stop the node process, back up durable identity material,
// delete all regenerable chain state, re-fetch the genesis descriptor, run
// the external init routine (snapshotting the genesis around it, since init
// may rewrite hash-sensitive fields), patch the generated configuration as a
// whole document, restore identity material, rebuild the identity key from
// the restored secrets, and remove any validator-only key material.
//
// Failures in the destructive middle of the sequence are fatal and abort the
// boot - no partially initialized state is ever left marked as valid. The
// initial container stop and the final backup cleanup are best-effort.
package reset
