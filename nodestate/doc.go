// Package nodestate models the durable on-disk record of a single node: its
// home directory layout, the chain configuration document, the operator
// configuration, the secret material snapshot, and the identity key files.
//
// Two invariants govern this package:
//
//   - The operator configuration and the secret snapshot survive any reset
//     byte-identically.
//   - The chain configuration and chain state are always consistent with
//     exactly one genesis descriptor, identified by its chain_id field.
//
// Chain configuration mutation is always parse-mutate-serialize of the whole
// document; no code path performs partial in-place edits of the file.
package nodestate
