// Package container supervises the single node-process container on each
// compute unit. The supervisor's only operation is an unconditional
// stop-then-start with a fully assembled environment, which keeps restarts
// idempotent after crashes and configuration changes.
package container
