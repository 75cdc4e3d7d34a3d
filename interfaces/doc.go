// Package interfaces provides the core types and error taxonomy shared by the
// node provisioning components.
//
// # Types
//
// SecretName identifies externally managed secret material; ChainID and
// AccountID identify the ledger binding and the node's stable on-chain
// identity. BuildStatus models the remote build service's lifecycle with
// PENDING and RUNNING as the only non-terminal states.
//
// # Errors
//
// Four sentinel errors classify every fatal condition in the system:
//
//   - ErrProvisioningTimeout: a bounded wait loop ran out of budget
//   - ErrMalformedInput: a document or secret failed structural validation
//   - ErrRemoteOperationFailed: a remote job ended in a non-success terminal state
//   - ErrTransientInfra: a condition retried a bounded number of times first
//
// All wait loops in this repository have an explicit bound; nothing retries
// indefinitely.
package interfaces
