package interfaces

import "errors"

// Error taxonomy shared across the bootstrap controller and the build
// orchestrator. Callers wrap these with fmt.Errorf("%w: ...") so errors.Is
// works across package boundaries.
var (
	// ErrProvisioningTimeout means a wait loop exhausted its budget: a secret
	// never resolved, or a build never reached a terminal state.
	ErrProvisioningTimeout = errors.New("provisioning timed out")

	// ErrMalformedInput means a resolved secret failed its format predicate,
	// or a genesis/config document lacks required structure.
	ErrMalformedInput = errors.New("malformed input")

	// ErrRemoteOperationFailed means a remote operation reached a terminal
	// state other than success.
	ErrRemoteOperationFailed = errors.New("remote operation failed")

	// ErrTransientInfra marks conditions expected to clear on their own, such
	// as a device not yet visible or an empty registry lookup. These are
	// retried a bounded number of times before escalating to fatal.
	ErrTransientInfra = errors.New("transient infrastructure error")

	// ErrSecretNotFound means the secret store has no value at the given name.
	ErrSecretNotFound = errors.New("secret not found")
)
