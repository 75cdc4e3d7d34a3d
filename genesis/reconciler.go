package genesis

import (
	"fmt"

	"github.com/mpcops/node-provisioning/nodestate"
)

// Decision is the reconciler's output: whether the node's local chain state
// must be wiped and rebuilt from the genesis descriptor, and why.
type Decision struct {
	Reset  bool
	Reason string
}

// NeedsReset decides whether the local chain configuration is compatible
// with the externally supplied genesis descriptor. It is a pure decision and
// performs no mutation.
//
// Policy, in order:
//
//  1. no local chain configuration -> reset
//  2. local configuration lacks required structural sections -> reset
//  3. both carry a chain identifier and they differ -> reset
//  4. otherwise no reset
//
// The ordering matters: a missing or malformed configuration is worse than a
// mismatched identifier, because an unreadable configuration makes the
// identifier comparison meaningless.
func NeedsReset(local *nodestate.ChainConfig, desc *Descriptor) Decision {
	if local == nil {
		return Decision{Reset: true, Reason: "no local chain configuration"}
	}

	if err := local.Validate(); err != nil {
		return Decision{Reset: true, Reason: fmt.Sprintf("local chain configuration malformed: %v", err)}
	}

	localID := local.ChainID()
	genesisID := desc.ChainID()
	if localID != "" && genesisID != "" && localID != genesisID {
		return Decision{Reset: true, Reason: fmt.Sprintf("chain identifier drift: local %q, genesis %q", localID, genesisID)}
	}

	return Decision{}
}
