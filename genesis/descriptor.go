package genesis

import (
	"encoding/json"
	"fmt"

	"github.com/mpcops/node-provisioning/interfaces"
)

// Descriptor is the externally supplied genesis document. It is treated as
// immutable once fetched: the raw bytes are preserved verbatim so the local
// init routine's side effects can always be undone.
type Descriptor struct {
	raw     []byte
	chainID interfaces.ChainID
}

// ParseDescriptor validates the genesis document and extracts its chain
// identifier.
func ParseDescriptor(raw []byte) (*Descriptor, error) {
	var doc struct {
		ChainID string `json:"chain_id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: genesis descriptor is not valid JSON: %v", interfaces.ErrMalformedInput, err)
	}
	if doc.ChainID == "" {
		return nil, fmt.Errorf("%w: genesis descriptor carries no chain_id", interfaces.ErrMalformedInput)
	}

	copied := make([]byte, len(raw))
	copy(copied, raw)

	return &Descriptor{raw: copied, chainID: interfaces.ChainID(doc.ChainID)}, nil
}

// ChainID returns the chain identifier the descriptor is bound to.
func (d *Descriptor) ChainID() interfaces.ChainID {
	return d.chainID
}

// Bytes returns a copy of the pristine descriptor content.
func (d *Descriptor) Bytes() []byte {
	copied := make([]byte, len(d.raw))
	copy(copied, d.raw)
	return copied
}
