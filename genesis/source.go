package genesis

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/poll"
)

// Source fetches the raw genesis descriptor from wherever it is published.
// The descriptor is delivered out-of-band because it is too large for inline
// provisioning parameters.
type Source interface {
	// Fetch retrieves the current descriptor content.
	Fetch(ctx context.Context) ([]byte, error)

	// Location identifies the source for logs and errors.
	Location() string
}

// SourceFor creates a genesis source from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - s3://bucket/key?region=us-west-2 - S3 or compatible object storage
//   - file:///path/to/genesis.json - local filesystem
//   - ipfs://host:port/cid - IPFS node
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func SourceFor(locationURI string, log *slog.Logger) (Source, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid genesis location URI: %v", interfaces.ErrMalformedInput, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		return newS3SourceFromURL(u, log)
	case "file":
		return newFileSourceFromURL(u, log)
	case "ipfs":
		return newIPFSSourceFromURL(u, log)
	default:
		return nil, fmt.Errorf("unsupported genesis source scheme: %s", u.Scheme)
	}
}

// FetchDescriptor retrieves and parses the genesis descriptor, retrying
// transient fetch failures a bounded number of times before escalating.
func FetchDescriptor(ctx context.Context, src Source, log *slog.Logger) (*Descriptor, error) {
	var raw []byte
	err := poll.Retry(ctx, 3, 5*time.Second, func(ctx context.Context) error {
		var fetchErr error
		raw, fetchErr = src.Fetch(ctx)
		if fetchErr != nil {
			log.Warn("genesis fetch failed, will retry",
				slog.String("location", src.Location()), "err", fetchErr)
		}
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: genesis descriptor unavailable at %s: %v",
			interfaces.ErrTransientInfra, src.Location(), err)
	}

	return ParseDescriptor(raw)
}
