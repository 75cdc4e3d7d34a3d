package genesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/mpcops/node-provisioning/interfaces"
)

// IPFSSource fetches the genesis descriptor from an IPFS node. Content
// addressing fits genesis delivery well: the CID pins the exact descriptor a
// deployment was cut against.
type IPFSSource struct {
	shell       *shell.Shell
	cid         string
	log         *slog.Logger
	locationURI string
}

// NewIPFSSource creates an IPFS-backed genesis source connected to the given
// API host and port.
func NewIPFSSource(host, port, cid string, log *slog.Logger) (*IPFSSource, error) {
	if cid == "" {
		return nil, fmt.Errorf("ipfs genesis source requires a CID")
	}
	apiURL := fmt.Sprintf("%s:%s", host, port)
	return &IPFSSource{
		shell:       shell.NewShell(apiURL),
		cid:         cid,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/%s", apiURL, cid),
	}, nil
}

func newIPFSSourceFromURL(u *url.URL, log *slog.Logger) (*IPFSSource, error) {
	port := u.Port()
	if port == "" {
		port = "5001"
	}
	return NewIPFSSource(u.Hostname(), port, strings.TrimPrefix(u.Path, "/"), log)
}

// Fetch retrieves the descriptor content by CID.
func (s *IPFSSource) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()

	if !s.shell.IsUp() {
		return nil, fmt.Errorf("%w: IPFS node unavailable at %s", interfaces.ErrTransientInfra, s.locationURI)
	}

	reader, err := s.shell.Cat(s.cid)
	if err != nil {
		return nil, fmt.Errorf("failed to cat genesis CID: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis content: %w", err)
	}

	s.log.Debug("Fetched genesis descriptor from IPFS",
		slog.String("cid", s.cid),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Location returns the URI that identifies this source.
func (s *IPFSSource) Location() string {
	return s.locationURI
}
