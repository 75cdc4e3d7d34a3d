// Package discovery resolves the peer bootstrap list for a node from DNS SRV
// records published by the fleet's service-discovery registry. A momentarily
// empty registry is a transient condition: resolution retries a bounded
// number of times before giving up.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/poll"
)

// Peer is one resolved fleet member.
type Peer struct {
	// Host is the SRV target with the trailing dot stripped.
	Host string

	// Port is the SRV port.
	Port uint16
}

// Addr formats the peer as host:port.
func (p Peer) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Resolver queries a DNS server for the fleet's SRV records.
type Resolver struct {
	// Server is the DNS server address (host:port).
	Server string

	// Domain is the SRV record name to query.
	Domain string

	// Attempts bounds retries while the registry is empty or unreachable.
	Attempts int

	// Interval is the sleep between retries.
	Interval time.Duration

	Log *slog.Logger
}

// NewResolver creates a resolver with default retry bounds.
func NewResolver(server, domain string, log *slog.Logger) *Resolver {
	return &Resolver{
		Server:   server,
		Domain:   domain,
		Attempts: 5,
		Interval: 3 * time.Second,
		Log:      log,
	}
}

// Peers resolves the current fleet membership, sorted by address for a stable
// boot-node list. An empty answer after all retries is a transient
// infrastructure error: the registry exists but nothing has registered yet.
func (r *Resolver) Peers(ctx context.Context) ([]Peer, error) {
	var peers []Peer
	err := poll.Retry(ctx, r.Attempts, r.Interval, func(ctx context.Context) error {
		resolved, err := r.query(ctx)
		if err != nil {
			r.Log.Debug("peer discovery query failed, will retry", "err", err)
			return err
		}
		if len(resolved) == 0 {
			return fmt.Errorf("no SRV records for %s", r.Domain)
		}
		peers = resolved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: resolving peers for %s via %s: %v",
			interfaces.ErrTransientInfra, r.Domain, r.Server, err)
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Addr() < peers[j].Addr() })
	r.Log.Info("resolved peer bootstrap list", slog.String("domain", r.Domain), slog.Int("peers", len(peers)))
	return peers, nil
}

// BootNodes renders the comma-separated boot-node list handed to the node
// process environment.
func BootNodes(peers []Peer) string {
	addrs := make([]string, 0, len(peers))
	for _, p := range peers {
		addrs = append(addrs, p.Addr())
	}
	return strings.Join(addrs, ",")
}

func (r *Resolver) query(ctx context.Context) ([]Peer, error) {
	m := new(dns.Msg)
	m.Id = dns.Id()
	m.RecursionDesired = true
	m.Question = []dns.Question{{
		Name:   dns.Fqdn(r.Domain),
		Qtype:  dns.TypeSRV,
		Qclass: dns.ClassINET,
	}}

	c := new(dns.Client)
	in, _, err := c.ExchangeContext(ctx, m, r.Server)
	if err != nil {
		return nil, fmt.Errorf("SRV exchange with %s: %w", r.Server, err)
	}

	peers := make([]Peer, 0, len(in.Answer))
	for _, answer := range in.Answer {
		if srv, ok := answer.(*dns.SRV); ok {
			peers = append(peers, Peer{Host: strings.TrimSuffix(srv.Target, "."), Port: srv.Port})
		}
	}
	return peers, nil
}
