package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/keyutil"
	"github.com/mpcops/node-provisioning/poll"
)

// Format is a per-secret predicate. A resolved value failing its predicate is
// fatal and fails the whole wait immediately.
type Format func(value string) error

// AnyFormat accepts any non-placeholder value.
func AnyFormat(string) error { return nil }

// KeyFormat accepts prefixed base58 key material ("ed25519:..." or
// "secp256k1:...").
func KeyFormat(value string) error {
	return keyutil.Validate(value)
}

// Requirement names one secret the node cannot boot without.
type Requirement struct {
	Name   interfaces.SecretName
	Format Format
}

const (
	// DefaultInterval is the fixed delay between resolution attempts.
	DefaultInterval = 10 * time.Second
	// DefaultMaxAttempts bounds the number of resolution attempts.
	DefaultMaxAttempts = 60
)

// Waiter blocks node startup until every required secret resolves to a real,
// well-formed value. Progress is logged through Log; resolved values only
// ever travel through the Await return value so log output can never end up
// in persisted secret material.
type Waiter struct {
	Store Store

	// Interval and MaxAttempts bound the polling loop. Zero values select
	// DefaultInterval and DefaultMaxAttempts.
	Interval    time.Duration
	MaxAttempts int

	Log *slog.Logger
}

// Await polls the store until every requirement resolves to a value that is
// not the placeholder sentinel and passes its format predicate. Returned
// values are trimmed of incidental whitespace.
//
// A requirement still unresolved at budget exhaustion yields an error wrapping
// interfaces.ErrProvisioningTimeout naming the secret. A resolved value
// failing its predicate yields interfaces.ErrMalformedInput immediately.
func (w *Waiter) Await(ctx context.Context, reqs []Requirement) (map[interfaces.SecretName]string, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := w.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for _, req := range reqs {
		if err := req.Name.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err)
		}
	}

	resolved := make(map[interfaces.SecretName]string, len(reqs))

	err := poll.Until(ctx, poll.Config{Interval: interval, MaxAttempts: maxAttempts}, func(ctx context.Context) (bool, error) {
		for _, req := range reqs {
			if _, done := resolved[req.Name]; done {
				continue
			}

			value, err := w.Store.Resolve(ctx, req.Name)
			if err != nil {
				// Missing secrets and unreachable stores are expected while
				// the provisioning layer catches up; keep polling.
				w.Log.Debug("secret not yet resolvable", slog.String("secret", req.Name.String()), "err", err)
				continue
			}

			value = strings.TrimSpace(value)
			if value == interfaces.PlaceholderSentinel {
				w.Log.Debug("secret still holds placeholder", slog.String("secret", req.Name.String()))
				continue
			}

			format := req.Format
			if format == nil {
				format = AnyFormat
			}
			if err := format(value); err != nil {
				return false, fmt.Errorf("%w: secret %s failed format check: %v", interfaces.ErrMalformedInput, req.Name, err)
			}

			resolved[req.Name] = value
			w.Log.Info("secret resolved", slog.String("secret", req.Name.String()))
		}

		return len(resolved) == len(reqs), nil
	})

	if err != nil {
		if errors.Is(err, poll.ErrBudgetExceeded) {
			return nil, fmt.Errorf("%w: secrets never provisioned: %s",
				interfaces.ErrProvisioningTimeout, strings.Join(w.unresolvedNames(reqs, resolved), ", "))
		}
		return nil, err
	}

	return resolved, nil
}

func (w *Waiter) unresolvedNames(reqs []Requirement, resolved map[interfaces.SecretName]string) []string {
	var missing []string
	for _, req := range reqs {
		if _, ok := resolved[req.Name]; !ok {
			missing = append(missing, req.Name.String())
		}
	}
	sort.Strings(missing)
	return missing
}
