// Package interfaces defines the shared vocabulary types for the node
// provisioning system. It provides the contract between components without
// implementation details.
package interfaces

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// PlaceholderSentinel is the well-known value written into a secret slot by
// the provisioning layer before real material is available. Its presence
// means "not yet provisioned".
const PlaceholderSentinel = "PLACEHOLDER"

// SecretName identifies a secret in the external secret store.
type SecretName string

// String returns the secret name as a string.
func (n SecretName) String() string {
	return string(n)
}

// Validate checks the secret name is non-empty and uses only characters the
// secret store accepts.
func (n SecretName) Validate() error {
	if n == "" {
		return errors.New("secret name must not be empty")
	}
	if !secretNameRegex.MatchString(string(n)) {
		return fmt.Errorf("invalid secret name %q", string(n))
	}
	return nil
}

var secretNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-/.]+$`)

// ChainID names the ledger and genesis a node's configuration is bound to.
// A mismatch between the local configuration's chain ID and the genesis
// descriptor's chain ID indicates configuration drift.
type ChainID string

// String returns the chain ID as a string.
func (c ChainID) String() string {
	return string(c)
}

// AccountID is the node's externally assigned stable identifier on the chain.
type AccountID string

// NewAccountID validates and returns an account identifier.
func NewAccountID(s string) (AccountID, error) {
	if len(s) < 2 || len(s) > 64 {
		return "", fmt.Errorf("account id %q: length must be between 2 and 64", s)
	}
	if !accountIDRegex.MatchString(s) {
		return "", fmt.Errorf("account id %q: must be lowercase alphanumeric with separators", s)
	}
	return AccountID(s), nil
}

// String returns the account ID as a string.
func (a AccountID) String() string {
	return string(a)
}

var accountIDRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9._\-]*[a-z0-9])?$`)

// BuildStatus is the state reported by the remote build service for a build.
type BuildStatus string

const (
	// BuildPending means the build was accepted but has not started running.
	BuildPending BuildStatus = "PENDING"
	// BuildRunning means the build is in progress.
	BuildRunning BuildStatus = "RUNNING"
	// BuildSucceeded is the only successful terminal status.
	BuildSucceeded BuildStatus = "SUCCEEDED"
	// BuildFailed means the build ran and failed.
	BuildFailed BuildStatus = "FAILED"
	// BuildFaulted means the build service hit an internal fault.
	BuildFaulted BuildStatus = "FAULTED"
	// BuildStopped means the build was stopped externally.
	BuildStopped BuildStatus = "STOPPED"
	// BuildTimedOut means the build exceeded the service-side time limit.
	BuildTimedOut BuildStatus = "TIMED_OUT"
)

// Terminal reports whether the build can transition no further.
func (s BuildStatus) Terminal() bool {
	switch s {
	case BuildPending, BuildRunning:
		return false
	default:
		return true
	}
}

// String returns the status name.
func (s BuildStatus) String() string {
	return string(s)
}

// ParseBuildStatus normalizes a status string reported by a build service.
func ParseBuildStatus(s string) (BuildStatus, error) {
	switch BuildStatus(strings.ToUpper(s)) {
	case BuildPending, BuildRunning, BuildSucceeded, BuildFailed, BuildFaulted, BuildStopped, BuildTimedOut:
		return BuildStatus(strings.ToUpper(s)), nil
	default:
		return "", fmt.Errorf("unknown build status %q", s)
	}
}
