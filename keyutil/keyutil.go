// Package keyutil encodes and decodes chain key material in the prefixed
// base58 text format used by the node software: an algorithm-name prefix
// ("ed25519:" or "secp256k1:") followed by the base58-encoded key bytes.
package keyutil

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

const (
	// ED25519Prefix marks ed25519 key material.
	ED25519Prefix = "ed25519:"
	// SECP256K1Prefix marks secp256k1 key material.
	SECP256K1Prefix = "secp256k1:"
)

var (
	// ErrMissingPrefix means the value lacks a known algorithm-name prefix.
	ErrMissingPrefix = errors.New("key must start with an algorithm prefix")
	// ErrInvalidEncoding means the key body is not valid base58.
	ErrInvalidEncoding = errors.New("invalid base58 encoding")
	// ErrInvalidLength means the decoded key has an unexpected byte length.
	ErrInvalidLength = errors.New("invalid key length")
)

// HasKeyPrefix reports whether s begins with a known algorithm-name prefix.
func HasKeyPrefix(s string) bool {
	return strings.HasPrefix(s, ED25519Prefix) || strings.HasPrefix(s, SECP256K1Prefix)
}

// Validate checks that s is a well-formed prefixed key without returning the
// decoded material. Used as the format predicate for key-bearing secrets.
func Validate(s string) error {
	switch {
	case strings.HasPrefix(s, ED25519Prefix):
		_, err := DecodeED25519(s)
		return err
	case strings.HasPrefix(s, SECP256K1Prefix):
		_, err := DecodeSECP256K1(s)
		return err
	default:
		return ErrMissingPrefix
	}
}

// DecodeED25519 parses an "ed25519:" prefixed key. The body may hold either a
// 32-byte seed or the full 64-byte expanded private key.
func DecodeED25519(s string) (ed25519.PrivateKey, error) {
	body, ok := strings.CutPrefix(s, ED25519Prefix)
	if !ok {
		return nil, ErrMissingPrefix
	}

	raw, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrInvalidLength, ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

// EncodeED25519 serializes the full expanded private key.
func EncodeED25519(key ed25519.PrivateKey) string {
	return ED25519Prefix + base58.Encode(key)
}

// EncodeED25519PublicKey serializes an ed25519 public key.
func EncodeED25519PublicKey(pub ed25519.PublicKey) string {
	return ED25519Prefix + base58.Encode(pub)
}

// DecodeSECP256K1 parses a "secp256k1:" prefixed 32-byte scalar into an ECDSA
// private key on the secp256k1 curve.
func DecodeSECP256K1(s string) (*ecdsa.PrivateKey, error) {
	body, ok := strings.CutPrefix(s, SECP256K1Prefix)
	if !ok {
		return nil, ErrMissingPrefix
	}

	raw, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidLength, len(raw))
	}

	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 scalar: %w", err)
	}
	return key, nil
}

// EncodeSECP256K1PublicKey serializes the uncompressed public key point
// without the 0x04 marker byte.
func EncodeSECP256K1PublicKey(pub *ecdsa.PublicKey) string {
	raw := ethcrypto.FromECDSAPub(pub)
	// FromECDSAPub returns 65 bytes led by the uncompressed point marker.
	return SECP256K1Prefix + base58.Encode(raw[1:])
}
