// Package cryptoutil seals reset-time backups of secret material at rest.
// The seal key is derived from an operator-held backup secret, so a backup
// left behind by an interrupted reset is not plaintext key material.
package cryptoutil

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
)

// DeriveBackupKey stretches the operator-held backup secret into a seal key.
func DeriveBackupKey(secret, salt []byte) [32]byte {
	var key [32]byte
	derived := argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
	copy(key[:], derived)
	return key
}

// Seal encrypts plaintext under the backup secret. Output layout:
// [salt][nonce][box].
func Seal(secret, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := DeriveBackupKey(secret, salt)
	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &key), nil
}

// Open decrypts a sealed backup.
func Open(secret, sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, errors.New("sealed backup too short")
	}

	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	key := DeriveBackupKey(secret, salt)
	plaintext, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, &key)
	if !ok {
		return nil, errors.New("backup authentication failed: wrong key or corrupted data")
	}
	return plaintext, nil
}
