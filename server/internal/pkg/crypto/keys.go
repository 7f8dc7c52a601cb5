package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"Sealbox/server/internal/pkg/encryption"
)

const (
	// SaltSize is the length of salts produced by NewSalt
	SaltSize = 16
	// DefaultIterations is the PBKDF2 work factor when none is configured
	DefaultIterations = 100000
)

// GenerateKey returns a fresh random AES-128 key
func GenerateKey() ([]byte, error) {
	return randomBytes(encryption.AESKeySize)
}

// NewSalt returns a random salt for DeriveKey
func NewSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// DeriveKey stretches a passphrase into an AES-128 key with PBKDF2-SHA256.
// The same passphrase, salt and iteration count always give the same key.
func DeriveKey(passphrase string, salt []byte, iterations int) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("salt cannot be empty")
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, encryption.AESKeySize, sha256.New), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}
