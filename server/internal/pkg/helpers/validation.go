package helpers

import (
	"encoding/hex"
	"errors"
	"fmt"

	"Sealbox/server/internal/pkg/encryption"
	"Sealbox/server/internal/storage"
)

var (
	ErrInvalidHex       = errors.New("invalid hex")
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotOwner         = errors.New("document belongs to another user")
)

// DecodeHex decodes a hex-encoded request field, naming the field on error
func DecodeHex(field, value string) ([]byte, error) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidHex, field, err)
	}
	return b, nil
}

// DecodeKey decodes a hex AES-128 key
func DecodeKey(value string) ([]byte, error) {
	key, err := DecodeHex("key", value)
	if err != nil {
		return nil, err
	}
	if len(key) != encryption.AESKeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", encryption.ErrInvalidKeySize, encryption.AESKeySize, len(key))
	}
	return key, nil
}

// ValidateDocumentOwner checks that a document exists and belongs to userID
func ValidateDocumentOwner(doc *storage.Document, userID int64) error {
	if doc == nil {
		return ErrDocumentNotFound
	}
	if doc.OwnerID != userID {
		return ErrNotOwner
	}
	return nil
}
