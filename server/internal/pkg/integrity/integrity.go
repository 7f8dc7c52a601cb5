// Package integrity appends an encrypted digest to content and later checks
// that the content still matches it.
//
// A sealed record is content || IV(16) || CFB(key, IV, digest.Sum(content)).
// There is no version field: changing the digest, the cipher tables or the
// framing breaks every previously sealed record.
package integrity

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"Sealbox/server/internal/pkg/digest"
	"Sealbox/server/internal/pkg/encryption/modes"
)

// TagSize is the number of bytes Seal appends
const TagSize = 32

// tagMode is the chaining mode used for the digest; CFB keeps the encrypted
// digest at exactly digest.Size bytes.
const tagMode = modes.CFB

var ErrMalformed = errors.New("sealed content shorter than integrity tag")

// Seal returns content followed by its integrity tag. content is not modified.
func Seal(content, key []byte) ([]byte, error) {
	tag, err := Tag(content, key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(content)+len(tag))
	sealed = append(sealed, content...)
	return append(sealed, tag...), nil
}

// Tag computes the 32-byte integrity tag for content
func Tag(content, key []byte) ([]byte, error) {
	sum := digest.Sum(content)
	tag, err := modes.EncryptMessage(tagMode, key, sum[:])
	if err != nil {
		return nil, fmt.Errorf("encrypt digest: %w", err)
	}
	return tag, nil
}

// Split separates sealed content into body and tag
func Split(sealed []byte) (body, tag []byte, err error) {
	if len(sealed) < TagSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(sealed))
	}
	cut := len(sealed) - TagSize
	return sealed[:cut], sealed[cut:], nil
}

// Verify reports whether the body of sealed still matches its tag. A
// modified body is reported as false with a nil error; errors are reserved
// for input that cannot be checked at all.
func Verify(sealed, key []byte) (bool, error) {
	body, tag, err := Split(sealed)
	if err != nil {
		return false, err
	}

	stored, err := modes.DecryptMessage(tagMode, key, tag)
	if err != nil {
		return false, fmt.Errorf("decrypt tag: %w", err)
	}

	sum := digest.Sum(body)
	return subtle.ConstantTimeCompare(sum[:], stored) == 1, nil
}
