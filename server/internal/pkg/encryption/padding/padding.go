package padding

import (
	"errors"
	"fmt"
)

var ErrInvalidPadding = errors.New("invalid padding")

// Padder interface defines the padding contract
type Padder interface {
	Pad(data []byte, blockSize int) []byte
	Unpad(data []byte, blockSize int) ([]byte, error)
	Name() string
}

// PKCS7Padding appends n bytes of value n, 1 <= n <= blockSize. A full block
// of padding is added when the input is already aligned, so the result is
// never ambiguous.
type PKCS7Padding struct{}

func (p *PKCS7Padding) Name() string {
	return "PKCS7"
}

// Pad returns a new slice; data is not modified
func (p *PKCS7Padding) Pad(data []byte, blockSize int) []byte {
	paddingLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+paddingLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(paddingLen)
	}
	return padded
}

// Unpad validates and strips the trailing padding. The returned slice shares
// memory with data.
func (p *PKCS7Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrInvalidPadding, len(data), blockSize)
	}

	paddingLen := int(data[len(data)-1])
	if paddingLen == 0 || paddingLen > blockSize {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, paddingLen)
	}

	for i := len(data) - paddingLen; i < len(data); i++ {
		if data[i] != byte(paddingLen) {
			return nil, fmt.Errorf("%w: byte %d is %#02x", ErrInvalidPadding, i, data[i])
		}
	}

	return data[:len(data)-paddingLen], nil
}
