package modes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"Sealbox/server/internal/pkg/encryption"
)

var ErrMessageTooShort = errors.New("message shorter than IV")

// EncryptMessage encrypts plaintext with AES-128 under a fresh random IV and
// returns IV || ciphertext. CBC padding is applied transparently.
func EncryptMessage(mode Mode, key, plaintext []byte) ([]byte, error) {
	return encryptMessage(rand.Reader, mode, key, plaintext)
}

func encryptMessage(random io.Reader, mode Mode, key, plaintext []byte) ([]byte, error) {
	cipher := encryption.NewAES()
	if err := validateKey(cipher, key); err != nil {
		return nil, err
	}

	iv := make([]byte, cipher.BlockSize())
	if _, err := io.ReadFull(random, iv); err != nil {
		return nil, fmt.Errorf("generate IV: %w", err)
	}

	ciphertext, err := Encrypt(cipher, mode, key, iv, plaintext)
	if err != nil {
		return nil, err
	}

	message := make([]byte, 0, len(iv)+len(ciphertext))
	message = append(message, iv...)
	return append(message, ciphertext...), nil
}

// DecryptMessage reverses EncryptMessage: the leading 16 bytes are the IV and
// the rest is ciphertext. For CBC the PKCS#7 padding is validated and removed.
func DecryptMessage(mode Mode, key, message []byte) ([]byte, error) {
	cipher := encryption.NewAES()
	if err := validateKey(cipher, key); err != nil {
		return nil, err
	}
	blockSize := cipher.BlockSize()
	if len(message) < blockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooShort, len(message))
	}

	iv, ciphertext := message[:blockSize], message[blockSize:]
	plaintext, err := Decrypt(cipher, mode, key, iv, ciphertext, UnknownSize)
	if err != nil {
		return nil, err
	}

	if mode == CBC {
		return pkcs7.Unpad(plaintext, blockSize)
	}
	return plaintext, nil
}
