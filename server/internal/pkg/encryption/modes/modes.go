package modes

import (
	"errors"
	"fmt"
	"strings"

	"Sealbox/server/internal/pkg/encryption"
	"Sealbox/server/internal/pkg/encryption/padding"
)

// Mode selects how a block cipher is chained over a multi-block message
type Mode int

const (
	// CFB - Cipher Feedback: keystream block i is E(ciphertext block i-1), no padding
	CFB Mode = iota
	// CBC - Cipher Block Chaining: PKCS#7 padded, full blocks only
	CBC
	// OFB - Output Feedback: keystream block i is E(keystream block i-1), no padding
	OFB
)

// UnknownSize tells Decrypt the original plaintext length is not known, so
// CBC output keeps its padding bytes.
const UnknownSize = -1

var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrInvalidSize = errors.New("invalid original size")
)

var modeNames = map[Mode]string{
	CFB: "CFB",
	CBC: "CBC",
	OFB: "OFB",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode for a case-insensitive name such as "cbc"
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

var pkcs7 = &padding.PKCS7Padding{}

// Encrypt encrypts plaintext under the given mode. CBC pads with PKCS#7 and
// always returns whole blocks; CFB and OFB return exactly len(plaintext) bytes.
func Encrypt(cipher encryption.SymmetricCipher, mode Mode, key, iv, plaintext []byte) ([]byte, error) {
	if err := validate(cipher, key, iv); err != nil {
		return nil, err
	}

	switch mode {
	case CBC:
		return encryptCBC(cipher, key, iv, pkcs7.Pad(plaintext, cipher.BlockSize()))
	case CFB, OFB:
		return xorKeyStream(cipher, mode, key, iv, plaintext, false)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

// Decrypt reverses Encrypt. For CBC, originalSize trims the result to the
// plaintext length before padding; pass UnknownSize to get the padded
// plaintext back. The stream modes accept UnknownSize or exactly
// len(ciphertext); any other size is ErrInvalidSize.
func Decrypt(cipher encryption.SymmetricCipher, mode Mode, key, iv, ciphertext []byte, originalSize int) ([]byte, error) {
	if err := validate(cipher, key, iv); err != nil {
		return nil, err
	}

	switch mode {
	case CBC:
		plaintext, err := decryptCBC(cipher, key, iv, ciphertext)
		if err != nil {
			return nil, err
		}
		if originalSize == UnknownSize {
			return plaintext, nil
		}
		if originalSize < 0 || originalSize > len(plaintext) {
			return nil, fmt.Errorf("%w: %d for %d decrypted bytes", ErrInvalidSize, originalSize, len(plaintext))
		}
		return plaintext[:originalSize], nil
	case CFB, OFB:
		if originalSize != UnknownSize && originalSize != len(ciphertext) {
			return nil, fmt.Errorf("%w: %d for %d ciphertext bytes", ErrInvalidSize, originalSize, len(ciphertext))
		}
		return xorKeyStream(cipher, mode, key, iv, ciphertext, true)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

func validate(cipher encryption.SymmetricCipher, key, iv []byte) error {
	if err := validateKey(cipher, key); err != nil {
		return err
	}
	if blockSize := cipher.BlockSize(); len(iv) != blockSize {
		return fmt.Errorf("%w: IV length must be %d, got %d", encryption.ErrInvalidIV, blockSize, len(iv))
	}
	return nil
}

// validateKey rejects any key the cipher cannot use before a block is processed
func validateKey(cipher encryption.SymmetricCipher, key []byte) error {
	blockSize := cipher.BlockSize()
	if len(key) == 0 || len(key)%blockSize != 0 {
		return fmt.Errorf("%w: key length %d is not a multiple of %d", encryption.ErrInvalidKeySize, len(key), blockSize)
	}
	if len(key) != cipher.KeySize() {
		return fmt.Errorf("%w: %s key must be %d bytes, got %d", encryption.ErrInvalidKeySize, cipher.Name(), cipher.KeySize(), len(key))
	}
	return nil
}

func encryptCBC(cipher encryption.SymmetricCipher, key, iv, plaintext []byte) ([]byte, error) {
	blockSize := cipher.BlockSize()
	ciphertext := make([]byte, len(plaintext))
	prevCipherBlock := make([]byte, blockSize)
	copy(prevCipherBlock, iv)

	block := make([]byte, blockSize)
	for i := 0; i < len(plaintext); i += blockSize {
		for j := 0; j < blockSize; j++ {
			block[j] = plaintext[i+j] ^ prevCipherBlock[j]
		}

		encryptedBlock, err := cipher.Encrypt(key, block)
		if err != nil {
			return nil, err
		}
		copy(ciphertext[i:], encryptedBlock)
		copy(prevCipherBlock, encryptedBlock)
	}

	return ciphertext, nil
}

func decryptCBC(cipher encryption.SymmetricCipher, key, iv, ciphertext []byte) ([]byte, error) {
	blockSize := cipher.BlockSize()
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", encryption.ErrInvalidBlockSize, len(ciphertext), blockSize)
	}

	plaintext := make([]byte, len(ciphertext))
	prevCipherBlock := make([]byte, blockSize)
	copy(prevCipherBlock, iv)

	for i := 0; i < len(ciphertext); i += blockSize {
		decryptedBlock, err := cipher.Decrypt(key, ciphertext[i:i+blockSize])
		if err != nil {
			return nil, err
		}

		for j := 0; j < blockSize; j++ {
			plaintext[i+j] = decryptedBlock[j] ^ prevCipherBlock[j]
		}
		copy(prevCipherBlock, ciphertext[i:i+blockSize])
	}

	return plaintext, nil
}

// xorKeyStream runs CFB or OFB in either direction. Both modes only ever use
// the cipher's encryption direction; they differ in what is fed back into
// the register.
func xorKeyStream(cipher encryption.SymmetricCipher, mode Mode, key, iv, in []byte, decrypt bool) ([]byte, error) {
	blockSize := cipher.BlockSize()
	out := make([]byte, len(in))
	register := make([]byte, blockSize)
	copy(register, iv)

	for i := 0; i < len(in); i += blockSize {
		end := min(i+blockSize, len(in))

		keystream, err := cipher.Encrypt(key, register)
		if err != nil {
			return nil, err
		}

		for j := i; j < end; j++ {
			out[j] = in[j] ^ keystream[j-i]
		}

		// A short final window ends the message, so a partial register
		// update below is never encrypted.
		switch {
		case mode == OFB:
			copy(register, keystream)
		case decrypt:
			copy(register, in[i:end])
		default:
			copy(register, out[i:end])
		}
	}

	return out, nil
}
