package encryption

import "fmt"

// NewAES returns the AES-128 block cipher
func NewAES() *AES {
	return &AES{}
}

// BlockSize returns the block size of AES
func (a *AES) BlockSize() int {
	return AESBlockSize
}

// KeySize returns the key size of AES-128
func (a *AES) KeySize() int {
	return AESKeySize
}

// Name returns the cipher name
func (a *AES) Name() string {
	return "AES-128"
}

// Encrypt encrypts a single 128-bit block
func (a *AES) Encrypt(key []byte, plaintext []byte) ([]byte, error) {
	expanded, err := a.prepare(key, plaintext)
	if err != nil {
		return nil, err
	}

	st := loadState(plaintext)
	st.addRoundKey(roundKey(expanded, 0))

	for round := 1; round < AESRounds; round++ {
		st.subBytes(false)
		st.shiftRows(false)
		st.mixColumns(false)
		st.addRoundKey(roundKey(expanded, AESBlockSize*round))
	}

	st.subBytes(false)
	st.shiftRows(false)
	st.addRoundKey(roundKey(expanded, AESBlockSize*AESRounds))

	return st.bytes(), nil
}

// Decrypt decrypts a single 128-bit block
func (a *AES) Decrypt(key []byte, ciphertext []byte) ([]byte, error) {
	expanded, err := a.prepare(key, ciphertext)
	if err != nil {
		return nil, err
	}

	st := loadState(ciphertext)
	st.addRoundKey(roundKey(expanded, AESBlockSize*AESRounds))

	for round := AESRounds - 1; round > 0; round-- {
		st.shiftRows(true)
		st.subBytes(true)
		st.addRoundKey(roundKey(expanded, AESBlockSize*round))
		st.mixColumns(true)
	}

	st.shiftRows(true)
	st.subBytes(true)
	st.addRoundKey(roundKey(expanded, 0))

	return st.bytes(), nil
}

func (a *AES) prepare(key, block []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: AES-128 key must be %d bytes, got %d", ErrInvalidKeySize, AESKeySize, len(key))
	}
	if len(block) != AESBlockSize {
		return nil, fmt.Errorf("%w: block must be %d bytes, got %d", ErrInvalidBlockSize, AESBlockSize, len(block))
	}
	return expandKey(key, expandedKeySize), nil
}
