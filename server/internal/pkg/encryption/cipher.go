package encryption

// SymmetricCipher is the interface a single-block cipher exposes to the mode layer
type SymmetricCipher interface {
	// Encrypt encrypts one block with the given key
	Encrypt(key []byte, plaintext []byte) ([]byte, error)

	// Decrypt decrypts one block with the given key
	Decrypt(key []byte, ciphertext []byte) ([]byte, error)

	// BlockSize returns the block size in bytes
	BlockSize() int

	// KeySize returns the required key size in bytes
	KeySize() int

	// Name returns the algorithm name
	Name() string
}

const (
	AESBlockSize = 16 // 128-bit blocks
	AESKeySize   = 16 // 128-bit key, the only supported size
	AESRounds    = 10

	// expandedKeySize is 16 bytes per round key, one extra for the initial whitening
	expandedKeySize = AESBlockSize * (AESRounds + 1)
)

// AES is the AES-128 block cipher. It holds no state: the key schedule is
// run on every call, so one value may be shared between goroutines.
type AES struct{}
