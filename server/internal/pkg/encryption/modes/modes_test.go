package modes

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"Sealbox/server/internal/pkg/encryption"
)

// Test keys and IVs
var (
	testKey128 = []byte("0123456789ABCDEF")
	testIV16   = []byte("FEDCBA9876543210")
	allModes   = []Mode{CBC, CFB, OFB}
)

func testMessage(n int) []byte {
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(i*7 + 3)
	}
	return msg
}

func TestModesRoundTrip(t *testing.T) {
	cipher := encryption.NewAES()
	for _, mode := range allModes {
		for _, n := range []int{0, 1, 15, 16, 17, 32, 33, 100} {
			plaintext := testMessage(n)

			encrypted, err := Encrypt(cipher, mode, testKey128, testIV16, plaintext)
			if err != nil {
				t.Fatalf("%v/%d: encryption failed: %v", mode, n, err)
			}

			decrypted, err := Decrypt(cipher, mode, testKey128, testIV16, encrypted, len(plaintext))
			if err != nil {
				t.Fatalf("%v/%d: decryption failed: %v", mode, n, err)
			}

			if !bytes.Equal(plaintext, decrypted) {
				t.Fatalf("%v/%d: round-trip failed: expected %x, got %x", mode, n, plaintext, decrypted)
			}
		}
	}
}

func TestCBCCiphertextLength(t *testing.T) {
	cipher := encryption.NewAES()
	for n := 0; n <= 48; n++ {
		encrypted, err := Encrypt(cipher, CBC, testKey128, testIV16, testMessage(n))
		if err != nil {
			t.Fatalf("CBC encryption failed: %v", err)
		}
		want := 16 * ((n + 1 + 15) / 16)
		if len(encrypted) != want {
			t.Fatalf("len(CBC(%d bytes)) = %d, want %d", n, len(encrypted), want)
		}
	}
}

func TestStreamModesKeepLength(t *testing.T) {
	cipher := encryption.NewAES()
	for _, mode := range []Mode{CFB, OFB} {
		for _, n := range []int{0, 1, 15, 16, 17, 31} {
			encrypted, err := Encrypt(cipher, mode, testKey128, testIV16, testMessage(n))
			if err != nil {
				t.Fatalf("%v encryption failed: %v", mode, err)
			}
			if len(encrypted) != n {
				t.Fatalf("len(%v(%d bytes)) = %d", mode, n, len(encrypted))
			}
		}
	}
}

// TestCBCZeroVector checks the first block against the published AES-128
// all-zero vector; with a zero IV CBC reduces to one raw block encryption.
func TestCBCZeroVector(t *testing.T) {
	cipher := encryption.NewAES()
	zero := make([]byte, 16)

	encrypted, err := Encrypt(cipher, CBC, zero, zero, zero)
	if err != nil {
		t.Fatalf("CBC encryption failed: %v", err)
	}
	if len(encrypted) != 32 {
		t.Fatalf("expected a full padding block, got %d bytes", len(encrypted))
	}
	if got := hex.EncodeToString(encrypted[:16]); got != "66e94bd4ef8a2c3b884cfa59ca342b2e" {
		t.Fatalf("first block = %s", got)
	}
}

func TestCBCDecryptUnknownSizeKeepsPadding(t *testing.T) {
	cipher := encryption.NewAES()
	plaintext := []byte("Hello, World!")

	encrypted, err := Encrypt(cipher, CBC, testKey128, testIV16, plaintext)
	if err != nil {
		t.Fatalf("CBC encryption failed: %v", err)
	}

	decrypted, err := Decrypt(cipher, CBC, testKey128, testIV16, encrypted, UnknownSize)
	if err != nil {
		t.Fatalf("CBC decryption failed: %v", err)
	}
	want := append([]byte("Hello, World!"), 3, 3, 3)
	if !bytes.Equal(decrypted, want) {
		t.Fatalf("got %x, want %x", decrypted, want)
	}

	if _, err := Decrypt(cipher, CBC, testKey128, testIV16, encrypted, 17); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("oversized original size: got %v, want ErrInvalidSize", err)
	}
}

func TestCFBAndOFBShareFirstKeystreamBlock(t *testing.T) {
	cipher := encryption.NewAES()
	plaintext := testMessage(40)

	cfb, err := Encrypt(cipher, CFB, testKey128, testIV16, plaintext)
	if err != nil {
		t.Fatalf("CFB encryption failed: %v", err)
	}
	ofb, err := Encrypt(cipher, OFB, testKey128, testIV16, plaintext)
	if err != nil {
		t.Fatalf("OFB encryption failed: %v", err)
	}

	if !bytes.Equal(cfb[:16], ofb[:16]) {
		t.Fatalf("first blocks differ: %x vs %x", cfb[:16], ofb[:16])
	}
	if bytes.Equal(cfb[16:], ofb[16:]) {
		t.Fatalf("CFB and OFB feedback should diverge after the first block")
	}
}

func TestInvalidKeyAndIV(t *testing.T) {
	cipher := encryption.NewAES()
	plaintext := []byte("Hello")

	for _, mode := range allModes {
		if _, err := Encrypt(cipher, mode, []byte("short"), testIV16, plaintext); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: short key: got %v", mode, err)
		}
		if _, err := Encrypt(cipher, mode, nil, testIV16, plaintext); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: nil key: got %v", mode, err)
		}
		if _, err := Encrypt(cipher, mode, make([]byte, 32), testIV16, plaintext); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: 32-byte key: got %v", mode, err)
		}
		if _, err := Encrypt(cipher, mode, testKey128, []byte("01234567"), plaintext); !errors.Is(err, encryption.ErrInvalidIV) {
			t.Errorf("%v: short IV: got %v", mode, err)
		}
		if _, err := Decrypt(cipher, mode, testKey128, nil, plaintext, UnknownSize); !errors.Is(err, encryption.ErrInvalidIV) {
			t.Errorf("%v: nil IV: got %v", mode, err)
		}
	}

	if _, err := Decrypt(cipher, CBC, testKey128, testIV16, make([]byte, 20), UnknownSize); !errors.Is(err, encryption.ErrInvalidBlockSize) {
		t.Errorf("CBC unaligned ciphertext: got %v", err)
	}
	if _, err := Encrypt(cipher, Mode(42), testKey128, testIV16, plaintext); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("unknown mode: got %v", err)
	}
}

func TestWrongKeySizeRejectedForEmptyInput(t *testing.T) {
	cipher := encryption.NewAES()

	for _, mode := range allModes {
		for _, keyLen := range []int{32, 48} {
			key := make([]byte, keyLen)
			if _, err := Encrypt(cipher, mode, key, testIV16, nil); !errors.Is(err, encryption.ErrInvalidKeySize) {
				t.Errorf("%v: Encrypt with %d-byte key and empty plaintext: got %v", mode, keyLen, err)
			}
			if _, err := Decrypt(cipher, mode, key, testIV16, nil, UnknownSize); !errors.Is(err, encryption.ErrInvalidKeySize) {
				t.Errorf("%v: Decrypt with %d-byte key and empty ciphertext: got %v", mode, keyLen, err)
			}
		}
	}
}

func TestStreamDecryptOriginalSize(t *testing.T) {
	cipher := encryption.NewAES()
	plaintext := []byte("twenty bytes of text")

	for _, mode := range []Mode{CFB, OFB} {
		encrypted, err := Encrypt(cipher, mode, testKey128, testIV16, plaintext)
		if err != nil {
			t.Fatalf("%v: Encrypt failed: %v", mode, err)
		}
		for _, size := range []int{UnknownSize, len(plaintext)} {
			if _, err := Decrypt(cipher, mode, testKey128, testIV16, encrypted, size); err != nil {
				t.Errorf("%v: size %d: %v", mode, size, err)
			}
		}
		for _, size := range []int{0, 5, len(plaintext) + 1, -2} {
			if _, err := Decrypt(cipher, mode, testKey128, testIV16, encrypted, size); !errors.Is(err, ErrInvalidSize) {
				t.Errorf("%v: size %d: got %v, want ErrInvalidSize", mode, size, err)
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name string
		want Mode
	}{
		{"CBC", CBC},
		{"cfb", CFB},
		{"Ofb", OFB},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.name)
		if err != nil {
			t.Fatalf("ParseMode(%q) failed: %v", tt.name, err)
		}
		if got != tt.want || got.String() != modeNames[tt.want] {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseMode("ECB"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("ParseMode(ECB): got %v, want ErrUnknownMode", err)
	}
	if s := Mode(7).String(); s != "Mode(7)" {
		t.Fatalf("Mode(7).String() = %q", s)
	}
}
