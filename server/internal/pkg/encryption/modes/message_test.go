package modes

import (
	"bytes"
	"errors"
	"testing"

	"Sealbox/server/internal/pkg/encryption"
	"Sealbox/server/internal/pkg/encryption/padding"
)

func TestMessageRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"a",
		"This is a CFB plaintext message!",
		"This is a CBC plaintext message. Hello World!",
		"exactly16bytes!!",
	}

	for _, mode := range allModes {
		for _, text := range texts {
			message, err := EncryptMessage(mode, testKey128, []byte(text))
			if err != nil {
				t.Fatalf("%v: EncryptMessage failed: %v", mode, err)
			}

			decrypted, err := DecryptMessage(mode, testKey128, message)
			if err != nil {
				t.Fatalf("%v: DecryptMessage failed: %v", mode, err)
			}
			if string(decrypted) != text {
				t.Fatalf("%v: got %q, want %q", mode, decrypted, text)
			}
		}
	}
}

func TestEncryptMessagePrependsIV(t *testing.T) {
	iv := []byte("IVIVIVIVIVIVIVIV")
	plaintext := []byte("framed message")

	message, err := encryptMessage(bytes.NewReader(iv), OFB, testKey128, plaintext)
	if err != nil {
		t.Fatalf("encryptMessage failed: %v", err)
	}
	if !bytes.Equal(message[:16], iv) {
		t.Fatalf("leading bytes = %x, want IV %x", message[:16], iv)
	}

	want, err := Encrypt(encryption.NewAES(), OFB, testKey128, iv, plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !bytes.Equal(message[16:], want) {
		t.Fatalf("ciphertext = %x, want %x", message[16:], want)
	}
}

func TestEncryptMessageUsesFreshIV(t *testing.T) {
	a, err := EncryptMessage(CFB, testKey128, []byte("same input"))
	if err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}
	b, err := EncryptMessage(CFB, testKey128, []byte("same input"))
	if err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two encryptions produced identical output %x", a)
	}
}

func TestMessageErrors(t *testing.T) {
	if _, err := EncryptMessage(CBC, []byte("bad key"), []byte("x")); !errors.Is(err, encryption.ErrInvalidKeySize) {
		t.Errorf("bad key: got %v", err)
	}
	if _, err := DecryptMessage(CFB, testKey128, []byte("short")); !errors.Is(err, ErrMessageTooShort) {
		t.Errorf("short message: got %v", err)
	}

	key32 := make([]byte, 32)
	for _, mode := range allModes {
		if _, err := EncryptMessage(mode, key32, nil); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: 32-byte key, empty plaintext: got %v", mode, err)
		}
		if _, err := DecryptMessage(mode, key32, make([]byte, 16)); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: 32-byte key, IV-only message: got %v", mode, err)
		}
		if _, err := DecryptMessage(mode, key32, nil); !errors.Is(err, encryption.ErrInvalidKeySize) {
			t.Errorf("%v: 32-byte key, empty message: got %v", mode, err)
		}
	}

	message, err := EncryptMessage(CBC, testKey128, []byte("padded"))
	if err != nil {
		t.Fatalf("EncryptMessage failed: %v", err)
	}
	wrongKey := []byte("FEDCBA9876543210")
	if _, err := DecryptMessage(CBC, wrongKey, message); err != nil && !errors.Is(err, padding.ErrInvalidPadding) {
		t.Errorf("wrong key: unexpected error %v", err)
	}
	if _, err := DecryptMessage(CBC, testKey128, message[:16]); !errors.Is(err, padding.ErrInvalidPadding) {
		t.Errorf("IV only: got %v, want ErrInvalidPadding", err)
	}
}
