package main

import (
	"encoding/hex"
	"errors"
	"testing"

	"Sealbox/server/internal/pkg/encryption/modes"
	"Sealbox/server/internal/pkg/helpers"
	"Sealbox/server/internal/pkg/integrity"
)

const keyHex = "2b7e151628aed2a6abf7158809cf4f3c"

func TestEncryptDecryptHex(t *testing.T) {
	plaintext := hex.EncodeToString([]byte("browser side secret"))
	for _, mode := range []string{"", "CBC", "cfb", "OFB"} {
		msg, err := encryptHex(mode, keyHex, plaintext)
		if err != nil {
			t.Fatalf("encryptHex(%q) failed: %v", mode, err)
		}
		got, err := decryptHex(mode, keyHex, msg)
		if err != nil {
			t.Fatalf("decryptHex(%q) failed: %v", mode, err)
		}
		if got != plaintext {
			t.Fatalf("mode %q: got %s, want %s", mode, got, plaintext)
		}
	}
}

func TestHexErrors(t *testing.T) {
	if _, err := encryptHex("CTR", keyHex, "00"); !errors.Is(err, modes.ErrUnknownMode) {
		t.Errorf("unknown mode: got %v", err)
	}
	if _, err := encryptHex("", "xyz", "00"); !errors.Is(err, helpers.ErrInvalidHex) {
		t.Errorf("bad key hex: got %v", err)
	}
	if _, err := verifyHex(keyHex, "00"); !errors.Is(err, integrity.ErrMalformed) {
		t.Errorf("short sealed: got %v", err)
	}
}

func TestSealVerifyHex(t *testing.T) {
	key, err := generateKeyHex()
	if err != nil {
		t.Fatalf("generateKeyHex failed: %v", err)
	}
	sealed, err := sealHex(key, hex.EncodeToString([]byte("page one")))
	if err != nil {
		t.Fatalf("sealHex failed: %v", err)
	}

	intact, err := verifyHex(key, sealed)
	if err != nil || !intact {
		t.Fatalf("verifyHex = %v, %v", intact, err)
	}

	b, _ := hex.DecodeString(sealed)
	b[0] ^= 1
	intact, err = verifyHex(key, hex.EncodeToString(b))
	if err != nil || intact {
		t.Fatalf("tampered verifyHex = %v, %v", intact, err)
	}
}
