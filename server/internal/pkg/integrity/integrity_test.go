package integrity

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"Sealbox/server/internal/pkg/encryption"
)

var testKey = []byte("0123456789ABCDEF")

func TestSealVerify(t *testing.T) {
	contents := [][]byte{
		nil,
		[]byte("x"),
		[]byte("ten bytes!"),
		[]byte("exactly16bytes!!"),
		[]byte(strings.Repeat("Lorem ipsum dolor sit amet. ", 40)),
	}

	for _, content := range contents {
		sealed, err := Seal(content, testKey)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		if len(sealed) != len(content)+TagSize {
			t.Fatalf("sealed length = %d, want %d", len(sealed), len(content)+TagSize)
		}
		if !bytes.Equal(sealed[:len(content)], content) {
			t.Fatalf("sealed body differs from content")
		}

		ok, err := Verify(sealed, testKey)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !ok {
			t.Fatalf("Verify(Seal(%q)) = false", content)
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	content := []byte("ten bytes!")
	sealed, err := Seal(content, testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	altered := append([]byte(nil), sealed...)
	altered[3] ^= 0x01

	ok, err := Verify(altered, testKey)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatalf("Verify accepted content with a flipped bit")
	}
}

func TestVerifyDetectsEveryBodyByte(t *testing.T) {
	content := []byte("The quick brown fox jumps over the lazy dog")
	sealed, err := Seal(content, testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	for i := range content {
		altered := append([]byte(nil), sealed...)
		altered[i] ^= 0x80
		ok, err := Verify(altered, testKey)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if ok {
			t.Fatalf("modification of byte %d not detected", i)
		}
	}
}

func TestVerifyWithWrongKey(t *testing.T) {
	sealed, err := Seal([]byte("some content"), testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	ok, err := Verify(sealed, []byte("FEDCBA9876543210"))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatalf("Verify accepted a tag under the wrong key")
	}
}

func TestMalformedAndInvalidInput(t *testing.T) {
	if _, err := Verify(make([]byte, TagSize-1), testKey); !errors.Is(err, ErrMalformed) {
		t.Errorf("short input: got %v, want ErrMalformed", err)
	}
	if _, _, err := Split(nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("Split(nil): got %v, want ErrMalformed", err)
	}
	if _, err := Seal([]byte("x"), []byte("bad")); !errors.Is(err, encryption.ErrInvalidKeySize) {
		t.Errorf("Seal with bad key: got %v", err)
	}
	if _, err := Verify(make([]byte, TagSize), []byte("bad")); !errors.Is(err, encryption.ErrInvalidKeySize) {
		t.Errorf("Verify with bad key: got %v", err)
	}
}

func TestSplit(t *testing.T) {
	sealed, err := Seal([]byte("body"), testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	body, tag, err := Split(sealed)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if string(body) != "body" || len(tag) != TagSize {
		t.Fatalf("Split = %q, %d-byte tag", body, len(tag))
	}
}
