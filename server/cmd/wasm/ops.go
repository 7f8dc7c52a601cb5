package main

import (
	"encoding/hex"

	"Sealbox/server/internal/pkg/crypto"
	"Sealbox/server/internal/pkg/encryption/modes"
	"Sealbox/server/internal/pkg/helpers"
	"Sealbox/server/internal/pkg/integrity"
)

// Hex-in, hex-out operations behind the JavaScript bindings.

func parseMode(name string) (modes.Mode, error) {
	if name == "" {
		return modes.CBC, nil
	}
	return modes.ParseMode(name)
}

func encryptHex(modeName, keyHex, plaintextHex string) (string, error) {
	mode, err := parseMode(modeName)
	if err != nil {
		return "", err
	}
	key, err := helpers.DecodeKey(keyHex)
	if err != nil {
		return "", err
	}
	plaintext, err := helpers.DecodeHex("plaintext", plaintextHex)
	if err != nil {
		return "", err
	}
	message, err := modes.EncryptMessage(mode, key, plaintext)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(message), nil
}

func decryptHex(modeName, keyHex, messageHex string) (string, error) {
	mode, err := parseMode(modeName)
	if err != nil {
		return "", err
	}
	key, err := helpers.DecodeKey(keyHex)
	if err != nil {
		return "", err
	}
	message, err := helpers.DecodeHex("message", messageHex)
	if err != nil {
		return "", err
	}
	plaintext, err := modes.DecryptMessage(mode, key, message)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(plaintext), nil
}

func sealHex(keyHex, contentHex string) (string, error) {
	key, err := helpers.DecodeKey(keyHex)
	if err != nil {
		return "", err
	}
	content, err := helpers.DecodeHex("content", contentHex)
	if err != nil {
		return "", err
	}
	sealed, err := integrity.Seal(content, key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sealed), nil
}

func verifyHex(keyHex, sealedHex string) (bool, error) {
	key, err := helpers.DecodeKey(keyHex)
	if err != nil {
		return false, err
	}
	sealed, err := helpers.DecodeHex("sealed", sealedHex)
	if err != nil {
		return false, err
	}
	return integrity.Verify(sealed, key)
}

func generateKeyHex() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
