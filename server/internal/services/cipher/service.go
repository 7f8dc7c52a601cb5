package cipher

import (
	"context"
	"fmt"

	"Sealbox/server/internal/pkg/crypto"
	"Sealbox/server/internal/pkg/encryption/modes"
	"Sealbox/server/internal/pkg/helpers"
)

// Service exposes key generation and IV-framed message encryption
type Service struct {
	defaultMode modes.Mode
	iterations  int
	log         *helpers.Logger
}

// NewService creates a cipher service. defaultMode is used when a request
// names no mode and must be one of CBC, CFB or OFB.
func NewService(defaultMode string, iterations int) (*Service, error) {
	mode, err := modes.ParseMode(defaultMode)
	if err != nil {
		return nil, fmt.Errorf("default mode: %w", err)
	}
	if iterations <= 0 {
		iterations = crypto.DefaultIterations
	}
	return &Service{
		defaultMode: mode,
		iterations:  iterations,
		log:         helpers.NewLogger("CipherService"),
	}, nil
}

// DefaultMode returns the mode used for requests that name none
func (s *Service) DefaultMode() modes.Mode {
	return s.defaultMode
}

// GenerateKey returns a fresh random key
func (s *Service) GenerateKey(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return crypto.GenerateKey()
}

// DeriveKey turns a passphrase into a key. A nil salt is replaced by a new
// random one, which is returned so the caller can derive the key again.
func (s *Service) DeriveKey(ctx context.Context, passphrase string, salt []byte) (key, usedSalt []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(salt) == 0 {
		if salt, err = crypto.NewSalt(); err != nil {
			return nil, nil, err
		}
	}
	key, err = crypto.DeriveKey(passphrase, salt, s.iterations)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

// Encrypt returns IV || ciphertext of plaintext in the named mode
func (s *Service) Encrypt(ctx context.Context, modeName string, key, plaintext []byte) ([]byte, modes.Mode, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	mode, err := s.resolveMode(modeName)
	if err != nil {
		return nil, 0, err
	}

	message, err := modes.EncryptMessage(mode, key, plaintext)
	if err != nil {
		s.log.Debug("encrypt rejected", "mode", mode, "error", err)
		return nil, 0, err
	}
	return message, mode, nil
}

// Decrypt reverses Encrypt
func (s *Service) Decrypt(ctx context.Context, modeName string, key, message []byte) ([]byte, modes.Mode, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	mode, err := s.resolveMode(modeName)
	if err != nil {
		return nil, 0, err
	}

	plaintext, err := modes.DecryptMessage(mode, key, message)
	if err != nil {
		s.log.Debug("decrypt rejected", "mode", mode, "error", err)
		return nil, 0, err
	}
	return plaintext, mode, nil
}

func (s *Service) resolveMode(name string) (modes.Mode, error) {
	if name == "" {
		return s.defaultMode, nil
	}
	return modes.ParseMode(name)
}
