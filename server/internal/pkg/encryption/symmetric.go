package encryption

import "errors"

var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrInvalidBlockSize = errors.New("invalid block size")
	ErrInvalidIV        = errors.New("invalid IV")
)
