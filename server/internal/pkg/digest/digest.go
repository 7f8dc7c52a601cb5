// Package digest implements the 16-byte XOR-fold reduction used to fingerprint
// sealed content.
//
// The fold is a compression step, not a cryptographic hash: colliding inputs
// are trivial to construct. It only detects accidental or naive modification,
// and only when its output is itself encrypted (see package integrity).
package digest

import "hash"

// Size is the length of a digest in bytes
const Size = 16

// Sum reduces data to Size bytes. While the buffer is not exactly Size long it
// is padded with the letters 'a', 'b', 'c', ... up to the next multiple of Size
// strictly above its length; unless that leaves exactly Size bytes, the two
// halves are XORed together and the cycle repeats.
func Sum(data []byte) [Size]byte {
	buf := make([]byte, len(data))
	copy(buf, data)

	for len(buf) != Size {
		buf = padLetters(buf)
		if len(buf) == Size {
			break
		}
		buf = fold(buf)
	}

	var sum [Size]byte
	copy(sum[:], buf)
	return sum
}

func padLetters(buf []byte) []byte {
	n := Size - len(buf)%Size
	for i := 0; i < n; i++ {
		buf = append(buf, 'a'+byte(i))
	}
	return buf
}

func fold(buf []byte) []byte {
	half := len(buf) / 2
	out := make([]byte, half)
	for i := range out {
		out[i] = buf[i] ^ buf[half+i]
	}
	return out
}

type digest struct {
	buf []byte
}

// New returns a hash.Hash computing Sum. The fold needs the whole input, so
// written data is buffered until Sum is called.
func New() hash.Hash {
	return &digest{}
}

func (d *digest) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

func (d *digest) Sum(b []byte) []byte {
	sum := Sum(d.buf)
	return append(b, sum[:]...)
}

func (d *digest) Reset()         { d.buf = d.buf[:0] }
func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return Size }
