package encryption

// state is the 4x4 working matrix of one block. Row r occupies bytes
// 4r..4r+3, so column c is the stride-4 slice starting at byte c.
type state [16]byte

// loadState maps caller byte order (column after column, as in FIPS-197)
// onto the state matrix.
func loadState(in []byte) *state {
	var st state
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			st[r*4+c] = in[c*4+r]
		}
	}
	return &st
}

// bytes is the inverse of loadState.
func (st *state) bytes() []byte {
	out := make([]byte, AESBlockSize)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = st[r*4+c]
		}
	}
	return out
}

func (st *state) subBytes(inverse bool) {
	box := &sBox
	if inverse {
		box = &invSBox
	}
	for i := range st {
		st[i] = box[st[i]]
	}
}

// shiftRows rotates row r left by r positions, or right when inverse is set.
func (st *state) shiftRows(inverse bool) {
	for r := 1; r < 4; r++ {
		row := st[r*4 : r*4+4]
		shift := r
		if inverse {
			shift = 4 - r
		}
		rotated := [4]byte{row[shift%4], row[(shift+1)%4], row[(shift+2)%4], row[(shift+3)%4]}
		copy(row, rotated[:])
	}
}

var (
	mixMatrix    = [4][4]byte{{2, 3, 1, 1}, {1, 2, 3, 1}, {1, 1, 2, 3}, {3, 1, 1, 2}}
	invMixMatrix = [4][4]byte{{14, 11, 13, 9}, {9, 14, 11, 13}, {13, 9, 14, 11}, {11, 13, 9, 14}}
)

// mixColumns multiplies every column by the fixed MixColumns matrix over GF(2^8).
func (st *state) mixColumns(inverse bool) {
	m := &mixMatrix
	if inverse {
		m = &invMixMatrix
	}
	for c := 0; c < 4; c++ {
		col := [4]byte{st[c], st[c+4], st[c+8], st[c+12]}
		for r := 0; r < 4; r++ {
			st[r*4+c] = gfMul(col[0], m[r][0]) ^ gfMul(col[1], m[r][1]) ^
				gfMul(col[2], m[r][2]) ^ gfMul(col[3], m[r][3])
		}
	}
}

// addRoundKey XORs the round key into the state. Applying it twice is a no-op.
func (st *state) addRoundKey(roundKey *state) {
	for i := range st {
		st[i] ^= roundKey[i]
	}
}

// gfMul multiplies two bytes in GF(2^8) modulo x^8+x^4+x^3+x+1.
func gfMul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a&0x80 != 0
		a <<= 1
		if hiBitSet {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// roundKey extracts the 16 bytes at offset and transposes them into state layout.
func roundKey(expanded []byte, offset int) *state {
	return loadState(expanded[offset : offset+AESBlockSize])
}
