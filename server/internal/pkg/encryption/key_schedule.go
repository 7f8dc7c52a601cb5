package encryption

// keyScheduleCore transforms the word fed into the first column of every round
// key: rotate left by one byte, substitute through the S-box, then fold in the
// round constant.
func keyScheduleCore(word [4]byte, iteration int) [4]byte {
	word = [4]byte{word[1], word[2], word[3], word[0]}
	for i := range word {
		word[i] = sBox[word[i]]
	}
	word[0] ^= rcon[iteration]
	return word
}

// expandKey stretches a 16-byte key into size bytes of round key material.
// size must be a multiple of 16 and at most 16*(AESRounds+1).
func expandKey(key []byte, size int) []byte {
	expanded := make([]byte, size)
	copy(expanded, key[:AESKeySize])

	iteration := 1
	for current := AESKeySize; current < size; current += 4 {
		var word [4]byte
		copy(word[:], expanded[current-4:current])

		if current%AESKeySize == 0 {
			word = keyScheduleCore(word, iteration)
			iteration++
		}

		for j := 0; j < 4; j++ {
			expanded[current+j] = expanded[current-AESKeySize+j] ^ word[j]
		}
	}

	return expanded
}
