package security

import (
	"crypto/rand"
	"errors"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
	errAlphabetTooBig = errors.New("alphabet must fit in a byte")
)

// RandomString returns a cryptographically secure string of the requested
// length. Random bytes are rejection-sampled so every alphabet position is
// equally likely.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}
	if len(alphabet) > 256 {
		return "", errAlphabetTooBig
	}

	// Bytes at or above the largest multiple of the alphabet size are
	// discarded; reducing them modulo the size would skew low positions.
	limit := 256 - 256%len(alphabet)

	value := make([]byte, 0, length)
	buffer := make([]byte, length)
	for len(value) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, b := range buffer {
			if int(b) >= limit {
				continue
			}
			value = append(value, alphabet[int(b)%len(alphabet)])
			if len(value) == length {
				break
			}
		}
	}

	return string(value), nil
}
