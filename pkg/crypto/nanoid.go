package crypto

import (
	"crypto/rand"
	"errors"
	"math/bits"
)

const (
	// URLAlphabet is the 64-symbol alphabet used for record ids.
	URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

	DefaultIDSize   = 22 // 132 bits over URLAlphabet, more than a uuid
	maxAlphabetSize = 255
	minAlphabetSize = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDSize    = errors.New("id size must be positive")
)

// IDGenerator draws fixed-size random ids from an alphabet without modulo
// bias. It is safe for concurrent use.
type IDGenerator struct {
	alphabet string
	size     int
	mask     byte
	step     int
}

func NewIDGenerator(alphabet string, size int) (*IDGenerator, error) {
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}
	// Generate indexes by byte.
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if size <= 0 {
		return nil, ErrInvalidIDSize
	}

	return newIDGenerator(alphabet, size), nil
}

func newIDGenerator(alphabet string, size int) *IDGenerator {
	mask := maskFor(len(alphabet))
	// Masked bytes past the alphabet are dropped; 1.6x usually fills the id
	// in one read.
	step := (16*int(mask)*size/len(alphabet) + 9) / 10
	if step < 1 {
		step = 1
	}
	return &IDGenerator{alphabet: alphabet, size: size, mask: mask, step: step}
}

// maskFor returns the smallest 2^k-1 mask covering every alphabet index.
func maskFor(alphabetLen int) byte {
	n := bits.Len(uint(alphabetLen - 1))
	return byte(int(1)<<n - 1)
}

func (g *IDGenerator) Generate() (string, error) {
	id := make([]byte, 0, g.size)
	buf := make([]byte, g.step)

	for len(id) < g.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & g.mask)
			if idx >= len(g.alphabet) {
				continue
			}
			id = append(id, g.alphabet[idx])
			if len(id) == g.size {
				break
			}
		}
	}

	return string(id), nil
}

var defaultIDs = newIDGenerator(URLAlphabet, DefaultIDSize)

// NewID returns a DefaultIDSize id over URLAlphabet. It only fails when the
// system random source does.
func NewID() (string, error) {
	return defaultIDs.Generate()
}
