// Package ids generates short random identifiers for tickets, comments
// and activity entries. It is the alternative to time-ordered UUIDs when
// ids end up in URLs.
package ids

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	// DefaultAlphabet is lowercase alphanumerics, safe in paths and keys.
	DefaultAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	DefaultSize     = 16 // ~82 bits over DefaultAlphabet

	minAlphabetSize = 8
	maxAlphabetSize = 255
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidSize      = errors.New("id size must be positive")
)

// Generator draws ids of a fixed size from an alphabet. It is safe for
// concurrent use.
type Generator struct {
	alphabet string
	mask     byte
	size     int
}

// NewGenerator validates alphabet and size. An empty alphabet means
// DefaultAlphabet.
func NewGenerator(alphabet string, size int) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	// Next indexes the alphabet by byte.
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}

	return &Generator{alphabet: alphabet, mask: maskFor(len(alphabet)), size: size}, nil
}

// Default returns a generator over DefaultAlphabet and DefaultSize.
func Default() *Generator {
	return &Generator{alphabet: DefaultAlphabet, mask: maskFor(len(DefaultAlphabet)), size: DefaultSize}
}

// maskFor returns the smallest 2^k-1 that covers every alphabet index.
func maskFor(alphabetLen int) byte {
	mask := 1
	for mask < alphabetLen-1 {
		mask = mask<<1 | 1
	}
	return byte(mask)
}

// Next returns a new id. Random bytes outside the alphabet are rejected
// rather than wrapped so every symbol is equally likely.
func (g *Generator) Next() (string, error) {
	n := len(g.alphabet)
	step := int(math.Ceil(1.6 * float64(int(g.mask)*g.size) / float64(n)))

	id := make([]byte, 0, g.size)
	buf := make([]byte, step)
	for len(id) < g.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if idx := int(b & g.mask); idx < n {
				id = append(id, g.alphabet[idx])
				if len(id) == g.size {
					break
				}
			}
		}
	}
	return string(id), nil
}
