package ids

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name         string
		alphabet     string
		size         int
		wantErr      error
		wantAlphabet string
	}{
		{name: "empty alphabet uses default", size: 10, wantAlphabet: DefaultAlphabet},
		{name: "custom alphabet", alphabet: "ABCDEFGH", size: 10, wantAlphabet: "ABCDEFGH"},
		{name: "max alphabet size", alphabet: strings.Repeat("a", 255), size: 10, wantAlphabet: strings.Repeat("a", 255)},
		{name: "alphabet too short", alphabet: "abc", size: 10, wantErr: ErrAlphabetTooShort},
		{name: "alphabet too long", alphabet: strings.Repeat("a", 256), size: 10, wantErr: ErrAlphabetTooLong},
		{name: "non ascii alphabet", alphabet: "abcdefgé", size: 10, wantErr: ErrAlphabetNotASCII},
		{name: "zero size", size: 0, wantErr: ErrInvalidSize},
		{name: "negative size", size: -3, wantErr: ErrInvalidSize},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			g, err := NewGenerator(test.alphabet, test.size)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewGenerator() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && g.alphabet != test.wantAlphabet {
				t.Errorf("NewGenerator() alphabet = %q, want %q", g.alphabet, test.wantAlphabet)
			}
		})
	}
}

func TestMaskFor(t *testing.T) {
	tests := []struct {
		alphabetLen int
		want        byte
	}{
		{alphabetLen: 8, want: 7},
		{alphabetLen: 9, want: 15},
		{alphabetLen: 16, want: 15},
		{alphabetLen: 17, want: 31},
		{alphabetLen: 36, want: 63},
		{alphabetLen: 64, want: 63},
		{alphabetLen: 65, want: 127},
		{alphabetLen: 255, want: 255},
	}

	for _, test := range tests {
		// Act
		got := maskFor(test.alphabetLen)

		// Assert
		if got != test.want {
			t.Errorf("maskFor(%d) = %d, want %d", test.alphabetLen, got, test.want)
		}
		if int(got) < test.alphabetLen-1 {
			t.Errorf("maskFor(%d) = %d does not cover every index", test.alphabetLen, got)
		}
	}
}

// Requirement: ids have the configured size and only use alphabet symbols
func TestGeneratorNext(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
	}{
		{name: "default", alphabet: DefaultAlphabet, size: DefaultSize},
		{name: "short", alphabet: "ABCDEFGH", size: 4},
		{name: "long", alphabet: "0123456789", size: 64},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			g, err := NewGenerator(test.alphabet, test.size)
			if err != nil {
				t.Fatalf("NewGenerator() error = %v", err)
			}

			for range 100 {
				// Act
				id, err := g.Next()

				// Assert
				if err != nil {
					t.Fatalf("Next() error = %v", err)
				}
				if len(id) != test.size {
					t.Fatalf("len(id) = %d, want %d", len(id), test.size)
				}
				for _, r := range id {
					if !strings.ContainsRune(test.alphabet, r) {
						t.Fatalf("id %q contains %q outside the alphabet", id, r)
					}
				}
			}
		})
	}
}

// Requirement: concurrent callers never observe duplicate ids
func TestGeneratorNextUnique(t *testing.T) {
	// Arrange
	g := Default()
	const workers, perWorker = 8, 500

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	// Act
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := g.Next()
				if err != nil {
					t.Errorf("Next() error = %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique ids, want %d", len(seen), workers*perWorker)
	}
}
