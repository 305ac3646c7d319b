package crypto

import (
	"strings"
	"sync"
	"testing"
)

func TestNewIDGenerator_Validation(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
		wantErr  error
	}{
		{name: "url alphabet", alphabet: URLAlphabet, size: DefaultIDSize},
		{name: "minimum alphabet", alphabet: "abcdefgh", size: 4},
		{name: "digits and letters", alphabet: "0123456789abcdef", size: 1},
		{name: "too short", alphabet: "abc", size: 10, wantErr: ErrAlphabetTooShort},
		{name: "too long", alphabet: strings.Repeat("a", 256), size: 10, wantErr: ErrAlphabetTooLong},
		{name: "non ascii", alphabet: "abcdefgé", size: 10, wantErr: ErrAlphabetNotASCII},
		{name: "zero size", alphabet: URLAlphabet, size: 0, wantErr: ErrInvalidIDSize},
		{name: "negative size", alphabet: URLAlphabet, size: -1, wantErr: ErrInvalidIDSize},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			gen, err := NewIDGenerator(test.alphabet, test.size)

			// Assert
			if err != test.wantErr {
				t.Fatalf("NewIDGenerator() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && gen == nil {
				t.Fatal("NewIDGenerator() returned nil generator")
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
		{alphabetLen: 36, want: 63},
		{alphabetLen: 64, want: 63},
		{alphabetLen: 65, want: 127},
		{alphabetLen: 255, want: 255},
	}

	for _, test := range tests {
		if got := maskFor(test.alphabetLen); got != test.want {
			t.Errorf("maskFor(%d) = %d, want %d", test.alphabetLen, got, test.want)
		}
	}
}

func TestIDGenerator_Generate(t *testing.T) {
	alphabets := []string{URLAlphabet, "abcdefgh", "0123456789", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"}
	sizes := []int{1, 8, DefaultIDSize, 64}

	for _, alphabet := range alphabets {
		for _, size := range sizes {
			// Arrange
			gen, err := NewIDGenerator(alphabet, size)
			if err != nil {
				t.Fatalf("NewIDGenerator(%q, %d) error = %v", alphabet, size, err)
			}

			// Act
			id, err := gen.Generate()

			// Assert
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if len(id) != size {
				t.Errorf("len(Generate()) = %d, want %d", len(id), size)
			}
			if strings.Trim(id, alphabet) != "" {
				t.Errorf("Generate() = %q has characters outside %q", id, alphabet)
			}
		}
	}
}

// Requirement: every symbol of a non power-of-two alphabet is reachable
func TestIDGenerator_CoversAlphabet(t *testing.T) {
	alphabet := "0123456789"
	gen, err := NewIDGenerator(alphabet, 1000)
	if err != nil {
		t.Fatal(err)
	}

	id, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range alphabet {
		if !strings.ContainsRune(id, r) {
			t.Errorf("symbol %q never drawn in 1000 characters", r)
		}
	}
}

func TestNewID(t *testing.T) {
	// Arrange
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		// Act
		id, err := NewID()

		// Assert
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if len(id) != DefaultIDSize {
			t.Fatalf("len(NewID()) = %d, want %d", len(id), DefaultIDSize)
		}
		if strings.Trim(id, URLAlphabet) != "" {
			t.Fatalf("NewID() = %q contains characters outside the alphabet", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("NewID() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewID_Concurrent(t *testing.T) {
	const workers, perWorker = 8, 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := NewID()
				if err != nil {
					t.Errorf("NewID() error = %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique ids, want %d", len(seen), workers*perWorker)
	}
}

func FuzzIDGenerator(f *testing.F) {
	f.Add("abcdefgh", 5)
	f.Add(URLAlphabet, DefaultIDSize)
	f.Add("0123456789", 1)

	f.Fuzz(func(t *testing.T, alphabet string, size int) {
		if size > 512 {
			t.Skip()
		}
		gen, err := NewIDGenerator(alphabet, size)
		if err != nil {
			return
		}

		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(id) != size {
			t.Fatalf("len = %d, want %d", len(id), size)
		}
		for i := 0; i < len(id); i++ {
			if strings.IndexByte(alphabet, id[i]) < 0 {
				t.Fatalf("byte %q not in alphabet", id[i])
			}
		}
	})
}
