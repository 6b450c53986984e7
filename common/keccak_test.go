package common

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestKeccak256_KnownHashes(t *testing.T) {
	tests := []struct {
		plain, hash string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"a", "3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, test := range tests {
		if got, want := Keccak256([]byte(test.plain)), HashFromString(test.hash); got != want {
			t.Errorf("invalid hash for %q, wanted %x, got %x", test.plain, want, got)
		}
	}
}

func TestKeccak256_NilHashesLikeEmptySlice(t *testing.T) {
	if got, want := Keccak256(nil), Keccak256([]byte{}); got != want {
		t.Errorf("nil does not hash like empty slice, wanted %x, got %x", want, got)
	}
}

func TestKeccak256_ProducesSameHashAsEthereum(t *testing.T) {
	tests := [][]byte{
		nil,
		{},
		{1, 2, 3},
		[]byte("some longer test input with more than one block of data"),
		make([]byte, 128),
		make([]byte, 1024),
	}
	for _, test := range tests {
		want := Hash(crypto.Keccak256Hash(test))
		got := Keccak256(test)
		if want != got {
			t.Errorf("unexpected hash for %v, wanted %v, got %v", test, want, got)
		}
	}
}

func TestKeccak256_IsSafeForConcurrentUse(t *testing.T) {
	const goroutines = 8
	const hashesPerGoroutine = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(seed byte) {
			defer wg.Done()
			for j := 0; j < hashesPerGoroutine; j++ {
				data := []byte{seed, byte(j)}
				if got, want := Keccak256(data), Hash(crypto.Keccak256Hash(data)); got != want {
					t.Errorf("unexpected hash for %v, wanted %x, got %x", data, want, got)
				}
			}
		}(byte(i))
	}
	wg.Wait()
}

func BenchmarkKeccak256(b *testing.B) {
	for i := 1; i < 1<<22; i <<= 3 {
		b.Run(fmt.Sprintf("size=%d", i), func(b *testing.B) {
			data := make([]byte, i)
			for i := 0; i < b.N; i++ {
				Keccak256(data)
			}
		})
	}
}
