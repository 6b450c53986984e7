package common

import "encoding/hex"

// Serializable types can convert themselves to and from a byte slice of
// fixed size.
type Serializable interface {
	ToBytes() []byte
	SetBytes([]byte) bool
	Size() int // size in bytes when serialized
}

// Hash is a 32-byte digest as produced by the hash functions used in
// this repository.
type Hash [32]byte

func (h Hash) ToBytes() []byte {
	return h[:]
}

// SetBytes fills the hash from the given slice. It reports whether the
// input had the required length; short or long inputs are rejected and
// leave the hash untouched.
func (h *Hash) SetBytes(data []byte) bool {
	if len(data) != len(h) {
		return false
	}
	copy(h[:], data)
	return true
}

func (h Hash) Size() int {
	return len(h)
}

// String renders the hash as lowercase hex, mainly for debugging output.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// HashFromString decodes a hexadecimal string into a Hash. Inputs that are
// not valid hex or shorter than 32 bytes leave the remaining bytes zero.
// It is mainly a convenience for tests and debugging.
func HashFromString(str string) Hash {
	var hash Hash
	data, err := hex.DecodeString(str)
	if err != nil {
		return hash
	}
	copy(hash[:], data)
	return hash
}
