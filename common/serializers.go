package common

// Serializer converts a fixed-size type to a byte slice and back.
type Serializer[T any] interface {
	// ToBytes serializes the value into a new byte slice.
	ToBytes(T) []byte
	// FromBytes deserializes a value from the given byte slice.
	FromBytes([]byte) T
	// Size returns the number of bytes of one serialized value.
	Size() int
}

// HashSerializer is a Serializer of the Hash type
type HashSerializer struct{}

func (a HashSerializer) ToBytes(hash Hash) []byte {
	return hash[:]
}
func (a HashSerializer) FromBytes(bytes []byte) Hash {
	var hash Hash
	copy(hash[:], bytes)
	return hash
}
func (a HashSerializer) Size() int {
	return 32
}
