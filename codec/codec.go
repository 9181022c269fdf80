// Package codec (de)serializes cached entities to the byte payloads a
// store persists.
package codec

// Codec encodes/decodes values of T to []byte for storage.
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}
