// Package codec holds the payload encodings docache can store under a cache
// key. The engine defaults to JSON; every alias slot of a record holds the
// same encoded bytes, so a codec must be deterministic for a given value.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
