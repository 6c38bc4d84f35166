// Package codec serializes the cache's entry envelope to bytes.
//
// Codecs work on the whole envelope rather than on a single value type, so the
// sweep can read an entry's expiry without knowing what payload it carries.
package codec

// Codec encodes/decodes envelopes to []byte for storage.
// Decode must accept a pointer and must fail on input it did not produce.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte, v any) error
}
