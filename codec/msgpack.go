package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a Codec that serializes envelopes using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Payload structs need `msgpack:"fieldName"` tags if their on-disk names
// should match the JSON ones.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack) Decode(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}
