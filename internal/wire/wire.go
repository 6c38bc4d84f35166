package wire

import (
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/nscache/codec"
)

var (
	ErrCorrupt = errors.New("nscache: corrupt entry")
	// ErrPayload means the envelope is intact but its data does not decode
	// into the requested type.
	ErrPayload = errors.New("nscache: payload type mismatch")
)

// Entry is the stored envelope. With the JSON codec it serializes to exactly
// {"data":<payload>,"ttl":<null|epoch-ms>}.
type Entry[V any] struct {
	Data V      `json:"data" msgpack:"data" cbor:"data"`
	TTL  *int64 `json:"ttl" msgpack:"ttl" cbor:"ttl"`
}

// Header is the payload-agnostic view of an Entry. The sweep decodes only this,
// so entries of any payload type can share a namespace.
type Header struct {
	TTL *int64 `json:"ttl" msgpack:"ttl" cbor:"ttl"`
}

// Deadline converts a relative ttl into an absolute epoch-ms expiry, rounding
// sub-millisecond remainders up. ttl <= 0 means no expiry (nil).
func Deadline(now time.Time, ttl time.Duration) *int64 {
	if ttl <= 0 {
		return nil
	}
	ms := now.UnixMilli() + (ttl + time.Millisecond - 1).Milliseconds()
	return &ms
}

// Expired reports whether an entry with the given expiry is stale at now.
// nil never expires.
func Expired(ttl *int64, now time.Time) bool {
	return ttl != nil && now.UnixMilli() >= *ttl
}

func EncodeEntry[V any](c codec.Codec, data V, ttl *int64) ([]byte, error) {
	return c.Encode(Entry[V]{Data: data, TTL: ttl})
}

// DecodeEntry returns ErrCorrupt for anything that is not an entry envelope,
// including a bare null, and ErrPayload when only the data does not fit V.
func DecodeEntry[V any](c codec.Codec, b []byte) (*Entry[V], error) {
	var e *Entry[V]
	err := c.Decode(b, &e)
	if err == nil && e != nil {
		return e, nil
	}
	if _, herr := DecodeHeader(c, b); herr != nil {
		return nil, ErrCorrupt
	}
	if err == nil {
		err = errors.New("empty envelope")
	}
	return nil, fmt.Errorf("%w: %v", ErrPayload, err)
}

func DecodeHeader(c codec.Codec, b []byte) (*Header, error) {
	var h *Header
	if err := c.Decode(b, &h); err != nil || h == nil {
		return nil, ErrCorrupt
	}
	return h, nil
}
