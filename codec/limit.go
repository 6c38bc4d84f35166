package codec

import "fmt"

// Limit wraps another codec and refuses to decode payloads larger than
// MaxDecode bytes. Encode is forwarded unchanged. MaxDecode <= 0 disables
// the check.
//
// Useful when the backing store is shared with other writers.
type Limit struct {
	Inner     Codec
	MaxDecode int
}

var _ Codec = Limit{}

func (c Limit) Encode(v any) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit) Decode(b []byte, v any) error {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b, v)
}
