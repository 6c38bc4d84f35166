package codec

import "encoding/json"

// JSON is the default codec and the only one whose output is compatible with
// entries written by browser-side code: {"data":...,"ttl":...}.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (JSON) Decode(b []byte, v any) error { return json.Unmarshal(b, v) }
