// Package keys derives storage keys from logical keys.
//
// Layout: <namespace>:<prefix>:<hash>, where prefix is the logical key up to
// its first '/' and hash is computed over the full logical key. '%' and ':'
// in the prefix are percent-encoded so a prefix never spans a separator.
package keys

import "strings"

const sep = ":"

var segmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Prefix returns the part of key before its first '/'; the whole key if it has none.
func Prefix(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

// Scheme derives storage keys within one namespace.
type Scheme struct {
	Namespace string
	Hash      func(string) string
}

// Storage returns the storage key for a logical key.
func (s Scheme) Storage(key string) string {
	return s.Namespace + sep + segment(key) + sep + s.Hash(key)
}

// Root matches every storage key in the namespace.
func (s Scheme) Root() string {
	return s.Namespace + sep
}

// Bulk returns the storage-key prefix shared by every logical key whose prefix
// equals Prefix(key). An empty key yields Root.
func (s Scheme) Bulk(key string) string {
	if key == "" {
		return s.Root()
	}
	return s.Namespace + sep + segment(key) + sep
}

func segment(key string) string {
	return segmentEscaper.Replace(Prefix(key))
}
