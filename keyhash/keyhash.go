// Package keyhash provides the hash functions used to disambiguate storage keys
// that share a prefix. None of them are cryptographic; they only need to be
// deterministic and stable across runs, because a changed hash means every
// previously stored entry becomes unreachable.
package keyhash

import (
	"encoding/hex"
	"strconv"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Func renders a hash of the full logical key as text.
type Func func(key string) string

var (
	_ Func = XXHash
	_ Func = Murmur3
	_ Func = Java
)

// XXHash returns the 64-bit xxhash of key as 16 lowercase hex digits.
func XXHash(key string) string {
	return hex64(xxhash.Sum64String(key))
}

// Murmur3 returns the 64-bit murmur3 hash of key as 16 lowercase hex digits.
func Murmur3(key string) string {
	return hex64(murmur3.Sum64([]byte(key)))
}

// Java returns the classic signed 32-bit "h = 31*h + c" string hash over the
// UTF-16 code units of key, in decimal. Entries written by browser code that
// used the same hash resolve to the same storage keys.
func Java(key string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(key)) {
		h = 31*h + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}

func hex64(v uint64) string {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return hex.EncodeToString(b[:])
}
