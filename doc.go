// Package nscache implements a namespaced, TTL-aware cache over a pluggable
// persistent key/value store. Expiry is lazy: an expired entry is removed when
// a read finds it, or by the sweep that every write runs across the whole
// namespace. There is no background timer.
//
// Components:
//   - Store: flat byte store that can enumerate keys (memory, SQLite, Redis,
//     BigCache, Ristretto).
//   - Codec: (de)serializes the {data, ttl} envelope. JSON by default.
//   - keyhash.Func: disambiguates logical keys sharing a prefix.
//
// Keys:
//
//	<namespace>:<prefix>:<hash>
//
// where prefix is the logical key up to its first '/', so
//
//	cache.RemoveAll(ctx, "items") // drops items/1, items/2, ... but not users/9
//
// The cache is an optimization layer and never a source of truth. A miss
// (ok == false) and a fault (*FaultError) both mean "go to the source"; see
// Fetch.
package nscache
