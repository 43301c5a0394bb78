// Package purefn provides memoization for single-argument functions.
//
// Memoize is not just a utility to add a cache.
// Memoize is a tool that *forces the developer to ask*:
//
//	→ "Is this function really pure?"
//	→ "Can this computation be treated as a lazy table?"
//
// A memoized function is a table filled on demand. The first call with a
// given input evaluates the wrapped function and records the pair; every
// later call with an equal input reads the record back and never evaluates
// again. A record is written once and never replaced, so even an impure
// source (a random generator, a clock) is frozen at its first observation.
//
// Features:
//   - Cacher / Memoize: the single-goroutine table, no locking.
//   - MemoizeErr: only successful evaluations are recorded; errors pass through.
//   - MemoizeStringer and Memoize2: keys from String() and from argument pairs.
//   - SyncCacher / MemoizeSync: a sharded, singleflight-backed table for
//     concurrent callers with the same first-write-wins guarantee.
//   - Optional zap logging and OpenTelemetry counters via Option.
//
// There is no eviction, no expiry and no capacity bound. The table lives as
// long as the returned function is reachable.
//
// WARNING: a Cacher is not safe for concurrent use. Share a SyncCacher instead.
package purefn
