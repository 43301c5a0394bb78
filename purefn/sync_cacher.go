package purefn

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/on-the-ground/categorical_go/shared/helper"
	"golang.org/x/sync/singleflight"
)

// SyncCacher is the concurrent counterpart of Cacher.
//
// The table is split into shards picked by hashing the key's %#v form.
// Concurrent misses on one key share a single evaluation through
// singleflight, and recording is set-if-absent under the shard lock, so
// exactly one value per key is ever observed by callers.
//
// The computation may call back into the cache for other keys, but never for
// the key it is evaluating: that call would wait on its own flight.
type SyncCacher[A comparable, B any] struct {
	calc   func(A) (B, error)
	shards []*shard[A, B]
	group  singleflight.Group
	obs    *observer
}

type shard[A comparable, B any] struct {
	mu    sync.RWMutex
	table map[A]B
}

func (s *shard[A, B]) load(key A) (B, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.table[key]
	return v, ok
}

func (s *shard[A, B]) storeIfAbsent(key A, v B) B {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prior, ok := s.table[key]; ok {
		return prior
	}
	s.table[key] = v
	return v
}

// flight is the outcome shared by every caller of one evaluation. It carries
// the key the evaluation was started for, so that a caller whose key merely
// shares a representation can tell it apart, and the original panic value,
// which singleflight would otherwise wrap.
type flight[A comparable, B any] struct {
	key        A
	value      B
	err        error
	panicked   bool
	panicValue any
}

// NewSyncCacher wraps an infallible computation for concurrent use.
// numShards of 0 is treated as 1. Panics if calc is nil.
func NewSyncCacher[A comparable, B any](calc func(A) B, numShards uint32, opts ...Option) *SyncCacher[A, B] {
	if calc == nil {
		panic("purefn: nil computation")
	}
	return newSyncCacher(func(a A) (B, error) {
		return calc(a), nil
	}, numShards, opts)
}

// NewFallibleSyncCacher wraps a computation that may fail for concurrent use.
// Failed evaluations are never recorded. Panics if calc is nil.
func NewFallibleSyncCacher[A comparable, B any](calc func(A) (B, error), numShards uint32, opts ...Option) *SyncCacher[A, B] {
	if calc == nil {
		panic("purefn: nil computation")
	}
	return newSyncCacher(calc, numShards, opts)
}

func newSyncCacher[A comparable, B any](calc func(A) (B, error), numShards uint32, opts []Option) *SyncCacher[A, B] {
	if numShards == 0 {
		numShards = 1
	}
	shards := make([]*shard[A, B], numShards)
	for i := range shards {
		shards[i] = &shard[A, B]{table: make(map[A]B)}
	}
	return &SyncCacher[A, B]{
		calc:   calc,
		shards: shards,
		obs:    newObserver("sync", opts),
	}
}

// Call returns the recorded result for a, evaluating the computation at most
// once per key among callers that overlap. Errors are returned unchanged to
// every caller sharing the failed evaluation, and a panic is re-raised with
// its original value in each of them. Neither leaves a record.
func (c *SyncCacher[A, B]) Call(a A) (B, error) {
	repr := keyRepr(a)
	s := c.shardOf(repr)
	if v, ok := s.load(a); ok {
		c.obs.hit(a)
		return v, nil
	}

	raw, doErr, _ := c.group.Do(repr, func() (any, error) {
		return c.fly(s, a), nil
	})
	res, err := helper.GetTypedValueOf[flight[A, B]](func() (any, error) {
		return raw, doErr
	})
	// res.key == res.key is false only for keys holding NaN, which never
	// equal anything and are evaluated on every call anyway.
	if err != nil || (res.key != a && res.key == res.key) {
		return c.evaluate(s, a)
	}
	if res.panicked {
		panic(res.panicValue)
	}
	return res.value, res.err
}

// fly is the body of one shared evaluation. It never panics: a panic from
// the computation is captured in the returned flight.
func (c *SyncCacher[A, B]) fly(s *shard[A, B], a A) (f flight[A, B]) {
	f.key = a
	if v, ok := s.load(a); ok {
		c.obs.hit(a)
		f.value = v
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.obs.failure(a, fmt.Errorf("panic: %v", r))
			f = flight[A, B]{key: a, panicked: true, panicValue: r}
		}
	}()

	c.obs.miss(a)
	v, err := c.calc(a)
	if err != nil {
		c.obs.failure(a, err)
		f.value, f.err = v, err
		return
	}
	f.value = s.storeIfAbsent(a, v)
	return
}

// evaluate bypasses singleflight for a key whose representation collided
// with an in-flight evaluation of a different key.
func (c *SyncCacher[A, B]) evaluate(s *shard[A, B], a A) (B, error) {
	c.obs.miss(a)
	v, err := c.calc(a)
	if err != nil {
		c.obs.failure(a, err)
		return v, err
	}
	return s.storeIfAbsent(a, v), nil
}

// Load looks a up without evaluating anything.
func (c *SyncCacher[A, B]) Load(a A) (B, bool) {
	return c.shardOf(keyRepr(a)).load(a)
}

// Len reports how many keys have been recorded across all shards.
func (c *SyncCacher[A, B]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.table)
		s.mu.RUnlock()
	}
	return n
}

// ID identifies this cache in logs and metric attributes.
func (c *SyncCacher[A, B]) ID() string {
	return c.obs.id
}

func (c *SyncCacher[A, B]) shardOf(repr string) *shard[A, B] {
	switch n := uint64(len(c.shards)); n {
	case 1:
		return c.shards[0]
	default:
		return c.shards[xxhash.Sum64String(repr)%n]
	}
}

func keyRepr(key any) string {
	return fmt.Sprintf("%#v", key)
}

// MemoizeSync is Memoize backed by a SyncCacher, safe to share between goroutines.
func MemoizeSync[A comparable, B any](f func(A) B, numShards uint32, opts ...Option) func(A) B {
	c := NewSyncCacher(f, numShards, opts...)
	return func(a A) B {
		v, _ := c.Call(a)
		return v
	}
}
