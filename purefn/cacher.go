package purefn

// Cacher owns a computation and the table of its recorded results.
//
// IMPORTANT:
// A Cacher is **NOT thread-safe**. It is meant to be owned by a single
// goroutine. Use SyncCacher when the memoized function is shared.
type Cacher[A comparable, B any] struct {
	calc  func(A) (B, error)
	table map[A]B
	obs   *observer
}

// NewCacher wraps an infallible computation. Panics if calc is nil.
func NewCacher[A comparable, B any](calc func(A) B, opts ...Option) *Cacher[A, B] {
	if calc == nil {
		panic("purefn: nil computation")
	}
	return newCacher(func(a A) (B, error) {
		return calc(a), nil
	}, opts)
}

// NewFallibleCacher wraps a computation that may fail.
// Failed evaluations are never recorded. Panics if calc is nil.
func NewFallibleCacher[A comparable, B any](calc func(A) (B, error), opts ...Option) *Cacher[A, B] {
	if calc == nil {
		panic("purefn: nil computation")
	}
	return newCacher(calc, opts)
}

func newCacher[A comparable, B any](calc func(A) (B, error), opts []Option) *Cacher[A, B] {
	return &Cacher[A, B]{
		calc:  calc,
		table: make(map[A]B),
		obs:   newObserver("cacher", opts),
	}
}

// Call returns the recorded result for a, evaluating the computation on the
// first call only. An error from the computation is returned unchanged and
// leaves no record, so the next Call with a evaluates again.
func (c *Cacher[A, B]) Call(a A) (B, error) {
	return c.fetch(a, func() (B, error) {
		return c.calc(a)
	})
}

// Load looks a up without evaluating anything.
func (c *Cacher[A, B]) Load(a A) (B, bool) {
	v, ok := c.table[a]
	return v, ok
}

// Len reports how many keys have been recorded.
func (c *Cacher[A, B]) Len() int {
	return len(c.table)
}

// ID identifies this cache in logs and metric attributes.
func (c *Cacher[A, B]) ID() string {
	return c.obs.id
}

func (c *Cacher[A, B]) fetch(key A, eval func() (B, error)) (B, error) {
	if v, ok := c.table[key]; ok {
		c.obs.hit(key)
		return v, nil
	}

	c.obs.miss(key)
	v, err := eval()
	if err != nil {
		c.obs.failure(key, err)
		return v, err
	}
	return c.storeIfAbsent(key, v), nil
}

// storeIfAbsent records v unless key was recorded meanwhile (for example by a
// reentrant call from eval). The recorded value is returned either way.
func (c *Cacher[A, B]) storeIfAbsent(key A, v B) B {
	if prior, ok := c.table[key]; ok {
		return prior
	}
	c.table[key] = v
	return v
}
