package purefn

import (
	"fmt"
)

// Memoize returns a function with the same shape as f whose results are
// recorded on first call.
//
// Usage:
//
//	var fib func(int) int
//	fib = purefn.Memoize(func(n int) int {
//	    if n <= 1 {
//	        return n
//	    }
//	    return fib(n-1) + fib(n-2)
//	})
func Memoize[A comparable, B any](f func(A) B, opts ...Option) func(A) B {
	c := NewCacher(f, opts...)
	return func(a A) B {
		v, _ := c.Call(a)
		return v
	}
}

// MemoizeErr is Memoize for functions that can fail. Only successful
// results are recorded; a failing input is retried on its next call.
func MemoizeErr[A comparable, B any](f func(A) (B, error), opts ...Option) func(A) (B, error) {
	return NewFallibleCacher(f, opts...).Call
}

// MemoizeStringer keys the table on a.String() instead of a itself, so that
// arguments whose type is not comparable can still be memoized.
// Two arguments with the same String() share a record.
func MemoizeStringer[A fmt.Stringer, B any](f func(A) B, opts ...Option) func(A) B {
	if f == nil {
		panic("purefn: nil computation")
	}
	c := &Cacher[string, B]{
		table: make(map[string]B),
		obs:   newObserver("stringer", opts),
	}
	return func(a A) B {
		if any(a) == nil {
			panic("purefn: nil Stringer key")
		}
		v, _ := c.fetch(a.String(), func() (B, error) {
			return f(a), nil
		})
		return v
	}
}

type pair[A1, A2 comparable] struct {
	first  A1
	second A2
}

// Memoize2 memoizes a two-argument function, keyed on the argument pair.
func Memoize2[A1, A2 comparable, B any](f func(A1, A2) B, opts ...Option) func(A1, A2) B {
	if f == nil {
		panic("purefn: nil computation")
	}
	c := NewCacher(func(p pair[A1, A2]) B {
		return f(p.first, p.second)
	}, opts...)
	return func(a1 A1, a2 A2) B {
		v, _ := c.Call(pair[A1, A2]{first: a1, second: a2})
		return v
	}
}
