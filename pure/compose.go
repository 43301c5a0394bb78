// Package pure holds the identity and composition arrows every other
// exercise builds on.
//
// Compose is left-to-right: Compose(f, g)(x) == g(f(x)).
// Id is its left and right unit:
//
//	Compose(Id[A], f) ~ f ~ Compose(f, Id[B])
package pure

// Id returns its argument unchanged.
func Id[T any](x T) T {
	return x
}

// Compose chains f then g.
func Compose[A, B, C any](f func(A) B, g func(B) C) func(A) C {
	return func(x A) C {
		return g(f(x))
	}
}

// Const returns a function that ignores its argument and always yields v.
func Const[A, B any](v B) func(A) B {
	return func(A) B {
		return v
	}
}

// Pipe composes endomorphisms left to right. Pipe() is Id.
func Pipe[T any](fns ...func(T) T) func(T) T {
	return func(x T) T {
		for _, fn := range fns {
			x = fn(x)
		}
		return x
	}
}
