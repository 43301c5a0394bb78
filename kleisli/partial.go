package kleisli

import "math"

// ComposePartial runs m1 then m2, reporting false as soon as either step does.
// m2 is not called when m1 has no result.
func ComposePartial[A, B, C any](m1 func(A) (B, bool), m2 func(B) (C, bool)) func(A) (C, bool) {
	return func(x A) (C, bool) {
		if y, ok := m1(x); ok {
			if z, ok := m2(y); ok {
				return z, true
			}
		}
		var zero C
		return zero, false
	}
}

// IdPartial always succeeds with x.
func IdPartial[A any](x A) (A, bool) {
	return x, true
}

// SafeRoot is the square root, defined for x >= 0.
func SafeRoot(x float64) (float64, bool) {
	if x >= 0 {
		return math.Sqrt(x), true
	}
	return 0, false
}

const reciprocalEpsilon = 1e-3

// SafeReciprocal is 1/x, defined when |x| is at least 1e-3.
func SafeReciprocal(x float64) (float64, bool) {
	if math.Abs(x)-reciprocalEpsilon >= 0 {
		return 1 / x, true
	}
	return 0, false
}

// SafeRootReciprocal is 1/sqrt(x), defined where both steps are.
func SafeRootReciprocal(x float64) (float64, bool) {
	return ComposePartial(SafeRoot, SafeReciprocal)(x)
}
