// Package kleisli composes "embellished" functions: functions whose result
// carries an extra effect along with the value.
//
// Two effects are covered:
//   - Writer: a value paired with an accumulated log. Composition appends logs.
//   - Partial: a value that may be absent, in Go's comma-ok form.
//     Composition stops at the first absent result.
//
// Each composer comes with its identity arrow (IdWriter, IdPartial), so that
// for any embellished f:
//
//	ComposeWriter(IdWriter[A], f) ~ f ~ ComposeWriter(f, IdWriter[B])
package kleisli

import "strings"

// Writer pairs a value with the log produced while computing it.
type Writer[A any] struct {
	Value A
	Log   string
}

// ComposeWriter runs m1 then m2 on its value, concatenating both logs in order.
func ComposeWriter[A, B, C any](m1 func(A) Writer[B], m2 func(B) Writer[C]) func(A) Writer[C] {
	return func(x A) Writer[C] {
		w1 := m1(x)
		w2 := m2(w1.Value)
		return Writer[C]{Value: w2.Value, Log: w1.Log + w2.Log}
	}
}

// IdWriter returns x with an empty log.
func IdWriter[A any](x A) Writer[A] {
	return Writer[A]{Value: x}
}

// UpCase upper-cases s and logs "upCase ".
func UpCase(s string) Writer[string] {
	return Writer[string]{Value: strings.ToUpper(s), Log: "upCase "}
}

// ToWords splits s on white space and logs "toWords ".
func ToWords(s string) Writer[[]string] {
	return Writer[[]string]{Value: strings.Fields(s), Log: "toWords "}
}

// Process upper-cases s and splits it into words, logging both steps.
func Process(s string) Writer[[]string] {
	return ComposeWriter(UpCase, ToWords)(s)
}
