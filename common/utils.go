package common

import (
	"cmp"

	"github.com/chewxy/math32"
)

// Pi is the float32 value of pi used by the angle helpers.
const Pi = math32.Pi

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp limits value to the closed range [lo, hi].
// Values above hi return hi, values below lo return lo.
//
// Parameters:
//   - value: the value to limit
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - T: value limited to [lo, hi]
func Clamp[T cmp.Ordered](value, lo, hi T) T {
	if value > hi {
		return hi
	}
	if value < lo {
		return lo
	}
	return value
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(degree float32) float32 {
	return degree * Pi / 180
}

// RadToDeg converts an angle in radians to degrees.
func RadToDeg(radian float32) float32 {
	return radian * 180 / Pi
}
