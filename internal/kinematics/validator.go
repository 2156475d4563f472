package kinematics

import "math"

// IsValidSpeed reports whether the candidate velocity (x, y, theta) is
// admissible under the given limits. It is a pure function over one snapshot;
// callers that need a stable verdict across several checks should take one
// Snapshot and reuse it.
//
// The checks apply in a fixed order:
//
//  1. Hard ceiling: when MaxSpeedXY is bounded (>= 0), any translational
//     magnitude above it is rejected regardless of theta.
//  2. Conjunctive floor: the command is rejected only when the translational
//     floor AND the rotational floor are violated at the same time. A command
//     moving fast enough in either dimension passes, so slow pure rotations
//     and slow pure translations stay admissible.
//  3. A command that is exactly zero in both translation and rotation is
//     never valid, even when every limit is unbounded.
func IsValidSpeed(l Limits, x, y, theta float64) bool {
	vmagSq := x*x + y*y
	if l.MaxSpeedXY >= 0 && vmagSq > l.MaxSpeedXYSq {
		return false
	}
	if l.MinSpeedXY >= 0 && vmagSq < l.MinSpeedXYSq &&
		l.MinSpeedTheta >= 0 && math.Abs(theta) < l.MinSpeedTheta {
		return false
	}
	if vmagSq == 0 && theta == 0 {
		return false
	}
	return true
}
