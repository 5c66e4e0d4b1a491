// Package gte emulates the PS1 Geometry Transformation Engine as plain
// integer arithmetic: 4.12 fixed-point rotation matrices, binary angles,
// and the RTPS/RTPT perspective transform with hardware saturation rules.
package gte

import "math"

// One is the 4.12 fixed-point unit (1.0 == 0x1000).
const One = 0x1000

// FullTurn is the binary-angle full circle. Angles are s16/s32 values
// where 0x10000 wraps back to zero; no radians anywhere in the core.
const FullTurn = 0x10000

// Axis selects an elementary rotation.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Mat3 is a 3×3 matrix of 4.12 fixed-point values, row-major.
// Value type for zero heap allocation.
type Mat3 [9]int32

func Identity() Mat3 {
	return Mat3{One, 0, 0, 0, One, 0, 0, 0, One}
}

// Mul returns a × b. Products accumulate in 64 bits and rescale with a
// truncating arithmetic shift, matching GTE behavior (no rounding).
func Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			acc := int64(a[r*3+0])*int64(b[0*3+c]) +
				int64(a[r*3+1])*int64(b[1*3+c]) +
				int64(a[r*3+2])*int64(b[2*3+c])
			m[r*3+c] = int32(acc >> 12)
		}
	}
	return m
}

// MulVec returns (m · v) >> 12 per row. Inputs are plain integers
// (world units), not fixed point; the matrix supplies the 12
// fractional bits.
func (m Mat3) MulVec(x, y, z int32) (int32, int32, int32) {
	rx := (int64(m[0])*int64(x) + int64(m[1])*int64(y) + int64(m[2])*int64(z)) >> 12
	ry := (int64(m[3])*int64(x) + int64(m[4])*int64(y) + int64(m[5])*int64(z)) >> 12
	rz := (int64(m[6])*int64(x) + int64(m[7])*int64(y) + int64(m[8])*int64(z)) >> 12
	return int32(rx), int32(ry), int32(rz)
}

// Rotation builds an elementary rotation matrix for one axis from a
// binary angle.
func Rotation(angle int32, axis Axis) Mat3 {
	s, c := Sin(angle), Cos(angle)
	switch axis {
	case AxisX:
		return Mat3{
			One, 0, 0,
			0, c, -s,
			0, s, c,
		}
	case AxisY:
		return Mat3{
			c, 0, s,
			0, One, 0,
			-s, 0, c,
		}
	default:
		return Mat3{
			c, -s, 0,
			s, c, 0,
			0, 0, One,
		}
	}
}

// RotationZYX composes Rz · Ry · Rx from an Euler triple, the rotation
// order used by skeleton keyframes.
func RotationZYX(rx, ry, rz int32) Mat3 {
	return Mul(Mul(Rotation(rz, AxisZ), Rotation(ry, AxisY)), Rotation(rx, AxisX))
}

// Sine table: 4096 steps per turn, 4.12 amplitude. Built once at init;
// the per-frame path is pure table lookup.
const trigSteps = 4096

var sinTable [trigSteps]int32

func init() {
	for i := range sinTable {
		sinTable[i] = int32(math.Round(math.Sin(2*math.Pi*float64(i)/trigSteps) * One))
	}
}

// Sin returns sin of a binary angle in 4.12 fixed point.
func Sin(angle int32) int32 {
	return sinTable[(uint32(angle)>>4)&(trigSteps-1)]
}

// Cos returns cos of a binary angle in 4.12 fixed point.
func Cos(angle int32) int32 {
	return sinTable[((uint32(angle)>>4)+trigSteps/4)&(trigSteps-1)]
}
