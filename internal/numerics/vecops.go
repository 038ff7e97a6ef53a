// Package numerics holds the leaf-level primitives every other PHY package
// builds on: complex vector arithmetic, bit packing, CRC, the LTE Gold
// pseudorandom sequence, and a cached DFT plan. The vector operations write
// into caller-owned buffers; GoldBits returns a fresh slice and allocates its
// shift registers on each call, and CRC.Check copies the payload it checks.
package numerics

import "math/cmplx"

// VecAdd computes z[i] = x[i] + y[i]. x, y, z must have equal length.
func VecAdd(x, y, z []complex128) {
	for i := range x {
		z[i] = x[i] + y[i]
	}
}

// VecMul computes elementwise product z[i] = x[i] * y[i].
func VecMul(x, y, z []complex128) {
	for i := range x {
		z[i] = x[i] * y[i]
	}
}

// VecConj writes the elementwise conjugate of x into y.
func VecConj(x, y []complex128) {
	for i := range x {
		y[i] = cmplx.Conj(x[i])
	}
}

// VecScale multiplies every element of x by h, writing into z.
func VecScale(x []complex128, h complex128, z []complex128) {
	for i := range x {
		z[i] = x[i] * h
	}
}

// Dot returns the inner product sum(conj(x[i]) * y[i]).
func Dot(x, y []complex128) complex128 {
	var acc complex128
	for i := range x {
		acc += cmplx.Conj(x[i]) * y[i]
	}
	return acc
}

// AvgPower returns the mean squared magnitude of x.
func AvgPower(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	var acc float64
	for _, v := range x {
		m := cmplx.Abs(v)
		acc += m * m
	}
	return acc / float64(len(x))
}

// Abs writes the magnitude of each element of x into out.
func Abs(x []complex128, out []float64) {
	for i, v := range x {
		out[i] = cmplx.Abs(v)
	}
}

// MaxIndex returns the index of the largest element of x. Panics on an
// empty slice, since that is always a caller bug, never air-interface data.
func MaxIndex(x []float64) int {
	if len(x) == 0 {
		panic("numerics: MaxIndex of empty slice")
	}
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
