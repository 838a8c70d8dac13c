// Package colortransform implements the per-sample colour transforms
// shared by the Modular and VarDCT pipelines (spec.md §4.5 step 2 and
// §4.6 step 1): the reversible YCoCg-R transform, the XYB opsin transform,
// YCbCr BT.601, and DC level shifting. Grounded on the reversible/
// irreversible component transform pair the teacher package implements
// for JPEG 2000, generalised to JPEG XL's actual matrices.
package colortransform

import "math"

// ForwardYCoCgR applies the reversible RCT JPEG XL uses in the Modular
// pipeline (spec.md §4.5 step 2). r, g, b are overwritten in place with
// Y, Co, Cg.
func ForwardYCoCgR(r, g, b []int32) {
	for i := range r {
		co := r[i] - b[i]
		tmp := b[i] + co>>1
		cg := g[i] - tmp
		y := tmp + cg>>1

		r[i] = y
		g[i] = co
		b[i] = cg
	}
}

// InverseYCoCgR undoes ForwardYCoCgR.
func InverseYCoCgR(y, co, cg []int32) {
	for i := range y {
		tmp := y[i] - cg[i]>>1
		g := cg[i] + tmp
		b := tmp - co[i]>>1
		r := b + co[i]

		y[i] = r
		co[i] = g
		cg[i] = b
	}
}

// Opsin bias constants (spec.md §4.6 step 1). JPEG XL adds a small bias
// before the cube root to keep the transform well-conditioned near zero.
const (
	opsinBiasR   = 0.0037930734
	opsinBiasG   = 0.0037930734
	opsinBiasB   = 0.0037930734
	cbrtBiasOffs = 0.155954200549
)

// opsinMatrix is the linear RGB -> LMS-like mixing matrix preceding the
// cube root (row-major 3x3), per spec.md §4.6 step 1.
var opsinMatrix = [9]float64{
	0.30, 0.622, 0.078,
	0.23, 0.692, 0.078,
	0.24315, 0.20326, 0.55359,
}

var opsinInverse = invert3x3(opsinMatrix)

// ForwardOpsin converts linear-light RGB to the XYB opsin colour space
// used by VarDCT (spec.md §4.6 step 1): a 3x3 mix into an LMS-like space,
// cube root with a small bias, then X = cbrtL - cbrtM, Y = cbrtL + cbrtM,
// B = cbrtS (B channel left as-is, matching JPEG XL's XYB convention).
func ForwardOpsin(r, g, b []float64) {
	for i := range r {
		lR, lG, lB := r[i], g[i], b[i]
		l := opsinMatrix[0]*lR + opsinMatrix[1]*lG + opsinMatrix[2]*lB + opsinBiasR
		m := opsinMatrix[3]*lR + opsinMatrix[4]*lG + opsinMatrix[5]*lB + opsinBiasG
		s := opsinMatrix[6]*lR + opsinMatrix[7]*lG + opsinMatrix[8]*lB + opsinBiasB

		cl := cbrtSigned(l) - cbrtBiasOffs
		cm := cbrtSigned(m) - cbrtBiasOffs
		cs := cbrtSigned(s) - cbrtBiasOffs

		r[i] = cl - cm
		g[i] = cl + cm
		b[i] = cs
	}
}

// InverseOpsin undoes ForwardOpsin.
func InverseOpsin(x, y, b []float64) {
	for i := range x {
		cl := (x[i] + y[i]) / 2
		cm := y[i] - cl
		cs := b[i]

		l := cube(cl+cbrtBiasOffs) - opsinBiasR
		m := cube(cm+cbrtBiasOffs) - opsinBiasG
		s := cube(cs+cbrtBiasOffs) - opsinBiasB

		x[i] = opsinInverse[0]*l + opsinInverse[1]*m + opsinInverse[2]*s
		y[i] = opsinInverse[3]*l + opsinInverse[4]*m + opsinInverse[5]*s
		b[i] = opsinInverse[6]*l + opsinInverse[7]*m + opsinInverse[8]*s
	}
}

func cbrtSigned(v float64) float64 {
	if v < 0 {
		return -math.Cbrt(-v)
	}
	return math.Cbrt(v)
}

func cube(v float64) float64 { return v * v * v }

// ForwardYCbCr applies BT.601 full-range RGB to YCbCr, used for the
// non-XYB colour path (spec.md §4.6 Non-goals carve-out for passthrough
// encoding).
func ForwardYCbCr(r, g, b []float64) {
	for i := range r {
		y := 0.299*r[i] + 0.587*g[i] + 0.114*b[i]
		cb := -0.168736*r[i] - 0.331264*g[i] + 0.5*b[i]
		cr := 0.5*r[i] - 0.418688*g[i] - 0.081312*b[i]
		r[i] = y
		g[i] = cb
		b[i] = cr
	}
}

// InverseYCbCr undoes ForwardYCbCr.
func InverseYCbCr(y, cb, cr []float64) {
	for i := range y {
		r := y[i] + 1.402*cr[i]
		g := y[i] - 0.344136*cb[i] - 0.714136*cr[i]
		b := y[i] + 1.772*cb[i]
		y[i] = r
		cb[i] = g
		cr[i] = b
	}
}

// DCLevelShiftForward subtracts the midpoint of an unsigned range,
// mapping [0, 2^precision) to a signed range centered at zero.
func DCLevelShiftForward(data []int32, precision int) {
	shift := int32(1) << (precision - 1)
	for i := range data {
		data[i] -= shift
	}
}

// DCLevelShiftInverse undoes DCLevelShiftForward.
func DCLevelShiftInverse(data []int32, precision int) {
	shift := int32(1) << (precision - 1)
	for i := range data {
		data[i] += shift
	}
}

func invert3x3(a [9]float64) [9]float64 {
	det := a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
	if math.Abs(det) < 1e-12 {
		return [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	invDet := 1.0 / det
	return [9]float64{
		(a[4]*a[8] - a[5]*a[7]) * invDet,
		(a[2]*a[7] - a[1]*a[8]) * invDet,
		(a[1]*a[5] - a[2]*a[4]) * invDet,
		(a[5]*a[6] - a[3]*a[8]) * invDet,
		(a[0]*a[8] - a[2]*a[6]) * invDet,
		(a[2]*a[3] - a[0]*a[5]) * invDet,
		(a[3]*a[7] - a[4]*a[6]) * invDet,
		(a[1]*a[6] - a[0]*a[7]) * invDet,
		(a[0]*a[4] - a[1]*a[3]) * invDet,
	}
}
