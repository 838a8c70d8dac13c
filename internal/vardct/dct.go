package vardct

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// basis[u][x] is the separable DCT-II basis function, precomputed once.
var basis = computeBasis()

func computeBasis() [BlockSize][BlockSize]float64 {
	var b [BlockSize][BlockSize]float64
	for u := 0; u < BlockSize; u++ {
		c := 1.0
		if u == 0 {
			c = 1.0 / math.Sqrt2
		}
		for x := 0; x < BlockSize; x++ {
			b[u][x] = c * math.Cos((math.Pi/BlockSize)*(float64(x)+0.5)*float64(u))
		}
	}
	return b
}

// scale normalises the DCT-II so that ForwardDCT/InverseDCT are exact
// inverses under orthonormal scaling.
const scale = 0.5 // sqrt(2/N) with N=8 folded into basis' leading coefficient

// column extracts column x of an 8x8 block into a fresh slice so the
// gonum/floats dot-product helpers can walk it contiguously.
func column(b *Block, x int) []float64 {
	var col [BlockSize]float64
	for y := 0; y < BlockSize; y++ {
		col[y] = b.Samples[y][x]
	}
	return col[:]
}

// ForwardDCT computes the 2D separable DCT-II of an 8x8 block, rows
// first then columns (spec.md §4.6 step 3).
func ForwardDCT(b Block) Block {
	var rowT Block
	for y := 0; y < BlockSize; y++ {
		row := b.Samples[y][:]
		for u := 0; u < BlockSize; u++ {
			rowT.Samples[y][u] = floats.Dot(row, basis[u][:]) * scale
		}
	}
	var out Block
	for u := 0; u < BlockSize; u++ {
		col := column(&rowT, u)
		for v := 0; v < BlockSize; v++ {
			out.Samples[v][u] = floats.Dot(col, basis[v][:]) * scale
		}
	}
	return out
}

// InverseDCT computes the 2D separable inverse DCT (DCT-III) of an 8x8
// coefficient block.
func InverseDCT(b Block) Block {
	var colT Block
	for u := 0; u < BlockSize; u++ {
		col := column(&b, u)
		basisCol := func(y int) []float64 {
			var c [BlockSize]float64
			for v := 0; v < BlockSize; v++ {
				c[v] = basis[v][y]
			}
			return c[:]
		}
		for y := 0; y < BlockSize; y++ {
			colT.Samples[y][u] = floats.Dot(col, basisCol(y)) * scale
		}
	}
	var out Block
	for y := 0; y < BlockSize; y++ {
		row := colT.Samples[y][:]
		for x := 0; x < BlockSize; x++ {
			out.Samples[y][x] = floats.Dot(row, basis2col(x)) * scale
		}
	}
	return out
}

// basis2col extracts column x of the basis matrix (basis[u][x] for all
// u), used by InverseDCT's second pass where the sum runs over u.
func basis2col(x int) []float64 {
	var c [BlockSize]float64
	for u := 0; u < BlockSize; u++ {
		c[u] = basis[u][x]
	}
	return c[:]
}
