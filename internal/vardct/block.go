// Package vardct implements the VarDCT (lossy, perceptual) pipeline
// (spec.md §4.6): 8x8 block extraction, the forward/inverse DCT-II,
// chroma-from-luma prediction, adaptive quantisation, natural-order
// coefficient scanning, DC prediction, and progressive pass splitting.
//
// The block/tile-component decomposition is grounded on the teacher's
// tile/resolution/band/code-block hierarchy (internal/tcd/tcd.go),
// generalised from JPEG 2000's multi-resolution wavelet bands to JPEG
// XL's fixed 8x8 DCT blocks.
package vardct

// BlockSize is the fixed VarDCT transform block edge length.
const BlockSize = 8

// Block holds one channel's 8x8 sample neighbourhood, edge-replicated
// when it overlaps the image boundary (spec.md §4.6 step 2).
type Block struct {
	Samples [BlockSize][BlockSize]float64
}

// ExtractBlock reads the 8x8 neighbourhood of (bx, by) (in block units)
// from a row-major plane, replicating edge samples past the image
// boundary so every block is fully populated regardless of image size.
func ExtractBlock(plane []float64, width, height, bx, by int) Block {
	var b Block
	for dy := 0; dy < BlockSize; dy++ {
		y := clampInt(by*BlockSize+dy, 0, height-1)
		for dx := 0; dx < BlockSize; dx++ {
			x := clampInt(bx*BlockSize+dx, 0, width-1)
			b.Samples[dy][dx] = plane[y*width+x]
		}
	}
	return b
}

// StoreBlock writes an 8x8 block back into a row-major plane, clipping
// any portion that falls outside the image boundary.
func StoreBlock(plane []float64, width, height, bx, by int, b Block) {
	for dy := 0; dy < BlockSize; dy++ {
		y := by*BlockSize + dy
		if y >= height {
			continue
		}
		for dx := 0; dx < BlockSize; dx++ {
			x := bx*BlockSize + dx
			if x >= width {
				continue
			}
			plane[y*width+x] = b.Samples[dy][dx]
		}
	}
}

// BlockGridDims returns how many blocks of BlockSize tile a width x
// height plane, rounding up.
func BlockGridDims(width, height int) (bw, bh int) {
	return (width + BlockSize - 1) / BlockSize, (height + BlockSize - 1) / BlockSize
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// naturalOrder is the coefficient scan order used for the fixed 8x8
// block: the same anti-diagonal zigzag scan as baseline JPEG (0, 1, 8,
// 16, 9, 2, ...), computed once at init time. No other block size or
// per-transform permutation is provided.
var naturalOrder = computeNaturalOrder()

func computeNaturalOrder() [BlockSize * BlockSize]int {
	var order [BlockSize * BlockSize]int
	idx := 0
	for sum := 0; sum <= 2*(BlockSize-1); sum++ {
		if sum%2 == 0 {
			for y := min(sum, BlockSize-1); y >= max(0, sum-BlockSize+1); y-- {
				x := sum - y
				order[idx] = y*BlockSize + x
				idx++
			}
		} else {
			for x := min(sum, BlockSize-1); x >= max(0, sum-BlockSize+1); x-- {
				y := sum - x
				order[idx] = y*BlockSize + x
				idx++
			}
		}
	}
	return order
}

// NaturalOrder returns the coefficient scan order for an 8x8 block:
// NaturalOrder()[k] is the row-major coefficient index of the k-th
// scanned coefficient.
func NaturalOrder() [BlockSize * BlockSize]int { return naturalOrder }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
