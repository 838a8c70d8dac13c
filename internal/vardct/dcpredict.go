package vardct

import "github.com/jxl-go/jxlenc/internal/modular"

// PredictDC predicts a block's DC coefficient from its already-coded
// west and north neighbours using the same MED rule the Modular pipeline
// uses for spatial prediction, so DC planes (effectively a coarse
// downsampled image) compress the same way (spec.md §4.6 step 6). DC
// values are signed, so the prediction is not clamped.
func PredictDC(west, north, northwest int32) int32 {
	return modular.MED(west, north, northwest, 0)
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// DCPlane holds one channel's per-block DC coefficients in block-raster
// order.
type DCPlane struct {
	BlocksWide, BlocksHigh int
	Values                 []int32
}

// At returns the DC value at block (bx, by).
func (d *DCPlane) At(bx, by int) int32 { return d.Values[by*d.BlocksWide+bx] }

// PredictResiduals returns every DC value's prediction residual, walking
// in raster order so every predictor input is already available; d itself
// is left unchanged.
func (d *DCPlane) PredictResiduals() []int32 {
	res := make([]int32, len(d.Values))
	for by := 0; by < d.BlocksHigh; by++ {
		for bx := 0; bx < d.BlocksWide; bx++ {
			var w, n, nw int32
			if bx > 0 {
				w = d.At(bx-1, by)
			}
			if by > 0 {
				n = d.At(bx, by-1)
			}
			if bx > 0 && by > 0 {
				nw = d.At(bx-1, by-1)
			}
			pred := int32(0)
			switch {
			case bx == 0 && by == 0:
				pred = 0
			case by == 0:
				pred = w
			case bx == 0:
				pred = n
			default:
				pred = PredictDC(w, n, nw)
			}
			res[by*d.BlocksWide+bx] = d.At(bx, by) - pred
		}
	}
	return res
}

// ReconstructFromResiduals inverts PredictResiduals.
func ReconstructFromResiduals(residuals []int32, blocksWide, blocksHigh int) *DCPlane {
	out := &DCPlane{BlocksWide: blocksWide, BlocksHigh: blocksHigh, Values: make([]int32, len(residuals))}
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			var w, n, nw int32
			if bx > 0 {
				w = out.At(bx-1, by)
			}
			if by > 0 {
				n = out.At(bx, by-1)
			}
			if bx > 0 && by > 0 {
				nw = out.At(bx-1, by-1)
			}
			pred := int32(0)
			switch {
			case bx == 0 && by == 0:
				pred = 0
			case by == 0:
				pred = w
			case bx == 0:
				pred = n
			default:
				pred = PredictDC(w, n, nw)
			}
			out.Values[by*blocksWide+bx] = residuals[by*blocksWide+bx] + pred
		}
	}
	return out
}
