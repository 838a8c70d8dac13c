package modular

// MED is the Median Edge Detector predictor (spec.md §4.5 step 5 and the
// GLOSSARY's "MED" entry), used as the default leaf predictor of the MA
// tree. Given west (W), north (N), and northwest (NW) neighbours it
// predicts the current sample as N + W - NW, clamped to the valid sample
// range. maxSampleValue <= 0 disables clamping (used for squeeze
// sub-planes, whose values are not themselves clamped samples).
func MED(w, n, nw, maxSampleValue int32) int32 {
	pred := n + w - nw
	if maxSampleValue <= 0 {
		return pred
	}
	if pred < 0 {
		return 0
	}
	if pred > maxSampleValue {
		return maxSampleValue
	}
	return pred
}

// PredictPlane runs MED prediction over every sample of p, producing a
// same-shaped plane of residuals (actual - predicted). The first row and
// first column fall back to the edge rules spec.md §4.5 names: the
// top-left sample predicts to zero, the rest of the first row predicts
// from its west neighbour, and the rest of the first column predicts
// from its north neighbour.
func PredictPlane(p *Plane, maxSampleValue int32) *Plane {
	res := &Plane{Width: p.Width, Height: p.Height, Data: make([]int32, p.Width*p.Height)}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			pred := predictAt(p, x, y, maxSampleValue)
			res.Set(x, y, p.At(x, y)-pred)
		}
	}
	return res
}

// UnpredictPlane inverts PredictPlane: res holds residuals in the same
// raster order MED prediction was computed in, so reconstruction walks
// the same order, using already-reconstructed neighbours.
func UnpredictPlane(res *Plane, maxSampleValue int32) *Plane {
	out := &Plane{Width: res.Width, Height: res.Height, Data: make([]int32, res.Width*res.Height)}
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			pred := predictAt(out, x, y, maxSampleValue)
			out.Set(x, y, res.At(x, y)+pred)
		}
	}
	return out
}

func predictAt(p *Plane, x, y int, maxSampleValue int32) int32 {
	switch {
	case x == 0 && y == 0:
		return 0
	case y == 0:
		return p.At(x-1, y)
	case x == 0:
		return p.At(x, y-1)
	default:
		return MED(p.At(x-1, y), p.At(x, y-1), p.At(x-1, y-1), maxSampleValue)
	}
}
