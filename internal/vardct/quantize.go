package vardct

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// QuantTable holds one channel's per-coefficient quantisation weights,
// indexed in row-major (not natural) order (spec.md §4.6 step 5).
type QuantTable struct {
	Weights [BlockSize * BlockSize]float64
}

// baseWeights approximates JPEG XL's perceptual weighting: low
// frequencies get fine steps, high frequencies coarser ones, scaled by
// the requested distance.
func baseWeights(dcWeight, acSlope float64) QuantTable {
	var t QuantTable
	for v := 0; v < BlockSize; v++ {
		for u := 0; u < BlockSize; u++ {
			freq := math.Hypot(float64(u), float64(v))
			w := dcWeight
			if u != 0 || v != 0 {
				w = dcWeight * (1 + acSlope*freq)
			}
			t.Weights[v*BlockSize+u] = w
		}
	}
	return t
}

// DistanceToStepSize converts a perceptual distance (0 = lossless, per
// spec.md's quality/distance mapping) to a base quantisation step.
func DistanceToStepSize(distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	return 0.25 * distance
}

// TableForDistance returns the quantisation table for a given target
// distance, using a fixed perceptual weighting curve.
func TableForDistance(distance float64) QuantTable {
	step := DistanceToStepSize(distance)
	return baseWeights(step, 0.12)
}

// BlockActivity measures a block's local variance as an adaptive
// quantisation signal (spec.md §4.6 step 5: "adaptive quantisation
// (block-activity variance)"), computed with gonum/stat so active
// (detailed) blocks get finer steps and flat blocks get coarser ones.
func BlockActivity(b Block) float64 {
	samples := make([]float64, 0, BlockSize*BlockSize)
	for y := 0; y < BlockSize; y++ {
		samples = append(samples, b.Samples[y][:]...)
	}
	return stat.Variance(samples, nil)
}

// AdaptiveScale derives a per-block quantisation multiplier from its
// activity: high-variance (busy) blocks are quantised more finely
// (smaller multiplier) than flat blocks, within [0.5, 1.5].
func AdaptiveScale(activity float64) float64 {
	norm := activity / (activity + 64)
	scale := 1.5 - norm
	return clampFloat(scale, 0.5, 1.5)
}

// Quantize rounds a DCT coefficient block to integers using the given
// table (which already carries the distance) and per-block adaptive
// scale. A zero step rounds the coefficient without dividing.
func Quantize(coeffs Block, table QuantTable, scale float64) [BlockSize * BlockSize]int32 {
	var out [BlockSize * BlockSize]int32
	for v := 0; v < BlockSize; v++ {
		for u := 0; u < BlockSize; u++ {
			idx := v*BlockSize + u
			step := table.Weights[idx] * scale
			if step <= 0 {
				out[idx] = int32(math.Round(coeffs.Samples[v][u]))
				continue
			}
			out[idx] = int32(math.Round(coeffs.Samples[v][u] / step))
		}
	}
	return out
}

// Dequantize reconstructs a coefficient block from quantised integers.
func Dequantize(q [BlockSize * BlockSize]int32, table QuantTable, scale float64) Block {
	var out Block
	for v := 0; v < BlockSize; v++ {
		for u := 0; u < BlockSize; u++ {
			idx := v*BlockSize + u
			step := table.Weights[idx] * scale
			if step <= 0 {
				out.Samples[v][u] = float64(q[idx])
				continue
			}
			out.Samples[v][u] = float64(q[idx]) * step
		}
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ROIOverride widens or narrows a block's adaptive scale within a
// region of interest, feathered with a raised-cosine ramp across
// featherPixels so ROI boundaries don't introduce a visible seam
// (spec.md's DOMAIN STACK adaptive-quantisation ROI override).
func ROIOverride(baseScale float64, distanceToROIEdge, featherPixels int, roiScale float64) float64 {
	if distanceToROIEdge <= 0 {
		return roiScale
	}
	if featherPixels <= 0 || distanceToROIEdge >= featherPixels {
		return baseScale
	}
	t := float64(distanceToROIEdge) / float64(featherPixels)
	weight := 0.5 * (1 - math.Cos(math.Pi*t))
	return roiScale + weight*(baseScale-roiScale)
}
