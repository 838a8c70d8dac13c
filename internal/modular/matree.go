package modular

// The meta-adaptive (MA) tree selects, per sample, which predictor and
// entropy context to use based on the local neighbourhood (spec.md §4.5
// step 6). This package supports a small, fixed set of predictor classes
// rather than the fully general per-node tree: SelectPredictor chooses
// among MED, west-only and north-only by comparing local gradient
// strength against a threshold; Predict also implements an average
// class, which SelectPredictor never returns. This keeps selection
// decodable from already-reconstructed
// neighbours alone, which is the same constraint the teacher's predictor
// choice (plain two-tap lifting) satisfies by construction.

// PredictorClass identifies which predictor a sample used.
type PredictorClass int

const (
	ClassMED PredictorClass = iota
	ClassWest
	ClassNorth
	ClassAverage
)

// gradientThreshold controls how aggressively SelectPredictor favours
// the directional predictors over full MED when one neighbour dominates.
const gradientThreshold = 8

// SelectPredictor chooses a predictor class from the already-known W, N,
// NW neighbourhood, the same inputs MED uses, so the decoder can
// reproduce the choice without side information.
func SelectPredictor(w, n, nw int32) PredictorClass {
	dh := absI32(w - nw)
	dv := absI32(n - nw)
	switch {
	case dh > dv+gradientThreshold:
		return ClassNorth
	case dv > dh+gradientThreshold:
		return ClassWest
	default:
		return ClassMED
	}
}

// Predict applies the chosen predictor class.
func Predict(class PredictorClass, w, n, nw, maxSampleValue int32) int32 {
	switch class {
	case ClassWest:
		return w
	case ClassNorth:
		return n
	case ClassAverage:
		return (w + n + 1) >> 1
	default:
		return MED(w, n, nw, maxSampleValue)
	}
}

// PredictPlaneAdaptive runs per-sample adaptive predictor selection over
// p, returning the residual plane and the per-sample predictor classes
// chosen. The classes are fully determined by each sample's W/N/NW
// neighbourhood, which a decoder reconstructs before it needs the class
// for that sample; UnpredictPlaneAdaptive recomputes them the same way,
// so no side channel is required in the bitstream. The classes are
// still returned here for callers that want them for entropy-context
// derivation (entropy.ResidualContext).
func PredictPlaneAdaptive(p *Plane, maxSampleValue int32) (res *Plane, classes []PredictorClass) {
	res = &Plane{Width: p.Width, Height: p.Height, Data: make([]int32, p.Width*p.Height)}
	classes = make([]PredictorClass, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			w, n, nw := neighbours(p, x, y)
			class := ClassMED
			if x > 0 && y > 0 {
				class = SelectPredictor(w, n, nw)
			}
			pred := predictByEdge(x, y, class, w, n, nw, maxSampleValue)
			classes[y*p.Width+x] = class
			res.Set(x, y, p.At(x, y)-pred)
		}
	}
	return res, classes
}

// UnpredictPlaneAdaptive inverts PredictPlaneAdaptive. It recomputes each
// sample's predictor class from the already-reconstructed W/N/NW
// neighbours rather than reading it from a side channel, since those
// neighbours equal what PredictPlaneAdaptive saw at encode time.
func UnpredictPlaneAdaptive(res *Plane, maxSampleValue int32) *Plane {
	out := &Plane{Width: res.Width, Height: res.Height, Data: make([]int32, res.Width*res.Height)}
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			w, n, nw := neighbours(out, x, y)
			class := ClassMED
			if x > 0 && y > 0 {
				class = SelectPredictor(w, n, nw)
			}
			pred := predictByEdge(x, y, class, w, n, nw, maxSampleValue)
			out.Set(x, y, res.At(x, y)+pred)
		}
	}
	return out
}

func predictByEdge(x, y int, class PredictorClass, w, n, nw, maxSampleValue int32) int32 {
	switch {
	case x == 0 && y == 0:
		return 0
	case y == 0:
		return w
	case x == 0:
		return n
	default:
		return Predict(class, w, n, nw, maxSampleValue)
	}
}

func neighbours(p *Plane, x, y int) (w, n, nw int32) {
	if x > 0 {
		w = p.At(x-1, y)
	}
	if y > 0 {
		n = p.At(x, y-1)
	}
	if x > 0 && y > 0 {
		nw = p.At(x-1, y-1)
	}
	return
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
