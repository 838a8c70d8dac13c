package entropy

// Context-ID derivation helpers. SPEC_FULL.md's SUPPLEMENTED FEATURES
// section pins these down so the Modular (C5) and VarDCT (C6) encoders
// derive rANS contexts consistently; spec.md §4.3/§4.6 name "a context ≈
// function of ..." without giving the exact formula.

// Band identifies a VarDCT coefficient's coarse frequency role, mirroring
// the band-type constants the teacher package exposed to its encoder.
type Band int

const (
	BandDC Band = iota
	BandLowFreqAC
	BandHighFreqAC
)

// ACContext derives an entropy context for an AC coefficient from its
// block position (channel), the count of non-zero coefficients already
// seen in that block, and the coefficient's natural-order index.
func ACContext(channel int, prevNonZero int, coeffIndex int) int {
	if prevNonZero > 15 {
		prevNonZero = 15
	}
	band := 0
	switch {
	case coeffIndex >= 16:
		band = 2
	case coeffIndex >= 1:
		band = 1
	}
	ctx := channel*64 + band*16 + prevNonZero
	return ctx % MaxContexts
}

// DCContext derives an entropy context for a DC coefficient residual from
// its channel and the residual's predicted magnitude bucket.
func DCContext(channel int, predictedMagnitude int) int {
	bucket := bitLength(predictedMagnitude)
	if bucket > 11 {
		bucket = 11
	}
	return (channel*12 + bucket) % MaxContexts
}

// ResidualContext derives a Modular-mode entropy context from the MA
// tree's selected predictor class and a small activity measure over the
// already-encoded neighbourhood.
func ResidualContext(predictorClass int, neighborActivity int) int {
	bucket := bitLength(neighborActivity)
	if bucket > 15 {
		bucket = 15
	}
	return (predictorClass*16 + bucket) % MaxContexts
}

func bitLength(v int) int {
	if v < 0 {
		v = -v
	}
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
