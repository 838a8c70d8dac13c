package vardct

import "gonum.org/v1/gonum/stat"

// CflModel is a chroma-from-luma predictor: chroma_ac ~= slope * luma_ac
// + intercept, fit per block from already-decoded luma AC coefficients
// (spec.md §4.6 step 4).
type CflModel struct {
	Slope     float64
	Intercept float64
}

// FitCfL performs an ordinary least-squares fit of chroma AC
// coefficients against the co-located luma AC coefficients, using
// gonum/stat's unweighted linear regression.
func FitCfL(lumaAC, chromaAC []float64) CflModel {
	if len(lumaAC) == 0 || len(lumaAC) != len(chromaAC) {
		return CflModel{}
	}
	intercept, slope := stat.LinearRegression(lumaAC, chromaAC, nil, false)
	return CflModel{Slope: slope, Intercept: intercept}
}

// Predict returns the CfL model's chroma prediction for a given luma
// coefficient.
func (m CflModel) Predict(luma float64) float64 {
	return m.Slope*luma + m.Intercept
}

// ResidualAfterCfL returns chromaAC with the CfL prediction subtracted,
// the signal actually entropy-coded when CfL is in use.
func ResidualAfterCfL(m CflModel, lumaAC, chromaAC []float64) []float64 {
	out := make([]float64, len(chromaAC))
	for i := range chromaAC {
		out[i] = chromaAC[i] - m.Predict(lumaAC[i])
	}
	return out
}
