// Channel encoding orchestration: optional squeeze -> adaptive MED/MA
// prediction -> zigzag -> rANS, tying the rest of this package to
// internal/entropy (spec.md §4.5 steps 3-8). The colour transform is
// applied by the caller before these functions run.
package modular

import (
	"github.com/pkg/errors"

	"github.com/jxl-go/jxlenc/internal/entropy"
)

// ChannelResult is one Modular channel's fully encoded payload, ready to
// be framed into a group by the caller.
type ChannelResult struct {
	Width, Height int
	Distribution  *entropy.Distribution
	Payload       []byte
}

// EncodeChannel predicts p adaptively, maps residuals through zigzag, and
// rANS-encodes the resulting symbol stream. Squeeze decomposition is the
// caller's responsibility (via DecomposeRecursive) since it changes the
// channel's shape into multiple sub-planes, each encoded independently.
// maxSampleValue bounds MED's clamp (spec.md §4.5 step 5); pass <= 0 for
// sub-planes (e.g. squeeze residuals) that aren't themselves samples.
func EncodeChannel(p *Plane, maxSampleValue int32) (*ChannelResult, []PredictorClass, error) {
	if p.Width == 0 || p.Height == 0 {
		return nil, nil, errors.New("modular: empty channel")
	}
	res, classes := PredictPlaneAdaptive(p, maxSampleValue)
	symbols := ZigZagPlane(res)

	alphabet := maxSymbol(symbols) + 1
	if alphabet < 2 {
		alphabet = 2
	}
	dist, err := entropy.BuildDistribution(symbols, alphabet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "modular: building channel distribution")
	}
	enc := entropy.NewEncoder(dist)
	payload, err := enc.Encode(symbols)
	if err != nil {
		return nil, nil, errors.Wrap(err, "modular: encoding channel")
	}
	return &ChannelResult{Width: p.Width, Height: p.Height, Distribution: dist, Payload: payload}, classes, nil
}

func maxSymbol(symbols []uint16) int {
	max := 0
	for _, s := range symbols {
		if int(s) > max {
			max = int(s)
		}
	}
	return max
}

// EncodeChannelWithSqueeze recursively squeezes p, encoding every
// resulting average/residual plane as its own channel (spec.md §4.5
// "recursive per effort"). It returns the coarsest channel first,
// followed by the per-level residual channels in coarse-to-fine order,
// matching the order a decoder must reconstruct in. maxSampleValue bounds
// MED's clamp for the coarse (sample-domain) plane only: the per-level
// residual planes hold signed differences, not samples, so they predict
// unclamped.
func EncodeChannelWithSqueeze(p *Plane, maxLevels, minDim int, maxSampleValue int32) ([]*ChannelResult, error) {
	coarse, levels := DecomposeRecursive(p, maxLevels, minDim)

	results := make([]*ChannelResult, 0, 1+2*len(levels))
	coarseResult, _, err := EncodeChannel(coarse, maxSampleValue)
	if err != nil {
		return nil, errors.Wrap(err, "modular: encoding coarse plane")
	}
	results = append(results, coarseResult)

	for i := len(levels) - 1; i >= 0; i-- {
		vRes, _, err := EncodeChannel(levels[i].VerticalResidual, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "modular: encoding level %d vertical residual", i)
		}
		hRes, _, err := EncodeChannel(levels[i].HorizontalResidual, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "modular: encoding level %d horizontal residual", i)
		}
		results = append(results, vRes, hRes)
	}
	return results, nil
}
