package vardct

import (
	"github.com/pkg/errors"

	"github.com/jxl-go/jxlenc/internal/entropy"
	"github.com/jxl-go/jxlenc/internal/modular"
)

// Pass identifies a progressive coding pass: DC-only, low-frequency AC,
// or high-frequency AC (spec.md §4.6 step 7, "progressive passes").
type Pass int

const (
	PassDC Pass = iota
	PassLowFreqAC
	PassHighFreqAC
)

// passBounds gives the natural-order coefficient index range each pass
// covers: DC is coefficient 0 alone, low frequency is indices 1-15,
// high frequency is the remainder.
func passBounds(p Pass) (lo, hi int) {
	switch p {
	case PassDC:
		return 0, 1
	case PassLowFreqAC:
		return 1, 16
	default:
		return 16, BlockSize * BlockSize
	}
}

// acContextBuckets is the number of distinct entropy contexts an AC pass
// is split into before clustering, matching entropy.ACContext's
// channel*64 stride collapsed to a single-channel range.
const acContextBuckets = 64

// clusterThreshold/clusterMaxKL tune when ContextSet.Cluster merges
// near-identical AC contexts, keeping per-block side tables small for
// blocks that are mostly flat.
const (
	clusterThreshold = 8
	clusterMaxKL     = 0.05
)

// ACPassResult is one progressive pass's context-clustered entropy
// coding: a symbol stream per surviving cluster, plus the context ->
// cluster map a decoder needs to route coefficients back.
type ACPassResult struct {
	Contexts   *entropy.ContextSet
	ClusterEnc []*modular.ChannelResult // one per distinct cluster survivor
}

// ChannelResult is one VarDCT channel's encoded output: the DC plane
// (entropy-coded separately as its own low-resolution image) plus one
// entropy-coded AC payload per progressive pass.
type ChannelResult struct {
	DC         *modular.ChannelResult
	ACPasses   [3]*ACPassResult
	BlocksWide int
	BlocksHigh int
}

// EncodeChannel runs the full VarDCT pipeline over one colour channel:
// block extraction, forward DCT, adaptive quantisation (overridden
// within roi when non-nil), DC prediction, natural-order AC scanning
// split into progressive passes with per-coefficient entropy contexts,
// and rANS entropy coding of each resulting symbol stream (spec.md §4.6
// steps 2-7). roi may be nil.
func EncodeChannel(plane []float64, width, height int, distance float64, roi *ROI) (*ChannelResult, error) {
	if width == 0 || height == 0 {
		return nil, errors.New("vardct: empty channel")
	}
	bw, bh := BlockGridDims(width, height)
	table := TableForDistance(distance)
	order := NaturalOrder()

	dcPlane := &DCPlane{BlocksWide: bw, BlocksHigh: bh, Values: make([]int32, bw*bh)}
	// Per pass, bucket AC symbols by entropy.ACContext so busy blocks
	// (many prior non-zero coefficients) and quiet blocks get separately
	// modelled distributions.
	acBuckets := [3][acContextBuckets][]uint16{}

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := ExtractBlock(plane, width, height, bx, by)
			activity := BlockActivity(block)
			scale := roiAdjustedScale(AdaptiveScale(activity), roi, bx, by)
			coeffs := ForwardDCT(block)
			q := Quantize(coeffs, table, scale)

			dcPlane.Values[by*bw+bx] = q[0]

			prevNonZero := 0
			for _, pass := range []Pass{PassLowFreqAC, PassHighFreqAC} {
				lo, hi := passBounds(pass)
				for k := lo; k < hi; k++ {
					coeff := q[order[k]]
					sym := modular.ZigZagEncode(coeff)
					if sym > 0xFFFF {
						sym = 0xFFFF
					}
					ctx := entropy.ACContext(0, prevNonZero, k) % acContextBuckets
					acBuckets[pass][ctx] = append(acBuckets[pass][ctx], uint16(sym))
					if coeff != 0 {
						prevNonZero++
					}
				}
			}
		}
	}

	dcResiduals := dcPlane.PredictResiduals()
	dcChannel, err := encodeSymbolPlane(dcResiduals, bw, bh)
	if err != nil {
		return nil, errors.Wrap(err, "vardct: encoding DC plane")
	}

	result := &ChannelResult{DC: dcChannel, BlocksWide: bw, BlocksHigh: bh}
	for _, pass := range []Pass{PassLowFreqAC, PassHighFreqAC} {
		total := 0
		for _, b := range acBuckets[pass] {
			total += len(b)
		}
		if total == 0 {
			continue
		}
		acResult, err := encodeACPass(acBuckets[pass][:])
		if err != nil {
			return nil, errors.Wrapf(err, "vardct: encoding AC pass %d", pass)
		}
		result.ACPasses[pass] = acResult
	}
	return result, nil
}

// encodeACPass builds one Distribution per context bucket,
// clusters near-identical ones to bound side-table size, and entropy
// codes each surviving cluster's concatenated symbol stream
// independently.
func encodeACPass(buckets [][]uint16) (*ACPassResult, error) {
	alphabet := 1
	for _, b := range buckets {
		for _, s := range b {
			if int(s)+1 > alphabet {
				alphabet = int(s) + 1
			}
		}
	}
	cs, err := entropy.NewContextSet(buckets, alphabet)
	if err != nil {
		return nil, errors.Wrap(err, "building AC context set")
	}
	cs.Cluster(clusterThreshold, clusterMaxKL)

	survivors := map[int][]uint16{}
	order := []int{}
	for ctx, cluster := range cs.ClusterMap {
		if _, ok := survivors[cluster]; !ok {
			order = append(order, cluster)
		}
		survivors[cluster] = append(survivors[cluster], buckets[ctx]...)
	}

	encs := make([]*modular.ChannelResult, 0, len(order))
	for _, cluster := range order {
		enc, err := encodeSymbols(survivors[cluster])
		if err != nil {
			return nil, err
		}
		encs = append(encs, enc)
	}
	return &ACPassResult{Contexts: cs, ClusterEnc: encs}, nil
}

func encodeSymbolPlane(residuals []int32, width, height int) (*modular.ChannelResult, error) {
	symbols := make([]uint16, len(residuals))
	for i, v := range residuals {
		z := modular.ZigZagEncode(v)
		if z > 0xFFFF {
			z = 0xFFFF
		}
		symbols[i] = uint16(z)
	}
	enc, err := encodeSymbols(symbols)
	if err != nil {
		return nil, err
	}
	enc.Width, enc.Height = width, height
	return enc, nil
}

func encodeSymbols(symbols []uint16) (*modular.ChannelResult, error) {
	alphabet := 0
	for _, s := range symbols {
		if int(s) > alphabet {
			alphabet = int(s)
		}
	}
	alphabet++
	if alphabet < 2 {
		alphabet = 2
	}
	dist, err := entropy.BuildDistribution(symbols, alphabet)
	if err != nil {
		return nil, err
	}
	enc := entropy.NewEncoder(dist)
	payload, err := enc.Encode(symbols)
	if err != nil {
		return nil, err
	}
	return &modular.ChannelResult{Distribution: dist, Payload: payload}, nil
}
