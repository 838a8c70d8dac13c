package entropy

import (
	"github.com/pkg/errors"

	"github.com/jxl-go/jxlenc/internal/bitio"
)

// initialState is the rANS encoder's starting normalised state (spec.md §4.3).
const initialState = uint32(1) << 16

// Encoder performs table-driven rANS encoding against a single
// Distribution. Symbols must be fed in the order they will be decoded;
// Encode internally walks them in reverse, as rANS requires.
type Encoder struct {
	dist *Distribution
}

// NewEncoder returns an Encoder bound to dist.
func NewEncoder(dist *Distribution) *Encoder {
	return &Encoder{dist: dist}
}

// Encode rANS-codes symbols against the bound distribution and returns the
// emitted byte stream: zero or more 16-bit renormalisation words (in
// encounter order, which is reverse-symbol order) followed by the final
// 32-bit state, byte-aligned.
//
// Empty input emits a single "empty" header bit and no body (spec.md §4.3).
func (e *Encoder) Encode(symbols []uint16) ([]byte, error) {
	w := bitio.NewWriter()
	if len(symbols) == 0 {
		if err := w.WriteBits(1, 1); err != nil {
			return nil, err
		}
		return w.Finish()
	}
	if err := w.WriteBits(0, 1); err != nil {
		return nil, err
	}

	x := initialState
	for i := len(symbols) - 1; i >= 0; i-- {
		s := int(symbols[i])
		if s >= len(e.dist.Freq) || e.dist.Freq[s] == 0 {
			return nil, errors.Wrapf(ErrAlphabetViolation, "symbol %d outside alphabet [0,%d)", s, len(e.dist.Freq))
		}
		freq := e.dist.Freq[s]
		// Renormalise: emit 16-bit words until x fits back under the
		// freq-scaled bound.
		for x >= (freq << 16) {
			if err := w.WriteBits(uint64(x&0xFFFF), 16); err != nil {
				return nil, err
			}
			x >>= 16
		}
		x = (x/freq)<<12 + (x % freq) + e.dist.Cumulative[s]
	}
	if err := w.WriteBits(uint64(x), 32); err != nil {
		return nil, err
	}
	return w.Finish()
}
