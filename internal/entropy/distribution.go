// Package entropy implements the rANS entropy coder shared by the Modular
// and VarDCT encoders: multi-context histogram analysis, distribution
// emission on the bitstream, and the interleaved rANS byte stream itself.
package entropy

import (
	"github.com/pkg/errors"

	"github.com/jxl-go/jxlenc/internal/bitio"
)

// TotalFreq is the rANS normalisation precision (2^12), per spec.md §4.3.
const TotalFreq = 1 << 12

// MaxAlphabetSize is the largest symbol alphabet a single Distribution may
// describe (2^16), per spec.md §4.3.
const MaxAlphabetSize = 1 << 16

// MaxContexts is the most contexts a single stream may declare, per
// spec.md §4.3.
const MaxContexts = 256

// Distribution holds a symbol alphabet's normalised frequency table and
// its prefix-sum cumulative table, ready for rANS encoding.
type Distribution struct {
	Freq       []uint32 // per-symbol frequency, sums to TotalFreq
	Cumulative []uint32 // Cumulative[s] = sum(Freq[0:s]); length len(Freq)+1
	Uniform    bool     // set only when built from an empty symbol stream (Freq is then empty)
}

// BuildDistribution computes a normalised Distribution for symbols drawn
// from alphabet {0, ..., alphabetSize-1}.
//
// Frequencies are normalised to TotalFreq; any symbol with non-zero raw
// count is guaranteed at least frequency 1 after normalisation, with the
// rounding difference absorbed by the largest bucket: a deficit is added
// to it, a surplus subtracted from it (spec.md §4.3).
func BuildDistribution(symbols []uint16, alphabetSize int) (*Distribution, error) {
	if alphabetSize <= 0 || alphabetSize > MaxAlphabetSize {
		return nil, errors.Errorf("entropy: invalid alphabet size %d", alphabetSize)
	}
	raw := make([]uint64, alphabetSize)
	for _, s := range symbols {
		if int(s) >= alphabetSize {
			return nil, errors.Wrapf(ErrAlphabetViolation, "symbol %d outside alphabet [0,%d)", s, alphabetSize)
		}
		raw[s]++
	}
	if len(symbols) == 0 {
		return &Distribution{Uniform: true}, nil
	}

	total := uint64(len(symbols))
	freq := make([]uint32, alphabetSize)
	var sum uint32
	largest := 0
	for i, c := range raw {
		if c == 0 {
			continue
		}
		f := c * TotalFreq / total
		if f == 0 {
			f = 1
		}
		freq[i] = uint32(f)
		sum += freq[i]
		if freq[i] > freq[largest] {
			largest = i
		}
	}

	// Redistribute the rounding deficit/surplus into the largest bucket,
	// never letting a non-zero bucket fall to zero.
	for sum != TotalFreq {
		if sum < TotalFreq {
			delta := TotalFreq - sum
			freq[largest] += delta
			sum = TotalFreq
		} else {
			delta := sum - TotalFreq
			if delta >= freq[largest] {
				delta = freq[largest] - 1
			}
			freq[largest] -= delta
			sum -= delta
			if delta == 0 {
				break // can't shrink further without zeroing a used symbol
			}
		}
	}

	cumulative := make([]uint32, alphabetSize+1)
	for i, f := range freq {
		cumulative[i+1] = cumulative[i] + f
	}

	return &Distribution{Freq: freq, Cumulative: cumulative}, nil
}

// SymbolOf returns the symbol whose [Cumulative[s], Cumulative[s+1]) range
// contains slot, the inverse lookup rANS decode needs.
func (d *Distribution) SymbolOf(slot uint32) int {
	lo, hi := 0, len(d.Freq)
	for lo < hi {
		mid := (lo + hi) / 2
		if d.Cumulative[mid+1] <= slot {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Emit writes the distribution to the bitstream: a uniform flag, then
// either just the alphabet size or a shifted-integer-plus-residue
// frequency table with zero-run compression for adjacent empty buckets
// (spec.md §4.3).
func (d *Distribution) Emit(w *bitio.Writer) error {
	if d.Uniform || len(d.Freq) == 0 {
		if err := w.WriteBits(1, 1); err != nil {
			return err
		}
		return w.WriteVarint(uint64(len(d.Freq)))
	}
	if err := w.WriteBits(0, 1); err != nil {
		return err
	}
	if err := w.WriteVarint(uint64(len(d.Freq))); err != nil {
		return err
	}
	i := 0
	for i < len(d.Freq) {
		if d.Freq[i] == 0 {
			run := 0
			for i+run < len(d.Freq) && d.Freq[i+run] == 0 {
				run++
			}
			// Zero-run marker: selector 0 followed by run length.
			if err := w.WriteBits(0, 1); err != nil {
				return err
			}
			if err := w.WriteVarint(uint64(run)); err != nil {
				return err
			}
			i += run
			continue
		}
		if err := w.WriteBits(1, 1); err != nil {
			return err
		}
		// Shifted integer plus residue: a 4-bit bit-length prefix, then
		// the frequency's bits below its leading one.
		if err := emitShiftedFreq(w, d.Freq[i]); err != nil {
			return err
		}
		i++
	}
	return nil
}

// emitShiftedFreq writes a TotalFreq-bounded frequency as a bit-length
// prefix (the position of its highest set bit) followed by the remaining
// bits, avoiding a fixed 12-bit field for small, common frequencies.
func emitShiftedFreq(w *bitio.Writer, f uint32) error {
	bitLen := uint(0)
	for v := f; v > 0; v >>= 1 {
		bitLen++
	}
	if err := w.WriteBits(uint64(bitLen), 4); err != nil {
		return err
	}
	if bitLen <= 1 {
		return nil
	}
	residue := f & ((1 << (bitLen - 1)) - 1)
	return w.WriteBits(uint64(residue), bitLen-1)
}

// ReadDistribution is the mirror of Emit, used only by the encoder's own
// bitstream verification (spec.md §4.1: the reader is not on the critical
// encode path).
func ReadDistribution(r *bitio.Reader) (*Distribution, error) {
	uniform, err := r.ReadBits(1)
	if err != nil {
		return nil, err
	}
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if uniform == 1 {
		return &Distribution{Uniform: true, Freq: make([]uint32, n)}, nil
	}
	freq := make([]uint32, n)
	for i := 0; i < int(n); {
		flag, err := r.ReadBits(1)
		if err != nil {
			return nil, err
		}
		if flag == 0 {
			run, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			i += int(run)
			continue
		}
		bitLen, err := r.ReadBits(4)
		if err != nil {
			return nil, err
		}
		var f uint64 = 1 << (bitLen - 1)
		if bitLen > 1 {
			residue, err := r.ReadBits(uint(bitLen - 1))
			if err != nil {
				return nil, err
			}
			f |= residue
		}
		if bitLen == 0 {
			f = 0
		}
		freq[i] = uint32(f)
		i++
	}
	cumulative := make([]uint32, n+1)
	for i, f := range freq {
		cumulative[i+1] = cumulative[i] + f
	}
	return &Distribution{Freq: freq, Cumulative: cumulative}, nil
}
