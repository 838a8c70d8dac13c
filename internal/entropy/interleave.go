package entropy

import "github.com/pkg/errors"

// MaxChannels is the largest number of parallel rANS channels the encoder
// may interleave for decoder parallelism (spec.md §4.3).
const MaxChannels = 4

// InterleavedEncoder splits a symbol stream across up to MaxChannels
// independent rANS states, round-robin, so a decoder can run the channels
// in parallel.
type InterleavedEncoder struct {
	dist     *Distribution
	channels int
}

// NewInterleavedEncoder returns an encoder that splits its input across
// numChannels round-robin rANS states (1..MaxChannels).
func NewInterleavedEncoder(dist *Distribution, numChannels int) (*InterleavedEncoder, error) {
	if numChannels < 1 || numChannels > MaxChannels {
		return nil, errors.Errorf("entropy: invalid channel count %d", numChannels)
	}
	return &InterleavedEncoder{dist: dist, channels: numChannels}, nil
}

// Encode assigns symbols to channels round-robin (symbol i goes to channel
// i % channels), rANS-codes each channel independently, and concatenates
// the per-channel streams in channel order, each prefixed with its byte
// length as a varint so a decoder can locate channel boundaries.
func (ie *InterleavedEncoder) Encode(symbols []uint16) ([]byte, error) {
	perChannel := make([][]uint16, ie.channels)
	for i, s := range symbols {
		c := i % ie.channels
		perChannel[c] = append(perChannel[c], s)
	}

	var out []byte
	for _, ch := range perChannel {
		enc := NewEncoder(ie.dist)
		body, err := enc.Encode(ch)
		if err != nil {
			return nil, err
		}
		out = append(out, varintBytes(uint64(len(body)))...)
		out = append(out, body...)
	}
	return out, nil
}

func varintBytes(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}
