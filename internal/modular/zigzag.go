package modular

// ZigZagEncode maps a signed residual to an unsigned symbol so the
// entropy coder's alphabet can start at zero: 0, -1, 1, -2, 2, ...
// (spec.md §4.5 step 7).
func ZigZagEncode(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// ZigZagDecode inverts ZigZagEncode.
func ZigZagDecode(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// ZigZagPlane maps every sample of a residual plane to its unsigned
// zigzag symbol, ready for entropy.BuildDistribution.
func ZigZagPlane(p *Plane) []uint16 {
	out := make([]uint16, len(p.Data))
	for i, v := range p.Data {
		z := ZigZagEncode(v)
		if z > 0xFFFF {
			z = 0xFFFF // clamped; callers needing wider residuals split channels first
		}
		out[i] = uint16(z)
	}
	return out
}
