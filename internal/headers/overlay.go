package headers

import (
	"math"

	"github.com/jxl-go/jxlenc/internal/bitio"
)

// NoiseParams is the per-frame Gaussian noise overlay parameter set
// (spec.md §4.6 step 9: "emit per-frame Gaussian noise parameters
// (amplitude, luma/chroma strength, seed)"). Pixel-level grain synthesis
// from these parameters is out of scope; only the subsection container
// and its values are emitted.
type NoiseParams struct {
	Amplitude      float64
	LumaStrength   float64
	ChromaStrength float64
	Seed           uint64
}

// Emit writes n as four fixed-width fields, byte-aligned on entry and
// exit.
func (n NoiseParams) Emit(w *bitio.Writer) error {
	for _, v := range []float64{n.Amplitude, n.LumaStrength, n.ChromaStrength} {
		if err := w.WriteBits(math.Float64bits(v), 64); err != nil {
			return err
		}
	}
	return w.WriteBits(n.Seed, 64)
}

// SplineParams is the spline overlay's parameter container. Per the
// redesign notes, curve detection/fitting is framework-only at this
// spec level: only the quantisation adjustment and declared spline
// count are serialised, never the curves themselves.
type SplineParams struct {
	QuantisationAdjustment int // -128..127
	Count                  int
}

// Emit writes s, byte-aligned on entry and exit.
func (s SplineParams) Emit(w *bitio.Writer) error {
	if err := w.WriteBits(uint64(uint8(int8(s.QuantisationAdjustment))), 8); err != nil {
		return err
	}
	return w.WriteVarint(uint64(s.Count))
}

// Patch is one detected repeated-region match (spec.md §4.6 step 9,
// "Patch" in the glossary): a Size x Size square copied from
// (RefX, RefY) in the referenced slot to (X, Y) in the current frame.
type Patch struct {
	X, Y, RefX, RefY, Size int
	RefSlot                int
}

// EmitPatches writes the patch list's count followed by each patch's
// fields as varints, byte-aligned on entry and exit.
func EmitPatches(w *bitio.Writer, patches []Patch) error {
	if err := w.WriteVarint(uint64(len(patches))); err != nil {
		return err
	}
	for _, p := range patches {
		fields := []int{p.X, p.Y, p.RefX, p.RefY, p.Size, p.RefSlot}
		for _, f := range fields {
			if err := w.WriteVarint(uint64(f)); err != nil {
				return err
			}
		}
	}
	return nil
}
