// Package headers serialises the JPEG XL size header, image metadata, and
// per-frame headers onto a bitio.Writer, per spec.md §4.4 and the bit-exact
// layout of spec.md §6.
package headers

import (
	"github.com/pkg/errors"

	"github.com/jxl-go/jxlenc/internal/bitio"
)

// FrameType identifies a frame's role within the codestream (spec.md §4.4).
type FrameType int

const (
	FrameRegular FrameType = iota
	FrameLF
	FrameReferenceOnly
	FrameSkipProgressive
)

// EncodingMode selects which pipeline produced a frame's body.
type EncodingMode int

const (
	EncodingVarDCT EncodingMode = iota
	EncodingModular
)

// SizeHeader is the first section after the codestream signature.
type SizeHeader struct {
	Width, Height uint32
}

// Emit writes the size header: a "small" flag, then either two 9-bit
// fields (when both dimensions fit) or a 2-bit selector plus U32 per
// dimension, per spec.md §4.4/§6.
func (s SizeHeader) Emit(w *bitio.Writer) error {
	small := s.Width <= 1<<14 && s.Height <= 1<<14
	if err := w.WriteBits(boolBit(small), 1); err != nil {
		return err
	}
	if small {
		if err := w.WriteBits(uint64(s.Width-1), 9); err != nil {
			return err
		}
		return w.WriteBits(uint64(s.Height-1), 9)
	}
	if err := w.WriteU32(uint64(s.Width), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	return w.WriteU32(uint64(s.Height), bitio.DefaultU32Distribution)
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ColorEncoding mirrors jxl.ColorDescriptor in wire form, kept decoupled
// from the root package so internal/headers has no dependency on it.
type ColorEncoding struct {
	Primaries      int // enum index, or -1 for explicit xy
	CustomXY       [3][2]float64
	Transfer       int // enum index, or -1 for explicit gamma
	Gamma          float64
	ColorModel     int
	WhitePointX    float64
	WhitePointY    float64
	RenderingIntent int
}

// Emit writes the color encoding section: primaries/transfer either as a
// short enum or as explicit values, per spec.md §4.4.
func (c ColorEncoding) Emit(w *bitio.Writer) error {
	if err := w.WriteBits(boolBit(c.Primaries < 0), 1); err != nil {
		return err
	}
	if c.Primaries < 0 {
		for _, xy := range c.CustomXY {
			if err := writeFixedPoint(w, xy[0]); err != nil {
				return err
			}
			if err := writeFixedPoint(w, xy[1]); err != nil {
				return err
			}
		}
	} else {
		if err := w.WriteBits(uint64(c.Primaries), 4); err != nil {
			return err
		}
	}
	if err := w.WriteBits(boolBit(c.Transfer < 0), 1); err != nil {
		return err
	}
	if c.Transfer < 0 {
		if err := writeFixedPoint(w, c.Gamma); err != nil {
			return err
		}
	} else {
		if err := w.WriteBits(uint64(c.Transfer), 4); err != nil {
			return err
		}
	}
	if err := w.WriteBits(uint64(c.ColorModel), 2); err != nil {
		return err
	}
	if err := writeFixedPoint(w, c.WhitePointX); err != nil {
		return err
	}
	if err := writeFixedPoint(w, c.WhitePointY); err != nil {
		return err
	}
	return w.WriteBits(uint64(c.RenderingIntent), 3)
}

// writeFixedPoint writes a chromaticity/gamma value as a 24-bit,
// 1e-6-scaled fixed-point field, wide enough for JPEG XL's typical
// 0..~12.5 gamma/xy ranges.
func writeFixedPoint(w *bitio.Writer, v float64) error {
	fixed := int64(v * 1_000_000)
	if fixed < 0 {
		fixed = 0
	}
	return w.WriteBits(uint64(fixed), 24)
}

// BitDepth describes per-sample storage precision.
type BitDepth struct {
	BitsPerSample int
	ExpBits       int // non-zero for floating point
}

func (b BitDepth) Emit(w *bitio.Writer) error {
	extended := b.BitsPerSample != 8 || b.ExpBits != 0
	if err := w.WriteBits(boolBit(extended), 1); err != nil {
		return err
	}
	if !extended {
		return nil
	}
	if err := w.WriteU32(uint64(b.BitsPerSample), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	return w.WriteU32(uint64(b.ExpBits), bitio.DefaultU32Distribution)
}

// ExtraChannelInfo is the wire form of one extra channel descriptor.
type ExtraChannelInfo struct {
	Type          int
	BitsPerSample int
	DimShift      int
	Name          string
}

func (e ExtraChannelInfo) Emit(w *bitio.Writer) error {
	if err := w.WriteU32(uint64(e.Type), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	if err := w.WriteU32(uint64(e.BitsPerSample), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	if err := w.WriteU32(uint64(e.DimShift), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	nameBytes := []byte(e.Name)
	if err := w.WriteVarint(uint64(len(nameBytes))); err != nil {
		return err
	}
	if err := w.AlignToByte(); err != nil {
		return err
	}
	return w.WriteBytes(nameBytes)
}

// AnimationHeader declares timing for multi-frame codestreams.
type AnimationHeader struct {
	TPSNumerator   uint32
	TPSDenominator uint32
	LoopCount      uint32
	HaveTimecodes  bool
}

func (a AnimationHeader) Emit(w *bitio.Writer) error {
	if err := w.WriteU32(uint64(a.TPSNumerator), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	if err := w.WriteU32(uint64(a.TPSDenominator), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	if err := w.WriteU32(uint64(a.LoopCount), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	return w.WriteBits(boolBit(a.HaveTimecodes), 1)
}

// ImageMetadata is the full image-header payload emitted once per
// codestream, after the size header (spec.md §4.4, §6).
type ImageMetadata struct {
	BitDepth      BitDepth
	Orientation   int // 1..8
	HasPreview    bool
	Animation     *AnimationHeader
	ExtraChannels []ExtraChannelInfo
	AlphaPremultiplied bool
	Color         ColorEncoding
}

// Emit writes the image metadata in the exact order spec.md §6 specifies:
// bit depth, orientation, preview/animation flags (with animation fields
// if present), extra channel count and descriptors, alpha flag, then
// color encoding.
func (m ImageMetadata) Emit(w *bitio.Writer) error {
	if err := m.BitDepth.Emit(w); err != nil {
		return errors.Wrap(err, "bit depth")
	}
	if m.Orientation < 1 || m.Orientation > 8 {
		return errors.New("headers: orientation out of range")
	}
	if err := w.WriteBits(uint64(m.Orientation), 3); err != nil {
		return err
	}
	if err := w.WriteBits(boolBit(m.HasPreview), 1); err != nil {
		return err
	}
	if err := w.WriteBits(boolBit(m.Animation != nil), 1); err != nil {
		return err
	}
	if m.Animation != nil {
		if err := m.Animation.Emit(w); err != nil {
			return errors.Wrap(err, "animation header")
		}
	}
	if err := w.WriteU32(uint64(len(m.ExtraChannels)), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	for i, ec := range m.ExtraChannels {
		if err := ec.Emit(w); err != nil {
			return errors.Wrapf(err, "extra channel %d", i)
		}
	}
	if err := w.WriteBits(boolBit(m.AlphaPremultiplied), 1); err != nil {
		return err
	}
	if err := m.Color.Emit(w); err != nil {
		return errors.Wrap(err, "color encoding")
	}
	return w.AlignToByte()
}

// SaveAsReferenceNone is the FrameHeader.SaveAsReference sentinel meaning
// "do not save", per spec.md §4.4.
const SaveAsReferenceNone = 0

// CropRegion describes an optional frame crop.
type CropRegion struct {
	X, Y, W, H uint32
}

// FrameHeader is emitted once per encoded frame (spec.md §4.4, §6).
type FrameHeader struct {
	Type           FrameType
	Mode           EncodingMode
	HasNoise       bool
	HasPatches     bool
	HasSplines     bool
	UseLFFrame     bool
	SkipAdaptiveLFSmoothing bool

	Duration    uint32 // ticks; used only for animated codestreams
	IsLast      bool
	SaveAsReference int // 0..4

	Crop *CropRegion

	NumPasses int // 1 (non-progressive) or 3 (progressive)
}

// Emit writes the frame header: 2-bit frame type, 1-bit encoding mode,
// six flag bits (noise, patches, splines, LF frame, skip adaptive LF
// smoothing, is-last), the duration as a U32, the 3-bit
// save-as-reference slot (always written, 0 meaning none), a crop flag
// followed by the crop rect when present, then the pass count in 2 bits.
// Byte-aligned at exit.
func (h FrameHeader) Emit(w *bitio.Writer) error {
	if err := w.WriteBits(uint64(h.Type), 2); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(h.Mode), 1); err != nil {
		return err
	}
	flags := []bool{h.HasNoise, h.HasPatches, h.HasSplines, h.UseLFFrame, h.SkipAdaptiveLFSmoothing, h.IsLast}
	for _, f := range flags {
		if err := w.WriteBits(boolBit(f), 1); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint64(h.Duration), bitio.DefaultU32Distribution); err != nil {
		return err
	}
	if h.SaveAsReference < 0 || h.SaveAsReference > 4 {
		return errors.New("headers: save-as-reference slot out of range")
	}
	if err := w.WriteBits(uint64(h.SaveAsReference), 3); err != nil {
		return err
	}
	if err := w.WriteBits(boolBit(h.Crop != nil), 1); err != nil {
		return err
	}
	if h.Crop != nil {
		for _, v := range []uint32{h.Crop.X, h.Crop.Y, h.Crop.W, h.Crop.H} {
			if err := w.WriteU32(uint64(v), bitio.DefaultU32Distribution); err != nil {
				return err
			}
		}
	}
	if h.NumPasses != 1 && h.NumPasses != 3 {
		return errors.New("headers: frame must have 1 or 3 passes")
	}
	if err := w.WriteBits(uint64(h.NumPasses), 2); err != nil {
		return err
	}
	return w.AlignToByte()
}

// GroupTerminator marks the end of a coded group; always byte-aligned.
func EmitGroupTerminator(w *bitio.Writer) error {
	if err := w.WriteBits(0x1FF, 9); err != nil { // distinguishable marker pattern
		return err
	}
	return w.AlignToByte()
}
