// Package jxl implements the encoder core of a JPEG XL codec (ISO/IEC
// 18181-1): the subsystem that transforms a planar pixel image into a
// standards-conformant JPEG XL codestream.
//
// Two pipelines are supported: Modular mode (bit-exact lossless
// compression) and VarDCT mode (perceptually driven lossy compression).
// Both share a bitstream writer, an rANS entropy coder, and the
// codestream/frame header serializers, and may be wrapped in an
// ISOBMFF-style container.
//
// Basic usage:
//
//	frame := jxl.NewImageFrame(width, height, 3)
//	// ... populate frame via Set/SetFloat ...
//	out, err := jxl.Encode([]*jxl.ImageFrame{frame}, jxl.EncodingOptions{Mode: jxl.Lossless(), Effort: 7})
//	if err != nil {
//	    log.Fatal(err)
//	}
package jxl

import "math"

// SampleType identifies the storage representation of a channel's samples.
type SampleType int

const (
	SampleU8 SampleType = iota
	SampleU16
	SampleI16
	SampleF32
)

// ColorModel identifies the image's main color interpretation.
type ColorModel int

const (
	ColorRGB ColorModel = iota
	ColorGray
	ColorXYB
)

// Primaries identifies the color primaries of an image.
type Primaries int

const (
	PrimariesSRGB Primaries = iota
	PrimariesP3
	PrimariesRec2020
	PrimariesCustom
)

// Transfer identifies the transfer function (EOTF/OETF) of an image.
type Transfer int

const (
	TransferSRGB Transfer = iota
	TransferLinear
	TransferPQ
	TransferHLG
	TransferGamma
)

// AlphaMode identifies how an alpha channel's values relate to color.
type AlphaMode int

const (
	AlphaNone AlphaMode = iota
	AlphaStraight
	AlphaPremultiplied
)

// ExtraChannelType identifies the semantic meaning of an extra channel.
type ExtraChannelType int

const (
	ExtraAlpha ExtraChannelType = iota
	ExtraDepth
	ExtraSpotColor
	ExtraSelectionMask
	ExtraBlack
	ExtraCFA
	ExtraThermal
	ExtraOptional
)

// ColorDescriptor describes an image's color interpretation.
type ColorDescriptor struct {
	Primaries   Primaries
	CustomX, CustomY [3]float64 // used when Primaries == PrimariesCustom (r,g,b chromaticities)
	Transfer    Transfer
	Gamma       float64 // used when Transfer == TransferGamma
	ColorModel  ColorModel
	WhitePointX, WhitePointY float64
	RenderingIntent int
}

// DefaultColorDescriptor returns the sRGB/RGB descriptor.
func DefaultColorDescriptor() ColorDescriptor {
	return ColorDescriptor{
		Primaries:  PrimariesSRGB,
		Transfer:   TransferSRGB,
		ColorModel: ColorRGB,
	}
}

// ExtraChannel describes one extra plane stored parallel to the main image.
type ExtraChannel struct {
	Type            ExtraChannelType
	BitsPerSample   int
	SubsampleShiftX int
	SubsampleShiftY int
	Name            string
	SpotColor       [4]float32 // used when Type == ExtraSpotColor
	Samples         []int32    // row-major, W>>ShiftX by H>>ShiftY
}

// ImageFrame is the encoder's input entity: a planar, channel-major image
// with an associated color descriptor and optional extra channels.
//
// ImageFrame is owned by its caller; the encoder borrows it read-only.
type ImageFrame struct {
	Width, Height int
	NumChannels   int // 1..4 for main channels
	SampleType    SampleType
	BitsPerSample int

	Color ColorDescriptor
	Alpha AlphaMode

	Orientation int // 1..8, EXIF convention

	// Main plane storage, channel-major: Planes[c][y*Width+x].
	Planes [][]int32

	Extra []ExtraChannel
}

// NewImageFrame allocates a frame with the given dimensions and channel
// count, defaulting to 8-bit unsigned samples and sRGB/RGB color.
func NewImageFrame(width, height, numChannels int) *ImageFrame {
	f := &ImageFrame{
		Width:         width,
		Height:        height,
		NumChannels:   numChannels,
		SampleType:    SampleU8,
		BitsPerSample: 8,
		Color:         DefaultColorDescriptor(),
		Orientation:   1,
		Planes:        make([][]int32, numChannels),
	}
	for c := range f.Planes {
		f.Planes[c] = make([]int32, width*height)
	}
	if numChannels >= 4 {
		f.Alpha = AlphaStraight
	}
	f.normalizeOrientation()
	return f
}

// normalizeOrientation clamps Orientation into the valid EXIF range 1..8,
// per spec.md scenario 6 (orientation clamping).
func (f *ImageFrame) normalizeOrientation() {
	if f.Orientation < 1 {
		f.Orientation = 1
	}
	if f.Orientation > 8 {
		f.Orientation = 8
	}
}

// ErrBounds is returned by accessors when (x, y) is outside the frame.
var ErrBounds = newSentinel("jxl: coordinate out of bounds")

func (f *ImageFrame) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// Get returns the sample at (x, y, channel) as a u16, saturated to the
// range of the declared bits-per-sample (values are not rescaled).
func (f *ImageFrame) Get(x, y, channel int) (uint16, error) {
	if !f.inBounds(x, y) {
		return 0, ErrBounds
	}
	v := f.Planes[channel][y*f.Width+x]
	max := int32(1)<<uint(f.BitsPerSample) - 1
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return uint16(v), nil
}

// GetSigned returns the sample at (x, y, channel) as a signed i16 (used
// for signed integer channels such as CT Hounsfield units).
func (f *ImageFrame) GetSigned(x, y, channel int) (int16, error) {
	if !f.inBounds(x, y) {
		return 0, ErrBounds
	}
	return int16(f.Planes[channel][y*f.Width+x]), nil
}

// GetFloat returns the sample at (x, y, channel) reinterpreted as a
// float32 bit pattern, for SampleF32 channels.
func (f *ImageFrame) GetFloat(x, y, channel int) (float32, error) {
	if !f.inBounds(x, y) {
		return 0, ErrBounds
	}
	bits := uint32(f.Planes[channel][y*f.Width+x])
	return math.Float32frombits(bits), nil
}

// Set stores a u16 sample at (x, y, channel).
func (f *ImageFrame) Set(x, y, channel int, v uint16) error {
	if !f.inBounds(x, y) {
		return ErrBounds
	}
	f.Planes[channel][y*f.Width+x] = int32(v)
	return nil
}

// SetSigned stores a signed i16 sample at (x, y, channel).
func (f *ImageFrame) SetSigned(x, y, channel int, v int16) error {
	if !f.inBounds(x, y) {
		return ErrBounds
	}
	f.Planes[channel][y*f.Width+x] = int32(v)
	return nil
}

// SetFloat stores a float32 sample at (x, y, channel).
func (f *ImageFrame) SetFloat(x, y, channel int, v float32) error {
	if !f.inBounds(x, y) {
		return ErrBounds
	}
	f.Planes[channel][y*f.Width+x] = int32(math.Float32bits(v))
	return nil
}
