package jxl

// Mode selects between bit-exact lossless (Modular) and perceptually
// driven lossy (VarDCT) compression.
type Mode struct {
	lossless bool
	quality  int // 0..100, meaningful only when !lossless
}

// Lossless selects Modular-mode, bit-exact compression.
func Lossless() Mode { return Mode{lossless: true} }

// Lossy selects VarDCT-mode compression at the given quality (0..100).
func Lossy(quality int) Mode { return Mode{lossless: false, quality: quality} }

// IsLossless reports whether m selects the lossless pipeline.
func (m Mode) IsLossless() bool { return m.lossless }

// Quality returns the lossy quality setting (0..100); meaningless when
// IsLossless is true.
func (m Mode) Quality() int { return m.quality }

// AnimationOptions configures multi-frame encoding.
type AnimationOptions struct {
	FPS             float64
	TPSDenominator  uint32
	LoopCount       uint32 // 0 = infinite
	FrameDurations  []uint32
	UniformDuration uint32 // used when FrameDurations is empty
}

// ROIOptions biases quantisation toward a region of interest.
type ROIOptions struct {
	X, Y, W, H    int
	QualityBoost  int // 0..50
	FeatherWidth  int // pixels
}

// ReferenceFrameOptions configures multi-reference-frame encoding.
type ReferenceFrameOptions struct {
	KeyframeInterval   int
	MaxDeltaFrames     int
	MaxReferenceFrames int // 1..4
}

// PatchOptions configures repeated-region patch detection.
type PatchOptions struct {
	MinPatchSize, MaxPatchSize int
	SimilarityThreshold        float64 // 0..1
	MaxPatchesPerFrame         int
	SearchRadius               int
}

// NoiseOptions configures synthetic film-grain noise overlay.
type NoiseOptions struct {
	Amplitude    float64 // 0..1
	LumaStrength float64
	ChromaStrength float64
	Seed         uint64 // 0 uses wall-clock time (non-deterministic, per spec.md §5)
}

// SplineOptions configures spline overlay emission.
type SplineOptions struct {
	QuantisationAdjustment int // -128..127
	EdgeThreshold          float64
	MaxSplinesPerFrame     int
}

// ResponsiveOptions configures multi-layer quality encoding.
type ResponsiveOptions struct {
	Enabled    bool
	LayerCount int // 2..8
}

// EncodingOptions configures a single encode call.
type EncodingOptions struct {
	Mode   Mode
	Effort int // 1..9 (lightning..tortoise)

	Progressive bool
	Responsive  ResponsiveOptions

	Animation *AnimationOptions

	UseXYB bool
	UseANS bool

	ROI *ROIOptions

	ReferenceFrames *ReferenceFrameOptions
	Patches         *PatchOptions
	Noise           *NoiseOptions
	Splines         *SplineOptions

	// Container selects ISOBMFF box wrapping; when false the raw
	// signature + codestream is emitted (spec.md §4.7).
	Container bool

	// LogPath, if set, directs orchestrator diagnostics to a rotating
	// log file (see logging.go). Diagnostics are discarded otherwise.
	LogPath string
}

// DefaultEncodingOptions returns reasonable defaults: lossy quality 90,
// effort 7, container-wrapped output, full rANS entropy coding.
func DefaultEncodingOptions() EncodingOptions {
	return EncodingOptions{
		Mode:      Lossy(90),
		Effort:    7,
		UseANS:    true,
		Container: true,
	}
}

// qualityToDistance maps a 0..100 quality value to a VarDCT perceptual
// distance via the piecewise-linear anchors of spec.md §3.
func qualityToDistance(quality int) float64 {
	type anchor struct {
		quality  float64
		distance float64
	}
	anchors := []anchor{
		{0, 25.0},
		{50, 5.0},
		{75, 2.5},
		{90, 1.0},
		{100, 0.0},
	}
	q := float64(quality)
	if q <= anchors[0].quality {
		return anchors[0].distance
	}
	for i := 1; i < len(anchors); i++ {
		if q <= anchors[i].quality {
			lo, hi := anchors[i-1], anchors[i]
			t := (q - lo.quality) / (hi.quality - lo.quality)
			return lo.distance + t*(hi.distance-lo.distance)
		}
	}
	return anchors[len(anchors)-1].distance
}

// validate checks option consistency, returning InvalidOptionsError
// sub-kinds per spec.md §7. It also clamps the ROI quality boost per
// spec.md §7's explicit clamping allowance.
func (o *EncodingOptions) validate(frames []*ImageFrame) error {
	if len(frames) == 0 {
		return invalidOptions("empty-frame-list")
	}
	if !o.Mode.IsLossless() {
		if o.Mode.Quality() < 0 || o.Mode.Quality() > 100 {
			return invalidOptions("quality-out-of-range")
		}
	}
	if o.Effort < 1 || o.Effort > 9 {
		return invalidOptions("effort-out-of-range")
	}
	w, h := frames[0].Width, frames[0].Height
	for _, f := range frames[1:] {
		if f.Width != w || f.Height != h {
			return invalidOptions("inconsistent-animation-dimensions")
		}
	}
	if len(frames) > 1 && o.Animation == nil {
		return invalidOptions("multi-frame-without-animation")
	}
	if o.Animation != nil {
		if o.Animation.FPS <= 0 {
			return invalidOptions("invalid-animation-fps")
		}
		if o.Animation.TPSDenominator < 1 {
			return invalidOptions("invalid-animation-tps-denominator")
		}
	}
	if o.Responsive.Enabled {
		if o.Responsive.LayerCount < 2 || o.Responsive.LayerCount > 8 {
			return invalidOptions("layer-count-out-of-range")
		}
	}
	if o.ReferenceFrames != nil {
		if o.ReferenceFrames.MaxReferenceFrames < 1 || o.ReferenceFrames.MaxReferenceFrames > 4 {
			return invalidOptions("max-reference-frames-out-of-range")
		}
	}
	if o.ROI != nil {
		if o.ROI.X < 0 || o.ROI.Y < 0 || o.ROI.X+o.ROI.W > w || o.ROI.Y+o.ROI.H > h {
			return invalidOptions("roi-outside-image")
		}
		if o.ROI.QualityBoost > 50 {
			o.ROI.QualityBoost = 50 // explicit clamp, spec.md §7
		}
		if o.ROI.QualityBoost < 0 {
			o.ROI.QualityBoost = 0
		}
	}
	if o.Patches != nil {
		if o.Patches.SimilarityThreshold < 0 || o.Patches.SimilarityThreshold > 1 {
			return invalidOptions("similarity-threshold-out-of-range")
		}
	}
	if o.Noise != nil {
		if o.Noise.Amplitude < 0 || o.Noise.Amplitude > 1 {
			return invalidOptions("noise-amplitude-out-of-range")
		}
	}
	if o.Splines != nil {
		if o.Splines.QuantisationAdjustment < -128 || o.Splines.QuantisationAdjustment > 127 {
			return invalidOptions("spline-quantisation-adjustment-out-of-range")
		}
		if o.Splines.MaxSplinesPerFrame < 0 {
			return invalidOptions("negative-max-splines-per-frame")
		}
	}
	return nil
}

func validateFrame(f *ImageFrame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return invalidFrame("zero-dimension")
	}
	if f.Width > 1<<30 || f.Height > 1<<30 {
		return invalidFrame("dimension-overflow")
	}
	if f.NumChannels <= 0 || f.NumChannels > 4 {
		return invalidFrame("unsupported-channel-count")
	}
	if f.BitsPerSample < 1 || f.BitsPerSample > 32 {
		return invalidFrame("unsupported-bit-depth")
	}
	for _, p := range f.Planes {
		if len(p) != f.Width*f.Height {
			return invalidFrame("plane-size-mismatch")
		}
	}
	return nil
}
