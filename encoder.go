// Orchestrator (spec.md §4.8, component C8): validates options and
// frames, routes each frame to the Modular or VarDCT pipeline, frames
// the result with size/image/frame headers, and optionally wraps the
// codestream in an ISOBMFF container.
package jxl

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jxl-go/jxlenc/internal/bitio"
	"github.com/jxl-go/jxlenc/internal/colortransform"
	"github.com/jxl-go/jxlenc/internal/container"
	"github.com/jxl-go/jxlenc/internal/headers"
	"github.com/jxl-go/jxlenc/internal/modular"
	"github.com/jxl-go/jxlenc/internal/patches"
	"github.com/jxl-go/jxlenc/internal/vardct"
)

// FrameStats reports per-frame encoding diagnostics.
type FrameStats struct {
	Width, Height int
	Mode          string // "modular" or "vardct"
	EncodedBytes  int
}

// EncodedImage is the result of a successful Encode call.
type EncodedImage struct {
	Bytes []byte
	Stats []FrameStats
}

// Encode compiles one or more ImageFrames into a JPEG XL codestream
// (optionally wrapped in an ISOBMFF container), per opts. Multiple
// frames are treated as an animation; opts.Animation must be set when
// len(frames) > 1.
func Encode(frames []*ImageFrame, opts EncodingOptions) (*EncodedImage, error) {
	if err := opts.validate(frames); err != nil {
		return nil, err
	}
	for i, f := range frames {
		if err := validateFrame(f); err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
	}

	logger := newDiagnosticLogger(opts.LogPath)

	results := make([]*frameEncodeResult, len(frames))
	stats := make([]FrameStats, len(frames))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxParallelFrames(opts.Effort))
	for i, f := range frames {
		i, f := i, f
		var ref *ImageFrame
		refIdx := previousKeyframeIndex(i, opts.ReferenceFrames)
		if refIdx >= 0 {
			ref = frames[refIdx]
		}
		refSlot := referenceSlot(refIdx, opts.ReferenceFrames)
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			result, err := encodeFrameBody(f, opts, ref, refSlot)
			if err != nil {
				return errors.Wrapf(err, "frame %d", i)
			}
			results[i] = result
			stats[i] = FrameStats{Width: f.Width, Height: f.Height, Mode: result.Mode, EncodedBytes: len(result.Body)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Printf("encoded %d frame(s)", len(frames))

	codestream, err := assembleCodestream(frames, opts, results)
	if err != nil {
		return nil, err
	}

	if !opts.Container {
		return &EncodedImage{Bytes: codestream, Stats: stats}, nil
	}

	w := container.NewWriter()
	if err := w.WriteBox(container.FileType()); err != nil {
		return nil, errors.Wrap(err, "writing ftyp box")
	}
	if err := w.WriteBox(container.Codestream(codestream)); err != nil {
		return nil, errors.Wrap(err, "writing codestream box")
	}
	return &EncodedImage{Bytes: w.Bytes(), Stats: stats}, nil
}

func maxParallelFrames(effort int) int {
	if effort <= 0 {
		return 1
	}
	if effort > 8 {
		return 8
	}
	return effort
}

// assembleCodestream writes the size header, image metadata, and each
// frame's header + body onto a single bitio.Writer (spec.md §4.4/§6).
func assembleCodestream(frames []*ImageFrame, opts EncodingOptions, results []*frameEncodeResult) ([]byte, error) {
	w := bitio.NewWriter()
	first := frames[0]

	if err := w.WriteSignature(); err != nil {
		return nil, errors.Wrap(err, "writing codestream signature")
	}

	size := headers.SizeHeader{Width: uint32(first.Width), Height: uint32(first.Height)}
	if err := size.Emit(w); err != nil {
		return nil, errors.Wrap(err, "emitting size header")
	}

	meta := headers.ImageMetadata{
		BitDepth:           headers.BitDepth{BitsPerSample: first.BitsPerSample},
		Orientation:        first.Orientation,
		AlphaPremultiplied: first.Alpha == AlphaPremultiplied,
		Color:              colorEncodingOf(first.Color),
	}
	if opts.Animation != nil {
		meta.Animation = &headers.AnimationHeader{
			TPSNumerator:   uint32(math.Round(opts.Animation.FPS * float64(opts.Animation.TPSDenominator))),
			TPSDenominator: opts.Animation.TPSDenominator,
			LoopCount:      opts.Animation.LoopCount,
		}
	}
	for _, ec := range first.Extra {
		meta.ExtraChannels = append(meta.ExtraChannels, headers.ExtraChannelInfo{
			Type:          int(ec.Type),
			BitsPerSample: ec.BitsPerSample,
			DimShift:      ec.SubsampleShiftX,
			Name:          ec.Name,
		})
	}
	if err := meta.Emit(w); err != nil {
		return nil, errors.Wrap(err, "emitting image metadata")
	}

	for i := range frames {
		mode := headers.EncodingVarDCT
		if opts.Mode.IsLossless() {
			mode = headers.EncodingModular
		}
		duration := frameDuration(opts, i)
		result := results[i]
		fh := headers.FrameHeader{
			Type:            headers.FrameRegular,
			Mode:            mode,
			HasNoise:        result.HasNoise,
			HasPatches:      result.HasPatches,
			HasSplines:      result.HasSplines,
			Duration:        duration,
			IsLast:          i == len(frames)-1,
			SaveAsReference: referenceSlot(i, opts.ReferenceFrames),
			NumPasses:       numPasses(opts),
		}
		if err := fh.Emit(w); err != nil {
			return nil, errors.Wrapf(err, "emitting frame %d header", i)
		}
		if err := w.WriteBytes(result.Body); err != nil {
			return nil, errors.Wrapf(err, "writing frame %d body", i)
		}
		if err := headers.EmitGroupTerminator(w); err != nil {
			return nil, errors.Wrapf(err, "emitting frame %d group terminator", i)
		}
	}

	return w.Finish()
}

func numPasses(opts EncodingOptions) int {
	if opts.Progressive {
		return 3
	}
	return 1
}

func frameDuration(opts EncodingOptions, index int) uint32 {
	if opts.Animation == nil {
		return 0
	}
	if index < len(opts.Animation.FrameDurations) {
		return opts.Animation.FrameDurations[index]
	}
	return opts.Animation.UniformDuration
}

func colorEncodingOf(c ColorDescriptor) headers.ColorEncoding {
	enc := headers.ColorEncoding{
		ColorModel:      int(c.ColorModel),
		WhitePointX:     c.WhitePointX,
		WhitePointY:     c.WhitePointY,
		RenderingIntent: c.RenderingIntent,
	}
	if c.Primaries == PrimariesCustom {
		enc.Primaries = -1
		enc.CustomXY = [3][2]float64{
			{c.CustomX[0], c.CustomY[0]},
			{c.CustomX[1], c.CustomY[1]},
			{c.CustomX[2], c.CustomY[2]},
		}
	} else {
		enc.Primaries = int(c.Primaries)
	}
	if c.Transfer == TransferGamma {
		enc.Transfer = -1
		enc.Gamma = c.Gamma
	} else {
		enc.Transfer = int(c.Transfer)
	}
	return enc
}

// frameEncodeResult is what one goroutine in Encode hands back to the
// frame-assembly loop: the entropy-coded body (with any overlay
// subsections already prefixed, per spec.md's "each overlay family is
// serialised as a dedicated subsection of the frame body before the DCT
// coefficient body") plus the flags assembleCodestream needs to fill in
// that frame's header.
type frameEncodeResult struct {
	Body       []byte
	Mode       string
	HasNoise   bool
	HasPatches bool
	HasSplines bool
}

// encodeFrameBody runs the colour transform and the selected pipeline
// over every channel of f, concatenating each channel's entropy-coded
// payload with a varint length prefix so the frame body self-delimits.
// ref is the most recent saved reference frame (nil if none), used for
// patch search; refSlot is the slot ref was saved under.
func encodeFrameBody(f *ImageFrame, opts EncodingOptions, ref *ImageFrame, refSlot int) (*frameEncodeResult, error) {
	planes := clonePlanes(f)

	overlay, err := encodeOverlaySubsections(f, opts, planes, ref, refSlot)
	if err != nil {
		return nil, errors.Wrap(err, "overlay subsections")
	}

	if opts.Mode.IsLossless() {
		colorTransformed := len(planes) >= 3
		if colorTransformed {
			colortransform.ForwardYCoCgR(planes[0], planes[1], planes[2])
		}
		body, err := encodeModularFrame(planes, f.Width, f.Height, opts.Effort, f.BitsPerSample, colorTransformed)
		if err != nil {
			return nil, err
		}
		overlay.Body = append(overlay.Body, body...)
		overlay.Mode = "modular"
		return overlay, nil
	}

	floatPlanes := toFloatPlanes(planes, f.BitsPerSample)
	if len(floatPlanes) >= 3 && opts.UseXYB {
		colortransform.ForwardOpsin(floatPlanes[0], floatPlanes[1], floatPlanes[2])
	} else if len(floatPlanes) >= 3 {
		colortransform.ForwardYCbCr(floatPlanes[0], floatPlanes[1], floatPlanes[2])
	}
	distance := qualityToDistance(opts.Mode.Quality())
	roi := roiOf(opts.ROI)

	var body []byte
	if opts.Responsive.Enabled {
		body, err = encodeVarDCTResponsive(floatPlanes, f.Width, f.Height, distance, roi, opts.Responsive.LayerCount)
	} else {
		body, err = encodeVarDCTFrame(floatPlanes, f.Width, f.Height, distance, roi)
	}
	if err != nil {
		return nil, err
	}
	overlay.Body = append(overlay.Body, body...)
	overlay.Mode = "vardct"
	return overlay, nil
}

// encodeOverlaySubsections runs patch search (when opts.Patches and a
// reference frame are both available) and emits the noise/patches/splines
// subsections spec.md places before the DCT/modular coefficient body,
// returning the partially-built frameEncodeResult (Body holds only the
// overlay bytes so far; the caller appends the coefficient body).
func encodeOverlaySubsections(f *ImageFrame, opts EncodingOptions, planes [][]int32, ref *ImageFrame, refSlot int) (*frameEncodeResult, error) {
	result := &frameEncodeResult{}

	var patchList []headers.Patch
	if opts.Patches != nil && ref != nil && len(planes) > 0 && len(ref.Planes) > 0 {
		matches := patches.Find(planes[0], ref.Planes[0], f.Width, f.Height, patches.Options{
			MinPatchSize:        opts.Patches.MinPatchSize,
			MaxPatchSize:        opts.Patches.MaxPatchSize,
			SimilarityThreshold: opts.Patches.SimilarityThreshold,
			MaxPatchesPerFrame:  opts.Patches.MaxPatchesPerFrame,
			SearchRadius:        opts.Patches.SearchRadius,
		})
		for _, m := range matches {
			patchList = append(patchList, headers.Patch{X: m.X, Y: m.Y, RefX: m.RefX, RefY: m.RefY, Size: m.Size, RefSlot: refSlot})
		}
	}

	result.HasNoise = opts.Noise != nil
	result.HasPatches = len(patchList) > 0
	result.HasSplines = opts.Splines != nil

	w := bitio.NewWriter()
	if result.HasNoise {
		seed := opts.Noise.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		n := headers.NoiseParams{
			Amplitude:      opts.Noise.Amplitude,
			LumaStrength:   opts.Noise.LumaStrength,
			ChromaStrength: opts.Noise.ChromaStrength,
			Seed:           seed,
		}
		if err := n.Emit(w); err != nil {
			return nil, errors.Wrap(err, "noise params")
		}
	}
	if result.HasPatches {
		if err := headers.EmitPatches(w, patchList); err != nil {
			return nil, errors.Wrap(err, "patches")
		}
	}
	if result.HasSplines {
		s := headers.SplineParams{QuantisationAdjustment: opts.Splines.QuantisationAdjustment}
		if err := s.Emit(w); err != nil {
			return nil, errors.Wrap(err, "spline params")
		}
	}
	body, err := w.Finish()
	if err != nil {
		return nil, err
	}
	result.Body = body
	return result, nil
}

// keyframeInterval returns the configured keyframe spacing, defaulting
// to "every frame is a keyframe" when reference-frame encoding is off.
func keyframeInterval(rf *ReferenceFrameOptions) int {
	if rf == nil || rf.KeyframeInterval <= 0 {
		return 1
	}
	return rf.KeyframeInterval
}

// referenceSlot reports the reference-frame slot (1..MaxReferenceFrames)
// frame index i is saved under, cycling through the available slots, or
// headers.SaveAsReferenceNone if i isn't a keyframe or reference-frame
// encoding is disabled (spec.md §9's reference slot array).
func referenceSlot(i int, rf *ReferenceFrameOptions) int {
	if rf == nil || i < 0 {
		return headers.SaveAsReferenceNone
	}
	interval := keyframeInterval(rf)
	if i%interval != 0 {
		return headers.SaveAsReferenceNone
	}
	maxSlots := rf.MaxReferenceFrames
	if maxSlots <= 0 {
		maxSlots = 1
	}
	return (i/interval)%maxSlots + 1
}

// previousKeyframeIndex returns the index of the most recent keyframe
// strictly before i, or -1 if there is none (reference-frame encoding
// disabled, or i is the first keyframe).
func previousKeyframeIndex(i int, rf *ReferenceFrameOptions) int {
	if rf == nil {
		return -1
	}
	interval := keyframeInterval(rf)
	prev := (i / interval) * interval
	if prev == i {
		prev -= interval
	}
	if prev < 0 {
		return -1
	}
	return prev
}

// roiOf converts the root package's ROIOptions to vardct.ROI, keeping
// internal/vardct decoupled from the jxl package.
func roiOf(r *ROIOptions) *vardct.ROI {
	if r == nil {
		return nil
	}
	return &vardct.ROI{X: r.X, Y: r.Y, W: r.W, H: r.H, QualityBoost: r.QualityBoost, FeatherWidth: r.FeatherWidth}
}

func clonePlanes(f *ImageFrame) [][]int32 {
	out := make([][]int32, len(f.Planes))
	for i, p := range f.Planes {
		out[i] = append([]int32{}, p...)
	}
	return out
}

func toFloatPlanes(planes [][]int32, bitsPerSample int) [][]float64 {
	max := float64(int64(1)<<uint(bitsPerSample) - 1)
	if max <= 0 {
		max = 255
	}
	out := make([][]float64, len(planes))
	for c, p := range planes {
		fp := make([]float64, len(p))
		for i, v := range p {
			fp[i] = float64(v) / max
		}
		out[c] = fp
	}
	return out
}

// squeezeLevelsForEffort maps the orchestrator's 1..9 effort knob to a
// bounded squeeze recursion depth (spec.md §4.5 step 3: "applied
// recursively a bounded number of times based on effort"). Effort 1-2
// skips decomposition entirely; higher effort spends more time building
// a deeper multi-resolution pyramid.
func squeezeLevelsForEffort(effort int) int {
	levels := (effort - 1) / 2
	if levels < 0 {
		levels = 0
	}
	if levels > 4 {
		levels = 4
	}
	return levels
}

const squeezeMinDim = 8

// maxSampleValueFor derives MED's clamp bound (spec.md §4.5 step 5:
// clamp(N+W-NW, 0, max_sample_value)) from a channel's bit depth.
func maxSampleValueFor(bitsPerSample int) int32 {
	if bitsPerSample <= 0 || bitsPerSample > 30 {
		return 255
	}
	return int32(1)<<uint(bitsPerSample) - 1
}

// encodeModularFrame predicts and entropy-codes each channel plane.
// colorTransformed indicates planes[0] holds the YCoCg-R transform's Y
// channel (clamped like any sample) while planes[1:] hold its Co/Cg
// channels (signed chroma differences, not clamped samples).
func encodeModularFrame(planes [][]int32, width, height, effort, bitsPerSample int, colorTransformed bool) ([]byte, error) {
	w := bitio.NewWriter()
	maxLevels := squeezeLevelsForEffort(effort)
	base := maxSampleValueFor(bitsPerSample)
	for c, data := range planes {
		maxSampleValue := base
		if colorTransformed && c > 0 {
			maxSampleValue = 0
		}
		plane := &modular.Plane{Width: width, Height: height, Data: data}
		results, err := modular.EncodeChannelWithSqueeze(plane, maxLevels, squeezeMinDim, maxSampleValue)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		if err := w.WriteVarint(uint64(len(results))); err != nil {
			return nil, err
		}
		for _, result := range results {
			if err := w.WriteVarint(uint64(len(result.Payload))); err != nil {
				return nil, err
			}
			if err := w.AlignToByte(); err != nil {
				return nil, err
			}
			if err := w.WriteBytes(result.Payload); err != nil {
				return nil, err
			}
		}
	}
	return w.Finish()
}

// encodeVarDCTResponsive encodes layerCount independent VarDCT passes at
// descending distances from baseDistance*6 down to baseDistance, so a
// decoder can stop decoding early and still have a complete, progressively
// sharper image (spec.md's responsive/multi-layer quality mode).
func encodeVarDCTResponsive(planes [][]float64, width, height int, baseDistance float64, roi *vardct.ROI, layerCount int) ([]byte, error) {
	if layerCount < 2 {
		layerCount = 2
	}
	w := bitio.NewWriter()
	if err := w.WriteVarint(uint64(layerCount)); err != nil {
		return nil, err
	}
	for l := 0; l < layerCount; l++ {
		t := float64(l) / float64(layerCount-1)
		distance := baseDistance*6 - t*(baseDistance*6-baseDistance)
		layerBody, err := encodeVarDCTFrame(planes, width, height, distance, roi)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", l)
		}
		if err := w.WriteVarint(uint64(len(layerBody))); err != nil {
			return nil, err
		}
		if err := w.AlignToByte(); err != nil {
			return nil, err
		}
		if err := w.WriteBytes(layerBody); err != nil {
			return nil, err
		}
	}
	return w.Finish()
}

func encodeVarDCTFrame(planes [][]float64, width, height int, distance float64, roi *vardct.ROI) ([]byte, error) {
	w := bitio.NewWriter()
	for c, data := range planes {
		result, err := vardct.EncodeChannel(data, width, height, distance, roi)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		if err := w.WriteVarint(uint64(len(result.DC.Payload))); err != nil {
			return nil, err
		}
		if err := w.AlignToByte(); err != nil {
			return nil, err
		}
		if err := w.WriteBytes(result.DC.Payload); err != nil {
			return nil, err
		}
		for _, pass := range result.ACPasses {
			if pass == nil {
				if err := w.WriteVarint(0); err != nil {
					return nil, err
				}
				continue
			}
			if err := w.WriteVarint(uint64(len(pass.ClusterEnc))); err != nil {
				return nil, err
			}
			for _, enc := range pass.ClusterEnc {
				if err := w.WriteVarint(uint64(len(enc.Payload))); err != nil {
					return nil, err
				}
				if err := w.AlignToByte(); err != nil {
					return nil, err
				}
				if err := w.WriteBytes(enc.Payload); err != nil {
					return nil, err
				}
			}
		}
	}
	return w.Finish()
}
