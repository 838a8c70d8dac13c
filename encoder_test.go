package jxl

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

func fillRandomFrame(width, height, channels int, seed int64) *ImageFrame {
	f := NewImageFrame(width, height, channels)
	rnd := rand.New(rand.NewSource(seed))
	for c := 0; c < channels; c++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Set(x, y, c, uint16(rnd.Intn(256)))
			}
		}
	}
	return f
}

func TestEncodeLosslessProducesContainerWithSignature(t *testing.T) {
	f := fillRandomFrame(16, 16, 3, 1)
	out, err := Encode([]*ImageFrame{f}, EncodingOptions{Mode: Lossless(), Effort: 5, Container: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes) < 12 {
		t.Fatal("expected output at least as long as the container signature")
	}
	if string(out.Bytes[4:8]) != "JXL " {
		t.Errorf("expected container to start with the JXL signature box, got %q", out.Bytes[4:8])
	}
	ftypLen := binary.BigEndian.Uint32(out.Bytes[12:16])
	jxlcPayload := out.Bytes[12+ftypLen+8:]
	if jxlcPayload[0] != 0xFF || jxlcPayload[1] != 0x0A {
		t.Errorf("expected the jxlc box payload to start with the codestream magic, got % x", jxlcPayload[0:2])
	}
	if len(out.Stats) != 1 || out.Stats[0].Mode != "modular" {
		t.Fatalf("unexpected stats: %+v", out.Stats)
	}
}

func TestEncodeLossyWithoutContainerStillHasSignature(t *testing.T) {
	f := fillRandomFrame(16, 16, 3, 2)
	out, err := Encode([]*ImageFrame{f}, EncodingOptions{Mode: Lossy(80), Effort: 5, Container: false, UseXYB: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes) < 2 || out.Bytes[0] != 0xFF || out.Bytes[1] != 0x0A {
		t.Errorf("expected raw codestream to start with 0xFF 0x0A, got % x", out.Bytes[:2])
	}
	if out.Stats[0].Mode != "vardct" {
		t.Errorf("expected vardct mode, got %q", out.Stats[0].Mode)
	}
}

func TestEncodeRejectsInvalidOptions(t *testing.T) {
	f := fillRandomFrame(8, 8, 3, 3)
	_, err := Encode([]*ImageFrame{f}, EncodingOptions{Mode: Lossy(150), Effort: 5})
	if err == nil {
		t.Fatal("expected error for out-of-range quality")
	}
}

func TestEncodeRejectsEmptyFrameList(t *testing.T) {
	_, err := Encode(nil, DefaultEncodingOptions())
	if err == nil {
		t.Fatal("expected error for empty frame list")
	}
}

func TestEncodeRejectsMismatchedAnimationDimensions(t *testing.T) {
	a := fillRandomFrame(8, 8, 3, 4)
	b := fillRandomFrame(9, 8, 3, 5)
	opts := DefaultEncodingOptions()
	opts.Animation = &AnimationOptions{FPS: 30, TPSDenominator: 1000}
	_, err := Encode([]*ImageFrame{a, b}, opts)
	if err == nil {
		t.Fatal("expected error for mismatched animation frame dimensions")
	}
}

func TestEncodeMultiFrameAnimation(t *testing.T) {
	a := fillRandomFrame(8, 8, 3, 6)
	b := fillRandomFrame(8, 8, 3, 7)
	opts := EncodingOptions{Mode: Lossless(), Effort: 3, Container: true}
	opts.Animation = &AnimationOptions{FPS: 24, TPSDenominator: 1000, UniformDuration: 1}
	out, err := Encode([]*ImageFrame{a, b}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Stats) != 2 {
		t.Fatalf("expected 2 frame stats, got %d", len(out.Stats))
	}
}

func TestEncodeWithROIProducesValidOutput(t *testing.T) {
	f := fillRandomFrame(32, 32, 3, 8)
	opts := EncodingOptions{Mode: Lossy(80), Effort: 4, UseXYB: true}
	opts.ROI = &ROIOptions{X: 4, Y: 4, W: 8, H: 8, QualityBoost: 40, FeatherWidth: 2}
	out, err := Encode([]*ImageFrame{f}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestEncodeFrameBodySetsHasPatchesOnShiftedDuplicateBlock(t *testing.T) {
	width, height := 32, 16
	ref := NewImageFrame(width, height, 3)
	for c := 0; c < 3; c++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				ref.Set(x, y, c, uint16((x*7+y*13+c*29)%256))
			}
		}
	}
	cur := NewImageFrame(width, height, 3)
	for c := 0; c < 3; c++ {
		copy(cur.Planes[c], ref.Planes[c])
	}
	// Shift an 8x8 block from (16,0) to (0,0) on every channel so Find
	// has an unambiguous, distinct-location match to report.
	for c := 0; c < 3; c++ {
		for dy := 0; dy < 8; dy++ {
			for dx := 0; dx < 8; dx++ {
				cur.Planes[c][dy*width+dx] = ref.Planes[c][dy*width+16+dx]
			}
		}
	}

	opts := EncodingOptions{Mode: Lossless(), Effort: 3}
	opts.Patches = &PatchOptions{MinPatchSize: 8, MaxPatchSize: 8, SimilarityThreshold: 0.9, MaxPatchesPerFrame: 4, SearchRadius: 24}

	result, err := encodeFrameBody(cur, opts, ref, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.HasPatches {
		t.Fatal("expected HasPatches to be set for a frame with a detectable shifted duplicate block")
	}
}

func TestEncodeFrameBodyNoReferenceLeavesHasPatchesFalse(t *testing.T) {
	f := fillRandomFrame(16, 16, 3, 9)
	opts := EncodingOptions{Mode: Lossless(), Effort: 3}
	opts.Patches = &PatchOptions{MinPatchSize: 8, MaxPatchSize: 8, SimilarityThreshold: 0.9, MaxPatchesPerFrame: 4, SearchRadius: 4}
	result, err := encodeFrameBody(f, opts, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.HasPatches {
		t.Fatal("expected HasPatches to stay false without a reference frame")
	}
}

func TestEncodeWithNoiseAndSplinesProducesValidOutput(t *testing.T) {
	f := fillRandomFrame(16, 16, 3, 10)
	opts := EncodingOptions{Mode: Lossy(80), Effort: 3, UseXYB: true}
	opts.Noise = &NoiseOptions{Amplitude: 0.2, LumaStrength: 0.3, ChromaStrength: 0.1, Seed: 7}
	opts.Splines = &SplineOptions{QuantisationAdjustment: -3, EdgeThreshold: 0.5, MaxSplinesPerFrame: 4}
	out, err := Encode([]*ImageFrame{f}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestEncodeResponsiveProducesLargerBodyThanSingleLayer(t *testing.T) {
	f := fillRandomFrame(16, 16, 3, 11)
	base := EncodingOptions{Mode: Lossy(80), Effort: 3, UseXYB: true, Container: false}
	plain, err := Encode([]*ImageFrame{f}, base)
	if err != nil {
		t.Fatal(err)
	}

	responsive := base
	responsive.Responsive = ResponsiveOptions{Enabled: true, LayerCount: 3}
	withLayers, err := Encode([]*ImageFrame{f}, responsive)
	if err != nil {
		t.Fatal(err)
	}

	if len(withLayers.Bytes) <= len(plain.Bytes) {
		t.Errorf("expected responsive output (%d bytes) to be larger than single-layer output (%d bytes)", len(withLayers.Bytes), len(plain.Bytes))
	}
}

func TestReferenceSlotCyclesThroughAvailableSlots(t *testing.T) {
	rf := &ReferenceFrameOptions{KeyframeInterval: 2, MaxReferenceFrames: 2}
	cases := []struct {
		index int
		want  int
	}{
		{0, 1},
		{1, 0}, // not a keyframe
		{2, 2},
		{3, 0},
		{4, 1},
	}
	for _, c := range cases {
		if got := referenceSlot(c.index, rf); got != c.want {
			t.Errorf("referenceSlot(%d) = %d, want %d", c.index, got, c.want)
		}
	}
}

func TestPreviousKeyframeIndexFindsMostRecentKeyframe(t *testing.T) {
	rf := &ReferenceFrameOptions{KeyframeInterval: 3, MaxReferenceFrames: 1}
	cases := []struct {
		index int
		want  int
	}{
		{0, -1},
		{1, 0},
		{2, 0},
		{3, 0},
		{4, 3},
	}
	for _, c := range cases {
		if got := previousKeyframeIndex(c.index, rf); got != c.want {
			t.Errorf("previousKeyframeIndex(%d) = %d, want %d", c.index, got, c.want)
		}
	}
}
