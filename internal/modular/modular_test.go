package modular

import (
	"math/rand"
	"testing"
)

func TestSqueezeRowRoundTrip(t *testing.T) {
	row := []int32{10, 12, 9, 40, -5, 3, 100, -100, 7}
	avg, res := SqueezeRow(row)
	got := UnsqueezeRow(avg, res, len(row))
	for i := range row {
		if got[i] != row[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], row[i])
		}
	}
}

func TestSqueezeHorizontalVerticalRoundTrip(t *testing.T) {
	width, height := 6, 5
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(1))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(511) - 255)
	}

	avgH, resH := SqueezeHorizontal(p)
	backH := UnsqueezeHorizontal(avgH, resH, width)
	for i := range p.Data {
		if backH.Data[i] != p.Data[i] {
			t.Fatalf("horizontal round trip mismatch at %d", i)
		}
	}

	avgV, resV := SqueezeVertical(p)
	backV := UnsqueezeVertical(avgV, resV, height)
	for i := range p.Data {
		if backV.Data[i] != p.Data[i] {
			t.Fatalf("vertical round trip mismatch at %d", i)
		}
	}
}

func TestDecomposeReconstructRecursiveRoundTrip(t *testing.T) {
	width, height := 16, 12
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(2))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(255))
	}

	coarse, levels := DecomposeRecursive(p, 3, 2)
	out := ReconstructRecursive(coarse, levels, width, height)

	if out.Width != width || out.Height != height {
		t.Fatalf("reconstructed dims = %dx%d, want %dx%d", out.Width, out.Height, width, height)
	}
	for i := range p.Data {
		if out.Data[i] != p.Data[i] {
			t.Fatalf("recursive round trip mismatch at index %d: got %d, want %d", i, out.Data[i], p.Data[i])
		}
	}
}

func TestMEDIsClampedGradientSum(t *testing.T) {
	// spec.md §4.5 step 5: clamp(N + W - NW, 0, max_sample_value).
	if got := MED(10, 20, 25, 0); got != 5 {
		t.Errorf("MED(10,20,25,0) = %d, want 5", got)
	}
	// clamps below zero
	if got := MED(0, 0, 100, 255); got != 0 {
		t.Errorf("MED(0,0,100,255) = %d, want 0", got)
	}
	// clamps above max_sample_value
	if got := MED(300, 300, 0, 255); got != 255 {
		t.Errorf("MED(300,300,0,255) = %d, want 255", got)
	}
	// maxSampleValue <= 0 disables clamping
	if got := MED(300, 300, 0, 0); got != 600 {
		t.Errorf("MED(300,300,0,0) = %d, want 600", got)
	}
}

func TestPredictUnpredictPlaneRoundTrip(t *testing.T) {
	width, height := 9, 7
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(3))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(200) - 100)
	}
	res := PredictPlane(p, 0)
	back := UnpredictPlane(res, 0)
	for i := range p.Data {
		if back.Data[i] != p.Data[i] {
			t.Fatalf("MED predict round trip mismatch at %d", i)
		}
	}
}

func TestPredictUnpredictPlaneRoundTripClamped(t *testing.T) {
	width, height := 9, 7
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(6))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(256))
	}
	res := PredictPlane(p, 255)
	back := UnpredictPlane(res, 255)
	for i := range p.Data {
		if back.Data[i] != p.Data[i] {
			t.Fatalf("clamped MED predict round trip mismatch at %d", i)
		}
	}
}

func TestPredictUnpredictAdaptiveRoundTrip(t *testing.T) {
	width, height := 9, 7
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(4))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(200) - 100)
	}
	res, _ := PredictPlaneAdaptive(p, 0)
	back := UnpredictPlaneAdaptive(res, 0)
	for i := range p.Data {
		if back.Data[i] != p.Data[i] {
			t.Fatalf("adaptive predict round trip mismatch at %d", i)
		}
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2, -2, 1000, -1000} {
		z := ZigZagEncode(v)
		if back := ZigZagDecode(z); back != v {
			t.Errorf("zigzag round trip of %d got %d", v, back)
		}
	}
}

func TestEncodeChannelProducesNonEmptyPayload(t *testing.T) {
	width, height := 8, 8
	p := &Plane{Width: width, Height: height, Data: make([]int32, width*height)}
	rnd := rand.New(rand.NewSource(5))
	for i := range p.Data {
		p.Data[i] = int32(rnd.Intn(30) - 15)
	}
	result, classes, err := EncodeChannel(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Payload) == 0 {
		t.Fatal("expected non-empty encoded payload")
	}
	if len(classes) != width*height {
		t.Fatalf("classes length = %d, want %d", len(classes), width*height)
	}
}

func TestEncodeChannelRejectsEmptyPlane(t *testing.T) {
	p := &Plane{Width: 0, Height: 0}
	if _, _, err := EncodeChannel(p, 0); err == nil {
		t.Fatal("expected error for empty channel")
	}
}
