package vardct

import (
	"math"
	"math/rand"
	"testing"
)

func TestForwardInverseDCTRoundTrip(t *testing.T) {
	var b Block
	rnd := rand.New(rand.NewSource(1))
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			b.Samples[y][x] = rnd.Float64()*255 - 127.5
		}
	}
	coeffs := ForwardDCT(b)
	back := InverseDCT(coeffs)
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			if math.Abs(back.Samples[y][x]-b.Samples[y][x]) > 1e-9 {
				t.Fatalf("DCT round trip mismatch at (%d,%d): got %v, want %v", x, y, back.Samples[y][x], b.Samples[y][x])
			}
		}
	}
}

func TestDCHasZeroFrequencyForConstantBlock(t *testing.T) {
	var b Block
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			b.Samples[y][x] = 42
		}
	}
	coeffs := ForwardDCT(b)
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			if y == 0 && x == 0 {
				continue
			}
			if math.Abs(coeffs.Samples[y][x]) > 1e-9 {
				t.Fatalf("expected zero AC energy for a flat block, got %v at (%d,%d)", coeffs.Samples[y][x], x, y)
			}
		}
	}
}

func TestNaturalOrderCoversEveryCoefficientOnce(t *testing.T) {
	order := NaturalOrder()
	seen := make([]bool, BlockSize*BlockSize)
	for _, idx := range order {
		if seen[idx] {
			t.Fatalf("index %d scanned more than once", idx)
		}
		seen[idx] = true
	}
	for i, s := range seen {
		if !s {
			t.Errorf("index %d never scanned", i)
		}
	}
}

func TestQuantizeDequantizeExactAtZeroDistance(t *testing.T) {
	var b Block
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			b.Samples[y][x] = float64((y*BlockSize + x) % 7)
		}
	}
	// Integer-valued coefficients: at distance 0 quantisation only rounds,
	// so the round trip is exact for integer inputs.
	coeffs := b
	table := TableForDistance(0)
	q := Quantize(coeffs, table, 1.0)
	back := Dequantize(q, table, 1.0)
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			if math.Abs(back.Samples[y][x]-coeffs.Samples[y][x]) > 1e-9 {
				t.Fatalf("distance-0 quantisation should be lossless at (%d,%d): got %v, want %v", x, y, back.Samples[y][x], coeffs.Samples[y][x])
			}
		}
	}
}

func TestBlockActivityHigherForNoisyBlock(t *testing.T) {
	var flat, noisy Block
	rnd := rand.New(rand.NewSource(2))
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			flat.Samples[y][x] = 10
			noisy.Samples[y][x] = rnd.Float64() * 255
		}
	}
	if BlockActivity(noisy) <= BlockActivity(flat) {
		t.Error("expected noisy block to have higher activity than a flat block")
	}
}

func TestFitCfLRecoversKnownSlope(t *testing.T) {
	luma := []float64{1, 2, 3, 4, 5}
	chroma := make([]float64, len(luma))
	for i, l := range luma {
		chroma[i] = 2*l + 1
	}
	model := FitCfL(luma, chroma)
	if math.Abs(model.Slope-2) > 1e-6 || math.Abs(model.Intercept-1) > 1e-6 {
		t.Errorf("fit = slope %v intercept %v, want slope 2 intercept 1", model.Slope, model.Intercept)
	}
}

func TestDCPredictRoundTrip(t *testing.T) {
	bw, bh := 5, 4
	dc := &DCPlane{BlocksWide: bw, BlocksHigh: bh, Values: make([]int32, bw*bh)}
	rnd := rand.New(rand.NewSource(3))
	for i := range dc.Values {
		dc.Values[i] = int32(rnd.Intn(200) - 100)
	}
	orig := append([]int32{}, dc.Values...)
	res := dc.PredictResiduals()
	back := ReconstructFromResiduals(res, bw, bh)
	for i := range orig {
		if back.Values[i] != orig[i] {
			t.Fatalf("DC predict round trip mismatch at %d: got %d, want %d", i, back.Values[i], orig[i])
		}
	}
}

func TestEncodeChannelProducesDCAndACPayloads(t *testing.T) {
	width, height := 16, 16
	plane := make([]float64, width*height)
	rnd := rand.New(rand.NewSource(4))
	for i := range plane {
		plane[i] = rnd.Float64()*255 - 127.5
	}
	result, err := EncodeChannel(plane, width, height, 1.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.DC == nil || len(result.DC.Payload) == 0 {
		t.Fatal("expected non-empty DC payload")
	}
	if result.ACPasses[PassLowFreqAC] == nil {
		t.Fatal("expected a populated low-frequency AC pass")
	}
	if len(result.ACPasses[PassLowFreqAC].ClusterEnc) == 0 {
		t.Fatal("expected at least one AC cluster payload")
	}
}

func TestEncodeChannelRejectsEmptyPlane(t *testing.T) {
	if _, err := EncodeChannel(nil, 0, 0, 1.0, nil); err == nil {
		t.Fatal("expected error for empty channel")
	}
}

func TestROIOverrideChangesDCQuantisation(t *testing.T) {
	width, height := 16, 16
	plane := make([]float64, width*height)
	rnd := rand.New(rand.NewSource(5))
	for i := range plane {
		plane[i] = rnd.Float64()*255 - 127.5
	}
	without, err := EncodeChannel(plane, width, height, 4.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	roi := &ROI{X: 0, Y: 0, W: 8, H: 8, QualityBoost: 50, FeatherWidth: 0}
	with, err := EncodeChannel(plane, width, height, 4.0, roi)
	if err != nil {
		t.Fatal(err)
	}
	if string(without.DC.Payload) == string(with.DC.Payload) {
		t.Error("expected ROI override to change the DC payload")
	}
}

func TestROIDistanceToEdgeZeroInsideRegion(t *testing.T) {
	r := &ROI{X: 8, Y: 8, W: 8, H: 8}
	if d := r.distanceToEdge(8, 8, 16, 16); d != 0 {
		t.Errorf("expected zero distance for a block fully inside the ROI, got %d", d)
	}
	if d := r.distanceToEdge(0, 0, 8, 8); d <= 0 {
		t.Errorf("expected positive distance for a block outside the ROI, got %d", d)
	}
}
