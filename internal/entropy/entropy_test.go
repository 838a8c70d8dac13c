package entropy

import (
	"testing"
)

func TestBuildDistributionNormalisesToTotalFreq(t *testing.T) {
	symbols := make([]uint16, 0, 100)
	for i := 0; i < 90; i++ {
		symbols = append(symbols, 0)
	}
	for i := 0; i < 5; i++ {
		symbols = append(symbols, 1)
	}
	for i := 0; i < 5; i++ {
		symbols = append(symbols, 2)
	}
	d, err := BuildDistribution(symbols, 3)
	if err != nil {
		t.Fatal(err)
	}
	var sum uint32
	for _, f := range d.Freq {
		sum += f
	}
	if sum != TotalFreq {
		t.Errorf("frequency sum = %d, want %d", sum, TotalFreq)
	}
	for i, c := range []int{90, 5, 5} {
		if c > 0 && d.Freq[i] == 0 {
			t.Errorf("symbol %d had non-zero raw count but zero normalised frequency", i)
		}
	}
}

func TestBuildDistributionAlphabetViolation(t *testing.T) {
	_, err := BuildDistribution([]uint16{0, 1, 5}, 3)
	if err == nil {
		t.Fatal("expected alphabet violation error")
	}
}

func TestEncoderEmptyStream(t *testing.T) {
	d, err := BuildDistribution(nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	enc := NewEncoder(d)
	out, err := enc.Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("empty-stream encoding length = %d, want 1 byte (header bit only)", len(out))
	}
	if out[0]>>7 != 1 {
		t.Errorf("empty-stream header bit not set: %08b", out[0])
	}
}

func TestEncoderNonEmptyStreamEndsWithFinalState(t *testing.T) {
	symbols := []uint16{0, 1, 2, 1, 0, 0, 2, 1}
	d, err := BuildDistribution(symbols, 3)
	if err != nil {
		t.Fatal(err)
	}
	enc := NewEncoder(d)
	out, err := enc.Encode(symbols)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) < 5 {
		t.Fatalf("encoded length = %d, want at least 5 (header bit + 32-bit state)", len(out))
	}
}

func TestSymbolOfMatchesBuild(t *testing.T) {
	symbols := []uint16{0, 0, 1, 2, 2, 2}
	d, err := BuildDistribution(symbols, 3)
	if err != nil {
		t.Fatal(err)
	}
	for slot := uint32(0); slot < TotalFreq; slot += 97 {
		s := d.SymbolOf(slot)
		if slot < d.Cumulative[s] || slot >= d.Cumulative[s+1] {
			t.Fatalf("SymbolOf(%d) = %d outside its cumulative range [%d,%d)", slot, s, d.Cumulative[s], d.Cumulative[s+1])
		}
	}
}

func TestInterleavedEncoderRejectsTooManyChannels(t *testing.T) {
	d, err := BuildDistribution([]uint16{0, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewInterleavedEncoder(d, MaxChannels+1); err == nil {
		t.Fatal("expected error for channel count beyond MaxChannels")
	}
}

func TestShouldUseLZ77DetectsRuns(t *testing.T) {
	symbols := []uint16{1, 2, 3, 3, 3, 3, 3, 4}
	if !ShouldUseLZ77(symbols) {
		t.Error("expected run of 5 identical symbols to trigger LZ77")
	}
	noRuns := []uint16{1, 2, 3, 4, 5, 6, 7, 8}
	if ShouldUseLZ77(noRuns) {
		t.Error("expected no-repetition stream to not trigger LZ77")
	}
}

func TestContextSetClusterMergesWithinThreshold(t *testing.T) {
	a := []uint16{0, 0, 0, 1}
	b := []uint16{0, 0, 0, 1} // identical distribution
	cs, err := NewContextSet([][]uint16{a, b}, 2)
	if err != nil {
		t.Fatal(err)
	}
	cs.Cluster(0, 0.01) // force clustering regardless of table size
	if cs.ClusterMap[1] != cs.ClusterMap[0] {
		t.Errorf("expected identical distributions to merge, got clusters %v", cs.ClusterMap)
	}
}
