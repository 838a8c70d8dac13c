package bitio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteBitsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []struct {
			v uint64
			n uint
		}
	}{
		{
			name: "mixed widths",
			values: []struct {
				v uint64
				n uint
			}{
				{0b101, 3},
				{0, 1},
				{0xFF, 8},
				{0x1FFFF, 17},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			for _, pair := range tt.values {
				if err := w.WriteBits(pair.v, pair.n); err != nil {
					t.Fatalf("WriteBits(%d, %d): %v", pair.v, pair.n, err)
				}
			}
			buf, err := w.Finish()
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}
			r := NewReader(buf)
			for _, pair := range tt.values {
				got, err := r.ReadBits(pair.n)
				if err != nil {
					t.Fatalf("ReadBits(%d): %v", pair.n, err)
				}
				want := pair.v & maskFor(pair.n)
				if got != want {
					t.Errorf("ReadBits(%d) = %d, want %d", pair.n, got, want)
				}
			}
		})
	}
}

func TestWriteBytesRequiresAlignment(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBytes([]byte{0x42}); err != ErrNotAligned {
		t.Fatalf("WriteBytes while unaligned = %v, want ErrNotAligned", err)
	}
}

func TestAlignToByte(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(0b111, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByte(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0b11100000}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("AlignToByte output mismatch (-want +got):\n%s", diff)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	w := NewWriter()
	for _, v := range values {
		if err := w.WriteVarint(v); err != nil {
			t.Fatalf("WriteVarint(%d): %v", v, err)
		}
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(buf)
	for _, want := range values {
		got, err := r.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint: %v", err)
		}
		if got != want {
			t.Errorf("ReadVarint = %d, want %d", got, want)
		}
	}
}

func TestWriteU32Distribution(t *testing.T) {
	values := []uint64{0, 5, 16, 17, 100, 272, 273, 1 << 20}
	w := NewWriter()
	for _, v := range values {
		if err := w.WriteU32(v, DefaultU32Distribution); err != nil {
			t.Fatalf("WriteU32(%d): %v", v, err)
		}
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(buf)
	for _, want := range values {
		got, err := r.ReadU32(DefaultU32Distribution)
		if err != nil {
			t.Fatalf("ReadU32: %v", err)
		}
		if got != want {
			t.Errorf("ReadU32 = %d, want %d", got, want)
		}
	}
}

func TestWriteSignature(t *testing.T) {
	w := NewWriter()
	if err := w.WriteSignature(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xFF, 0x0A}, buf); diff != "" {
		t.Errorf("signature mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAfterFinishFails(t *testing.T) {
	w := NewWriter()
	if _, err := w.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(1, 1); err != ErrAlreadyFinished {
		t.Errorf("WriteBits after Finish = %v, want ErrAlreadyFinished", err)
	}
}

func TestBoundedWriterCapacityExceeded(t *testing.T) {
	w := NewBoundedWriter(1)
	if err := w.WriteBytes([]byte{1}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBytes([]byte{2}); err != ErrCapacityExceeded {
		t.Errorf("WriteBytes over capacity = %v, want ErrCapacityExceeded", err)
	}
}
