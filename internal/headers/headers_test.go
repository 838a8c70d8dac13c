package headers

import (
	"testing"

	"github.com/jxl-go/jxlenc/internal/bitio"
)

func TestSizeHeaderSmallPath(t *testing.T) {
	w := bitio.NewWriter()
	s := SizeHeader{Width: 8, Height: 8}
	if err := s.Emit(w); err != nil {
		t.Fatal(err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(buf)
	small, err := r.ReadBits(1)
	if err != nil {
		t.Fatal(err)
	}
	if small != 1 {
		t.Fatalf("small flag = %d, want 1 for 8x8", small)
	}
	w9, err := r.ReadBits(9)
	if err != nil {
		t.Fatal(err)
	}
	h9, err := r.ReadBits(9)
	if err != nil {
		t.Fatal(err)
	}
	if w9+1 != 8 || h9+1 != 8 {
		t.Errorf("dimensions = %d x %d, want 8 x 8", w9+1, h9+1)
	}
}

func TestSizeHeaderLargePath(t *testing.T) {
	w := bitio.NewWriter()
	s := SizeHeader{Width: 1 << 16, Height: 1 << 16}
	if err := s.Emit(w); err != nil {
		t.Fatal(err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(buf)
	small, err := r.ReadBits(1)
	if err != nil {
		t.Fatal(err)
	}
	if small != 0 {
		t.Fatalf("small flag = %d, want 0 for dimensions beyond 2^14", small)
	}
	gotW, err := r.ReadU32(bitio.DefaultU32Distribution)
	if err != nil {
		t.Fatal(err)
	}
	gotH, err := r.ReadU32(bitio.DefaultU32Distribution)
	if err != nil {
		t.Fatal(err)
	}
	if gotW != uint64(s.Width) || gotH != uint64(s.Height) {
		t.Errorf("dimensions = %d x %d, want %d x %d", gotW, gotH, s.Width, s.Height)
	}
}

func TestImageMetadataByteAlignedAfterEmit(t *testing.T) {
	w := bitio.NewWriter()
	m := ImageMetadata{
		BitDepth:    BitDepth{BitsPerSample: 8},
		Orientation: 1,
		Color: ColorEncoding{
			Primaries:  0,
			Transfer:   0,
			ColorModel: 0,
		},
	}
	if err := m.Emit(w); err != nil {
		t.Fatal(err)
	}
	// WriteBytes fails on a writer holding a partial byte, so it succeeds
	// only if Emit left the writer byte-aligned.
	if err := w.WriteBytes([]byte{0xAA}); err != nil {
		t.Fatalf("expected writer to be byte-aligned after Emit: %v", err)
	}
	if _, err := w.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestFrameHeaderRejectsBadSaveSlot(t *testing.T) {
	w := bitio.NewWriter()
	h := FrameHeader{SaveAsReference: 5, NumPasses: 1}
	if err := h.Emit(w); err == nil {
		t.Fatal("expected error for save-as-reference slot > 4")
	}
}

func TestFrameHeaderRequiresOneOrThreePasses(t *testing.T) {
	w := bitio.NewWriter()
	h := FrameHeader{NumPasses: 2}
	if err := h.Emit(w); err == nil {
		t.Fatal("expected error for NumPasses == 2")
	}
}

func TestGroupTerminatorByteAligned(t *testing.T) {
	w := bitio.NewWriter()
	if err := w.WriteBits(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := EmitGroupTerminator(w); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBytes([]byte{0xAA}); err != nil {
		t.Fatalf("expected writer to be byte-aligned after group terminator: %v", err)
	}
	if _, err := w.Finish(); err != nil {
		t.Fatal(err)
	}
}
