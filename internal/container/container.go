// Package container implements the ISOBMFF-style box wrapper around a
// JPEG XL codestream (spec.md §4.7, §6): signature, ftyp, codestream, and
// metadata boxes, each a 4-byte big-endian length + 4-byte type + payload.
package container

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Type is a 4-byte box type code.
type Type uint32

// String returns the 4-character type code.
func (t Type) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(t))
	return string(b)
}

// Box type codes used by the JPEG XL container (spec.md §4.7).
const (
	TypeSignature  Type = 0x4A584C20 // "JXL " - carried inside the 12-byte signature box body, see Signature()
	TypeFileType   Type = 0x66747970 // "ftyp"
	TypeCodestream Type = 0x6A786C63 // "jxlc" - single codestream
	TypePartial    Type = 0x6A786C70 // "jxlp" - partial codestream piece
	TypeExif       Type = 0x45786966 // "Exif"
	TypeXML        Type = 0x786D6C20 // "xml "
	TypeJUMBF      Type = 0x6A756D62 // "jumb"
	TypeColor      Type = 0x636F6C72 // "colr"
)

// BrandJXL is the ftyp box's JPEG XL brand.
const BrandJXL Type = 0x6A786C20 // "jxl "

// Box is one ISOBMFF box: a 4-byte length (or 1 for an extended 8-byte
// length) + 4-byte type + payload.
type Box struct {
	Type    Type
	Payload []byte
}

// Bytes renders the box with its length prefix computed from Payload.
func (b *Box) Bytes() []byte {
	total := uint64(8 + len(b.Payload))
	if total <= 0xFFFFFFFF {
		header := make([]byte, 8)
		binary.BigEndian.PutUint32(header[0:4], uint32(total))
		binary.BigEndian.PutUint32(header[4:8], uint32(b.Type))
		return append(header, b.Payload...)
	}
	header := make([]byte, 16)
	binary.BigEndian.PutUint32(header[0:4], 1)
	binary.BigEndian.PutUint32(header[4:8], uint32(b.Type))
	binary.BigEndian.PutUint64(header[8:16], total+8)
	return append(header, b.Payload...)
}

// Signature returns the fixed 12-byte JXL signature box (spec.md §6).
func Signature() []byte {
	return []byte{
		0x00, 0x00, 0x00, 0x0C,
		'J', 'X', 'L', ' ',
		0x0D, 0x0A, 0x87, 0x0A,
	}
}

// FileType returns the ftyp box declaring the jxl brand with itself as the
// sole compatible brand.
func FileType() *Box {
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[0:4], uint32(BrandJXL))
	binary.BigEndian.PutUint32(payload[4:8], 0) // minor version
	binary.BigEndian.PutUint32(payload[8:12], uint32(BrandJXL))
	return &Box{Type: TypeFileType, Payload: payload}
}

// Codestream wraps a raw codestream (signature + frame data) in a single
// jxlc box.
func Codestream(codestream []byte) *Box {
	return &Box{Type: TypeCodestream, Payload: codestream}
}

// PartialCodestream wraps one piece of a multi-part jxlp-split
// codestream. index is big-endian encoded with its high bit set on the
// final piece, per the JPEG XL container spec's jxlp convention.
func PartialCodestream(index uint32, last bool, piece []byte) *Box {
	if last {
		index |= 1 << 31
	}
	payload := make([]byte, 4+len(piece))
	binary.BigEndian.PutUint32(payload[0:4], index)
	copy(payload[4:], piece)
	return &Box{Type: TypePartial, Payload: payload}
}

// Exif wraps EXIF metadata, preceded by the required TIFF-endian marker.
func Exif(tiffEndianMarker [4]byte, exifData []byte) *Box {
	payload := make([]byte, 4+len(exifData))
	copy(payload[0:4], tiffEndianMarker[:])
	copy(payload[4:], exifData)
	return &Box{Type: TypeExif, Payload: payload}
}

// XML wraps XMP metadata.
func XML(xmpData []byte) *Box {
	return &Box{Type: TypeXML, Payload: xmpData}
}

// JUMBF wraps JUMBF metadata.
func JUMBF(jumbfData []byte) *Box {
	return &Box{Type: TypeJUMBF, Payload: jumbfData}
}

// ICCColor wraps a raw ICC profile as a colr box (method 2: restricted ICC).
func ICCColor(icc []byte) *Box {
	payload := make([]byte, 1+len(icc))
	payload[0] = 2 // restricted ICC profile
	copy(payload[1:], icc)
	return &Box{Type: TypeColor, Payload: payload}
}

// EnumeratedColor wraps an enumerated colour encoding as a colr box
// (method 1).
func EnumeratedColor(enumValue uint32) *Box {
	payload := make([]byte, 5)
	payload[0] = 1
	binary.BigEndian.PutUint32(payload[1:5], enumValue)
	return &Box{Type: TypeColor, Payload: payload}
}

// Writer accumulates boxes in emission order and renders the full
// container file.
type Writer struct {
	boxes [][]byte
}

// NewWriter returns an empty container writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteBox appends a box's rendered bytes.
func (w *Writer) WriteBox(b *Box) error {
	if b == nil {
		return errors.New("container: nil box")
	}
	w.boxes = append(w.boxes, b.Bytes())
	return nil
}

// Bytes renders the signature box followed by every written box, in order.
func (w *Writer) Bytes() []byte {
	out := append([]byte{}, Signature()...)
	for _, b := range w.boxes {
		out = append(out, b...)
	}
	return out
}
