// Package bitio provides bit-granular and byte-aligned primitive emission
// for JPEG XL codestreams.
package bitio

import (
	"github.com/pkg/errors"
)

// ErrNotAligned is returned by WriteBytes when the bit cursor is not at a
// byte boundary.
var ErrNotAligned = errors.New("bitio: writer not byte-aligned")

// ErrAlreadyFinished is returned by any write after Finish has been called.
var ErrAlreadyFinished = errors.New("bitio: writer already finished")

// ErrCapacityExceeded is returned when a bounded Writer runs out of room.
var ErrCapacityExceeded = errors.New("bitio: capacity exceeded")

// U32Distribution selects the four (offset, bit-width) pairs used by
// WriteU32's selector-driven encoding (JPEG XL "U32" primitive).
type U32Distribution [4]U32Bucket

// U32Bucket is one of the four buckets of a U32Distribution: values in
// [Offset, Offset+1<<Bits) are selected by their 2-bit selector and
// written as Offset-relative, Bits-wide fields.
type U32Bucket struct {
	Offset uint64
	Bits   uint
}

// DefaultU32Distribution is the distribution used by JPEG XL's compact
// size fields: selector 0 is the literal 0 (no field bits), selector 1 a
// 4-bit field offset by 1, selector 2 an 8-bit field offset by 17,
// selector 3 a full 32-bit field offset by 273.
var DefaultU32Distribution = U32Distribution{
	{Offset: 0, Bits: 0},
	{Offset: 1, Bits: 4},
	{Offset: 17, Bits: 8},
	{Offset: 273, Bits: 32},
}

// Writer is a mutable byte buffer plus a bit cursor. All writes are
// MSB-first within the accumulator; full bytes are flushed as they are
// produced. A Writer is unbounded unless constructed with NewBoundedWriter.
type Writer struct {
	buf       []byte
	acc       uint64 // bit accumulator, MSB-first within the low `bits` bits
	bits      uint8  // number of valid bits currently in acc (0-7 between bytes)
	finished  bool
	maxBytes  int // 0 means unbounded
}

// NewWriter creates an unbounded bit-granular writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewBoundedWriter creates a writer whose backing storage may not exceed
// maxBytes; writes beyond that bound fail with ErrCapacityExceeded.
func NewBoundedWriter(maxBytes int) *Writer {
	return &Writer{maxBytes: maxBytes}
}

func (w *Writer) checkCapacity(additional int) error {
	if w.maxBytes == 0 {
		return nil
	}
	if len(w.buf)+additional > w.maxBytes {
		return ErrCapacityExceeded
	}
	return nil
}

// WriteBits writes the low `count` bits of value, MSB-first, count in 1..64.
func (w *Writer) WriteBits(value uint64, count uint) error {
	if w.finished {
		return ErrAlreadyFinished
	}
	if count == 0 || count > 64 {
		return errors.Errorf("bitio: invalid bit count %d", count)
	}
	value &= maskFor(count)
	for count > 0 {
		take := uint(8 - w.bits)
		if take > count {
			take = count
		}
		shifted := (value >> (count - take)) & maskFor(take)
		w.acc = (w.acc << take) | shifted
		w.bits += uint8(take)
		count -= take
		if w.bits == 8 {
			if err := w.checkCapacity(1); err != nil {
				return err
			}
			w.buf = append(w.buf, byte(w.acc))
			w.acc = 0
			w.bits = 0
		}
	}
	return nil
}

func maskFor(count uint) uint64 {
	if count >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << count) - 1
}

// WriteBytes appends raw bytes. The cursor must be byte-aligned.
func (w *Writer) WriteBytes(b []byte) error {
	if w.finished {
		return ErrAlreadyFinished
	}
	if w.bits != 0 {
		return ErrNotAligned
	}
	if err := w.checkCapacity(len(b)); err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	return nil
}

// AlignToByte pads the current byte with zero bits.
func (w *Writer) AlignToByte() error {
	if w.finished {
		return ErrAlreadyFinished
	}
	if w.bits == 0 {
		return nil
	}
	return w.WriteBits(0, uint(8-w.bits))
}

// WriteVarint writes v as little-endian 7-bit groups with a continuation
// bit. Always byte-aligned on entry and exit.
func (w *Writer) WriteVarint(v uint64) error {
	if w.bits != 0 {
		return ErrNotAligned
	}
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := w.WriteBytes([]byte{b}); err != nil {
			return err
		}
		if v == 0 {
			break
		}
	}
	return nil
}

// WriteU32 writes value using the JPEG XL compact U32 encoding: a 2-bit
// selector chooses one of dist's four buckets, then an offset-relative
// field of the selected width is emitted.
func (w *Writer) WriteU32(value uint64, dist U32Distribution) error {
	selector := -1
	for i, bucket := range dist {
		hi := bucket.Offset + (uint64(1) << bucket.Bits)
		if bucket.Bits == 32 {
			hi = ^uint64(0)
		}
		if value >= bucket.Offset && value < hi {
			selector = i
		}
	}
	if selector == -1 {
		return errors.Errorf("bitio: value %d out of range for U32 distribution", value)
	}
	if err := w.WriteBits(uint64(selector), 2); err != nil {
		return err
	}
	bucket := dist[selector]
	if bucket.Bits == 0 {
		return nil
	}
	return w.WriteBits(value-bucket.Offset, bucket.Bits)
}

// WriteSignature emits the two-byte JPEG XL codestream magic.
func (w *Writer) WriteSignature() error {
	return w.WriteBytes([]byte{0xFF, 0x0A})
}

// Len reports the number of fully flushed bytes, excluding a partial
// trailing byte.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Finish flushes any partial byte (zero-padded) and returns the owned
// buffer. The writer may not be used afterward.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, ErrAlreadyFinished
	}
	if err := w.AlignToByte(); err != nil {
		return nil, err
	}
	w.finished = true
	return w.buf, nil
}
