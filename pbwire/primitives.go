package pbwire

import (
	"encoding/binary"
	"io"
	"math"
)

// Fixed-width big-endian primitives (spec §4.7/§6: U8/U16/U32/U64/I32/I64/F32/F64).
// Go's builtin numeric types stand in for the wire types directly; there is
// no wrapper type the way the Rust source impls PBType for u8/u16/.../f64,
// since Go has no "implement a trait for a foreign type" story and none is
// needed — these are just functions.

func EncodeU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func DecodeU8(r io.Reader) (uint8, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

func EncodeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func DecodeU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func EncodeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func DecodeU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func EncodeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func DecodeU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func EncodeI32(w io.Writer, v int32) error { return EncodeU32(w, uint32(v)) }
func DecodeI32(r io.Reader) (int32, error) { u, err := DecodeU32(r); return int32(u), err }

func EncodeI64(w io.Writer, v int64) error { return EncodeU64(w, uint64(v)) }
func DecodeI64(r io.Reader) (int64, error) { u, err := DecodeU64(r); return int64(u), err }

func EncodeF32(w io.Writer, v float32) error {
	return EncodeU32(w, math.Float32bits(v))
}

func DecodeF32(r io.Reader) (float32, error) {
	u, err := DecodeU32(r)
	return math.Float32frombits(u), err
}

func EncodeF64(w io.Writer, v float64) error {
	return EncodeU64(w, math.Float64bits(v))
}

func DecodeF64(r io.Reader) (float64, error) {
	u, err := DecodeU64(r)
	return math.Float64frombits(u), err
}
