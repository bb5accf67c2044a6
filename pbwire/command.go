package pbwire

import (
	"bytes"
	"io"
)

// EncodeCommandID/DecodeCommandID frame the leading big-endian U32 command
// id that precedes every command's argument body on the wire (spec §4.7
// "Commands on the wire").
func EncodeCommandID(w io.Writer, id uint32) error { return EncodeU32(w, id) }
func DecodeCommandID(r io.Reader) (uint32, error)  { return DecodeU32(r) }

// EncodeExtensionTail writes a struct's trailing extension-flags envelope
// (spec §4.7 "Structs"): if sealed is true, or there are no extension
// bytes to write, it writes a zero-length Bytes tail; otherwise it wraps
// extBytes (the already-serialized extension flag values, in declaration
// order) in a length-prefixed Bytes container.
func EncodeExtensionTail(w io.Writer, sealed bool, extBytes []byte) error {
	if sealed {
		return EncodeBytes(w, nil)
	}
	return EncodeBytes(w, extBytes)
}

// DecodeExtensionTail reads a struct's trailing extension envelope and
// returns its raw contents; callers interpret those bytes against whatever
// extension flags their own schema version knows about, tolerating newer
// producers that wrote more than the reader understands.
func DecodeExtensionTail(r io.Reader) ([]byte, error) { return DecodeBytes(r) }

// EncodeEnumDiscriminant/DecodeEnumDiscriminant frame an enum's leading u8
// discriminant (spec §4.7 "Enums").
func EncodeEnumDiscriminant(w io.Writer, d uint8) error { return EncodeU8(w, d) }
func DecodeEnumDiscriminant(r io.Reader) (uint8, error) { return DecodeU8(r) }

// EncodeExtensionVariant wraps an @extension enum variant's serialized
// value in a Bytes envelope, or writes UInt(0) for a value-less variant
// (spec §4.7: "An @extension variant wraps its value in a Bytes envelope;
// a skipped extension writes UInt(0)").
func EncodeExtensionVariant(w io.Writer, hasValue bool, encodeValue func(io.Writer) error) error {
	if !hasValue {
		return UInt(0).Encode(w)
	}
	var buf bytes.Buffer
	if err := encodeValue(&buf); err != nil {
		return err
	}
	return EncodeBytes(w, buf.Bytes())
}

// DecodeExtensionVariant reads an @extension variant's Bytes envelope and
// returns its raw payload (empty for a value-less variant); callers decode
// the payload with decodeValue only when they recognize this discriminant.
func DecodeExtensionVariant(r io.Reader) ([]byte, error) { return DecodeBytes(r) }

// UnexpectedErrorDiscriminant is the implicit discriminant 0 reserved on
// every command error enum for UnexpectedError(String); declared error
// variants start at discriminant 1 (spec §4.7 "Command errors").
const UnexpectedErrorDiscriminant uint8 = 0

// CommandError is the decoded form of a command's error enum: either the
// implicit UnexpectedError(String), or a declared variant identified by its
// discriminant with its raw (still-undecoded, in case it was wrapped in an
// extension envelope) payload.
type CommandError struct {
	Discriminant uint8
	Unexpected   string
	Payload      []byte
}

// EncodeUnexpectedError writes the implicit discriminant-0 error variant.
func EncodeUnexpectedError(w io.Writer, message string) error {
	if err := EncodeEnumDiscriminant(w, UnexpectedErrorDiscriminant); err != nil {
		return err
	}
	return EncodeString(w, message)
}
