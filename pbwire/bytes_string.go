package pbwire

import (
	"fmt"
	"io"
	"strings"
)

// EncodeBytes writes a UInt length prefix followed by the raw bytes (spec
// §4.7: "Bytes: UInt length followed by length bytes").
func EncodeBytes(w io.Writer, b []byte) error {
	if err := UInt(len(b)).Encode(w); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// DecodeBytes reads a UInt length prefix and then that many bytes, erroring
// if the declared length exceeds MaxBytesLength (spec §8 property: "Bytes
// longer than MaxBytesLength must be rejected during deserialization").
func DecodeBytes(r io.Reader) ([]byte, error) {
	n, err := DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(MaxBytesLength) {
		return nil, fmt.Errorf("pbwire: Bytes length %d exceeds MaxBytesLength %d", n, MaxBytesLength)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeString writes a UTF-8 string using the same length-prefixed
// encoding as Bytes (spec §4.7: "String: same as Bytes, UTF-8 encoded").
func EncodeString(w io.Writer, s string) error {
	return EncodeBytes(w, []byte(s))
}

// DecodeString reads a length-prefixed UTF-8 string. Invalid UTF-8 is not
// rejected: like the original's "lossy" decode, each invalid sequence is
// replaced with U+FFFD on read rather than reported as an error.
func DecodeString(r io.Reader) (string, error) {
	b, err := DecodeBytes(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}
