package pbwire

import (
	"fmt"
	"io"
)

// EncodeArray writes a UInt length prefix followed by each element encoded
// via encodeElem, in order (spec §4.7: "Array<T>: UInt length followed by
// length serialized Ts"). Go generics stand in for the original's generic
// PBType impl over Vec<T>.
func EncodeArray[T any](w io.Writer, elems []T, encodeElem func(io.Writer, T) error) error {
	if err := UInt(len(elems)).Encode(w); err != nil {
		return err
	}
	for _, e := range elems {
		if err := encodeElem(w, e); err != nil {
			return err
		}
	}
	return nil
}

// DecodeArray reads a UInt length prefix and then that many elements via
// decodeElem, erroring if the declared length exceeds MaxArrayLength (spec
// §8 property: "Arrays longer than MaxArrayLength must be rejected during
// deserialization").
func DecodeArray[T any](r io.Reader, decodeElem func(io.Reader) (T, error)) ([]T, error) {
	n, err := DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(MaxArrayLength) {
		return nil, fmt.Errorf("pbwire: Array length %d exceeds MaxArrayLength %d", n, MaxArrayLength)
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < uint64(n); i++ {
		e, err := decodeElem(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
