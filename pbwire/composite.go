package pbwire

import "io"

// EncodeBoolean/DecodeBoolean implement the builtin Boolean type: a single
// byte, 0 or 1 (spec §6: common schema defines Boolean as a @builtin type).
func EncodeBoolean(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return EncodeU8(w, b)
}

func DecodeBoolean(r io.Reader) (bool, error) {
	b, err := DecodeU8(r)
	return b != 0, err
}

// EncodeDone/DecodeDone implement the builtin zero-width Done type, used as
// a command argument/return placeholder when no data is carried.
func EncodeDone(w io.Writer) error { return nil }
func DecodeDone(r io.Reader) error { return nil }

// EncodeOptional/DecodeOptional implement the builtin Optional<T>: a
// Boolean presence flag followed by the value iff present.
func EncodeOptional[T any](w io.Writer, v *T, encodeElem func(io.Writer, T) error) error {
	if v == nil {
		return EncodeBoolean(w, false)
	}
	if err := EncodeBoolean(w, true); err != nil {
		return err
	}
	return encodeElem(w, *v)
}

func DecodeOptional[T any](r io.Reader, decodeElem func(io.Reader) (T, error)) (*T, error) {
	present, err := DecodeBoolean(r)
	if err != nil || !present {
		return nil, err
	}
	v, err := decodeElem(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// EncodeKeyPair/DecodeKeyPair implement the builtin KeyPair<K,V>: the key
// followed by the value, struct field order rules (spec §4.7 "Structs").
func EncodeKeyPair[K, V any](w io.Writer, key K, val V, encodeKey func(io.Writer, K) error, encodeVal func(io.Writer, V) error) error {
	if err := encodeKey(w, key); err != nil {
		return err
	}
	return encodeVal(w, val)
}

func DecodeKeyPair[K, V any](r io.Reader, decodeKey func(io.Reader) (K, error), decodeVal func(io.Reader) (V, error)) (K, V, error) {
	var zeroK K
	var zeroV V
	k, err := decodeKey(r)
	if err != nil {
		return zeroK, zeroV, err
	}
	v, err := decodeVal(r)
	if err != nil {
		return zeroK, zeroV, err
	}
	return k, v, nil
}

// Pair is the decoded form of a KeyPair<K,V>, used as Map<K,V>'s element
// type (the builtin schema defines Map<K,V> as Array<KeyPair<K,V>>).
type Pair[K, V any] struct {
	Key K
	Val V
}

func EncodeMap[K, V any](w io.Writer, m []Pair[K, V], encodeKey func(io.Writer, K) error, encodeVal func(io.Writer, V) error) error {
	return EncodeArray(w, m, func(w io.Writer, p Pair[K, V]) error {
		return EncodeKeyPair(w, p.Key, p.Val, encodeKey, encodeVal)
	})
}

func DecodeMap[K, V any](r io.Reader, decodeKey func(io.Reader) (K, error), decodeVal func(io.Reader) (V, error)) ([]Pair[K, V], error) {
	return DecodeArray(r, func(r io.Reader) (Pair[K, V], error) {
		k, v, err := DecodeKeyPair(r, decodeKey, decodeVal)
		return Pair[K, V]{Key: k, Val: v}, err
	})
}
