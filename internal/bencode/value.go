package bencode

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
)

// Value is a bencode value: Integer, ByteString, List or Dictionary.
// The set is closed; no other package can implement it.
type Value interface {
	appendBencode(dst []byte) ([]byte, error)
}

// Integer is an arbitrary precision bencode integer. The zero value is 0.
type Integer struct {
	small int64
	big   *big.Int
}

// Int returns n as an Integer.
func Int(n int64) Integer {
	return Integer{small: n}
}

// Uint returns n as an Integer.
func Uint(n uint64) Integer {
	if n <= 1<<63-1 {
		return Integer{small: int64(n)}
	}
	return Integer{big: new(big.Int).SetUint64(n)}
}

// BigInt returns a copy of n as an Integer. A nil n is 0.
func BigInt(n *big.Int) Integer {
	if n == nil {
		return Integer{}
	}
	if n.IsInt64() {
		return Integer{small: n.Int64()}
	}
	return Integer{big: new(big.Int).Set(n)}
}

// Big returns the value of i as a newly allocated big.Int.
func (i Integer) Big() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

func (i Integer) String() string {
	return string(i.appendDigits(nil))
}

func (i Integer) appendDigits(dst []byte) []byte {
	if i.big != nil {
		return i.big.Append(dst, 10)
	}
	return strconv.AppendInt(dst, i.small, 10)
}

func (i Integer) appendBencode(dst []byte) ([]byte, error) {
	dst = append(dst, 'i')
	dst = i.appendDigits(dst)
	return append(dst, 'e'), nil
}

// ByteString is a raw bencode string. Its length prefix counts bytes, not runes.
type ByteString []byte

func (s ByteString) appendBencode(dst []byte) ([]byte, error) {
	return appendString(dst, string(s)), nil
}

func appendString(dst []byte, s string) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}

// List is an ordered bencode list. Elements are emitted in slice order.
type List []Value

func (l List) appendBencode(dst []byte) ([]byte, error) {
	dst = append(dst, 'l')
	for i, item := range l {
		if item == nil {
			return nil, fmt.Errorf("%w: nil value at list index %d", ErrUnsupportedType, i)
		}
		var err error
		dst, err = item.appendBencode(dst)
		if err != nil {
			return nil, fmt.Errorf("error encoding list item %d: %w", i, err)
		}
	}
	return append(dst, 'e'), nil
}

// Dictionary maps byte-string keys to values. Keys are emitted in byte-wise
// ascending order regardless of how the map was built.
type Dictionary map[string]Value

func (d Dictionary) appendBencode(dst []byte) ([]byte, error) {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	dst = append(dst, 'd')
	for _, key := range keys {
		val := d[key]
		if val == nil {
			return nil, fmt.Errorf("%w: nil value for key '%s'", ErrUnsupportedType, key)
		}
		dst = appendString(dst, key)

		var err error
		dst, err = val.appendBencode(dst)
		if err != nil {
			return nil, fmt.Errorf("error encoding dictionary value for key '%s': %w", key, err)
		}
	}
	return append(dst, 'e'), nil
}

// Marshal returns the canonical encoding of v.
func Marshal(v Value) ([]byte, error) {
	return Append(nil, v)
}

// Append appends the canonical encoding of v to dst. On error dst is returned
// unchanged.
func Append(dst []byte, v Value) ([]byte, error) {
	if v == nil {
		return dst, fmt.Errorf("%w: <nil>", ErrUnsupportedType)
	}
	out, err := v.appendBencode(dst)
	if err != nil {
		return dst, err
	}
	return out, nil
}
