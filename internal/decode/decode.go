// Package decode is a strict bencode decoder used to check encoder output.
// It rejects anything that is not canonical: leading zeros, negative zero,
// unsorted or repeated dictionary keys.
package decode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

var (
	ErrInvalidPrefix  = errors.New("decode: invalid prefix")
	ErrInvalidInteger = errors.New("decode: invalid integer")
	ErrInvalidLength  = errors.New("decode: invalid string length")
	ErrUnsortedKeys   = errors.New("decode: dictionary keys not strictly ascending")
	ErrTrailingData   = errors.New("decode: trailing data")
)

// Decode reads one value from r. Integers decode to int64, or *big.Int when
// they do not fit; strings to string; lists to []any; dictionaries to
// map[string]any. r is wrapped in a bufio.Reader unless it already is one,
// so bytes past the value may be consumed.
func Decode(r io.Reader) (any, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return decodeValue(br)
}

// DecodeBytes decodes data, which must hold exactly one value.
func DecodeBytes(data []byte) (any, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	v, err := decodeValue(br)
	if err != nil {
		return nil, err
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(r *bufio.Reader) (any, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("error reading bencode prefix: %w", err)
	}

	switch {
	case b == 'i':
		return decodeInt(r)
	case b == 'l':
		return decodeList(r)
	case b == 'd':
		return decodeDict(r)
	case b >= '0' && b <= '9':
		if err := r.UnreadByte(); err != nil {
			return nil, err
		}
		return decodeString(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, b)
	}
}

func decodeInt(r *bufio.Reader) (any, error) {
	token, err := r.ReadString('e')
	if err != nil {
		return nil, fmt.Errorf("error reading integer: %w", err)
	}
	digits := token[:len(token)-1]
	if !canonicalInteger(digits) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInteger, digits)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err == nil {
		return n, nil
	}
	wide, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInteger, digits)
	}
	return wide, nil
}

func canonicalInteger(s string) bool {
	if s == "0" {
		return true
	}
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if s == "" || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func decodeString(r *bufio.Reader) (string, error) {
	token, err := r.ReadString(':')
	if err != nil {
		return "", fmt.Errorf("error reading string length: %w", err)
	}
	digits := token[:len(token)-1]
	if digits != "0" && (digits == "" || digits[0] == '0') {
		return "", fmt.Errorf("%w: %q", ErrInvalidLength, digits)
	}

	length, err := strconv.Atoi(digits)
	if err != nil || length < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidLength, digits)
	}

	// Grow with the bytes actually read; the prefix may be arbitrarily large.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(length)); err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("%w: %d bytes declared, %d available", ErrInvalidLength, length, buf.Len())
		}
		return "", fmt.Errorf("error reading string with parsed length: %w", err)
	}
	return buf.String(), nil
}

func decodeList(r *bufio.Reader) ([]any, error) {
	result := make([]any, 0)
	for {
		done, err := atEnd(r)
		if err != nil {
			return nil, fmt.Errorf("error reading list: %w", err)
		}
		if done {
			return result, nil
		}

		val, err := decodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("error reading list item: %w", err)
		}
		result = append(result, val)
	}
}

func decodeDict(r *bufio.Reader) (map[string]any, error) {
	result := make(map[string]any)
	var prev *string
	for {
		done, err := atEnd(r)
		if err != nil {
			return nil, fmt.Errorf("error reading dictionary key prefix: %w", err)
		}
		if done {
			return result, nil
		}

		prefix, err := r.Peek(1)
		if err != nil {
			return nil, fmt.Errorf("error reading dictionary key prefix: %w", err)
		}
		if prefix[0] < '0' || prefix[0] > '9' {
			return nil, fmt.Errorf("%w: dictionary key starts with %q", ErrInvalidPrefix, prefix[0])
		}

		key, err := decodeString(r)
		if err != nil {
			return nil, fmt.Errorf("error reading dictionary key: %w", err)
		}
		if prev != nil && key <= *prev {
			return nil, fmt.Errorf("%w: '%s' after '%s'", ErrUnsortedKeys, key, *prev)
		}
		prev = &key

		val, err := decodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("error reading dictionary value for key '%s': %w", key, err)
		}
		result[key] = val
	}
}

// atEnd consumes the closing 'e' of a list or dictionary if it is next.
func atEnd(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(1)
	if err != nil {
		return false, err
	}
	if b[0] != 'e' {
		return false, nil
	}
	_, err = r.Discard(1)
	return true, err
}
