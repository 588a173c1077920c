package bencode

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInteger(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		input    any
		expected string
	}{
		{123, "i123e"},
		{-456, "i-456e"},
		{0, "i0e"},
		{int8(-7), "i-7e"},
		{uint16(42), "i42e"},
		{int64(math.MaxInt64), "i9223372036854775807e"},
		{int64(math.MinInt64), "i-9223372036854775808e"},
		{uint64(math.MaxUint64), "i18446744073709551615e"},
		{huge, "i123456789012345678901234567890e"},
		{new(big.Int).Neg(huge), "i-123456789012345678901234567890e"},
		{json.Number("98765432109876543210"), "i98765432109876543210e"},
		{json.Number("-3"), "i-3e"},
		{Int(9), "i9e"},
	}

	enc := NewEncoder()
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, err := enc.EncodeInteger(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(result))
		})
	}
}

func TestEncodeIntegerMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"text", "not a number"},
		{"numeric text", "42"},
		{"float", 3.14},
		{"fractional json number", json.Number("3.14")},
		{"exponent json number", json.Number("1e3")},
		{"nil big int", (*big.Int)(nil)},
		{"bool", true},
		{"nil", nil},
	}

	enc := NewEncoder()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := enc.EncodeInteger(test.input)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.ErrorContains(t, err, "expected integer")
			assert.Nil(t, result)
		})
	}
}

func TestEncodeString(t *testing.T) {
	type label string

	tests := []struct {
		input    any
		expected string
	}{
		{"spam", "4:spam"},
		{"", "0:"},
		{"hello", "5:hello"},
		{" ", "1: "},
		{"a\nb", "3:a\nb"},
		{"héllo", "6:héllo"},
		{"日本", "6:日本"},
		{[]byte{0x00, 0xff, 0x10}, "3:\x00\xff\x10"},
		{[3]byte{'a', 'b', 'c'}, "3:abc"},
		{label("named"), "5:named"},
		{ByteString("typed"), "5:typed"},
	}

	enc := NewEncoder()
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, err := enc.EncodeString(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(result))
		})
	}
}

func TestEncodeStringMismatch(t *testing.T) {
	enc := NewEncoder()

	for _, input := range []any{42, []any{"a"}, map[string]any{}, nil, json.Number("7")} {
		result, err := enc.EncodeString(input)
		assert.ErrorIs(t, err, ErrTypeMismatch, "input %#v", input)
		assert.ErrorContains(t, err, "expected string")
		assert.Nil(t, result)
	}
}

func TestEncodeList(t *testing.T) {
	tests := []struct {
		input    any
		expected string
		hasError bool
	}{
		{[]any{123, "spam", []any{"nested", 456}}, "li123e4:spaml6:nestedi456eee", false},
		{[]any{}, "le", false},
		{[]any{"a", "b", "c"}, "l1:a1:b1:ce", false},
		{[]any{"spam", "eggs"}, "l4:spam4:eggse", false},
		{[]any{1, "a"}, "li1e1:ae", false},
		{[]int{3, 1, 2}, "li3ei1ei2ee", false},
		{[2]string{"x", "y"}, "l1:x1:ye", false},
		{map[int]any{2: "c", 0: "a", 1: "b"}, "l1:a1:b1:ce", false},
		{map[string]any{"b": 2, "a": 1}, "li1ei2ee", false},
		{List{Int(1), ByteString("x")}, "li1e1:xe", false},
		{[]any{nil}, "", true},
		{[]any{3.5}, "", true},
	}

	enc := NewEncoder()
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, err := enc.EncodeList(test.input)
			if test.hasError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(result))
		})
	}
}

func TestEncodeListMismatch(t *testing.T) {
	enc := NewEncoder()

	for _, input := range []any{"spam", []byte("spam"), 1, nil} {
		_, err := enc.EncodeList(input)
		assert.ErrorIs(t, err, ErrTypeMismatch, "input %#v", input)
		assert.ErrorContains(t, err, "expected container")
	}
}

func TestEncodeDictionary(t *testing.T) {
	tests := []struct {
		input    any
		expected string
		hasError bool
	}{
		{map[string]any{"cow": "moo", "spam": "eggs"}, "d3:cow3:moo4:spam4:eggse", false},
		{map[string]any{}, "de", false},
		{map[string]any{"key": "value", "nested": map[string]any{"nkey": "nvalue"}}, "d3:key5:value6:nestedd4:nkey6:nvalueee", false},
		{[]any{"a", "b"}, "d1:01:a1:11:be", false},
		{map[int]string{10: "ten", 2: "two"}, "d2:103:ten1:23:twoe", false},
		{map[any]any{"b": 1, 0: "zero"}, "d1:04:zero1:bi1ee", false},
		{map[string]int{"Z": 1, "a": 2}, "d1:Zi1e1:ai2ee", false},
		{Dictionary{"b": Int(2), "a": Int(1)}, "d1:ai1e1:bi2ee", false},
		{map[string]any{"key": nil}, "", true},
		{map[any]any{1: "x", "1": "y"}, "", true},
		{map[any]any{1.5: "x"}, "", true},
	}

	enc := NewEncoder()
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, err := enc.EncodeDictionary(test.input)
			if test.hasError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(result))
		})
	}
}

func TestEncodeDictionaryMismatch(t *testing.T) {
	_, err := NewEncoder().EncodeDictionary("spam")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorContains(t, err, "expected container, got string")
}

func TestEncode(t *testing.T) {
	tests := []struct {
		input    any
		expected string
		hasError bool
	}{
		{123, "i123e", false},
		{"spam", "4:spam", false},
		{[]any{123, "spam", []any{"nested", 456}}, "li123e4:spaml6:nestedi456eee", false},
		{map[string]any{"cow": "moo", "spam": "eggs"}, "d3:cow3:moo4:spam4:eggse", false},
		{map[string]any{"list": []any{1, map[int]any{0: "x"}}}, "d4:listli1el1:xeee", false},
		{3.14, "", true},
		{nil, "", true},
		{true, "", true},
		{struct{}{}, "", true},
		{json.Number("3.14"), "", true},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, err := Encode(test.input)
			if test.hasError {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(result))
		})
	}
}

func TestEncodeUnsupportedNamesType(t *testing.T) {
	_, err := Encode(3.14)
	assert.EqualError(t, err, "bencode: unsupported type: float64")

	_, err = Encode([]any{"ok", 2.5})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.ErrorContains(t, err, "list item 1")
	assert.ErrorContains(t, err, "float64")
}

func TestEncodeSortsKeysByteWise(t *testing.T) {
	dict := map[string]any{
		"b":    1,
		"a":    2,
		"B":    3,
		"ab":   4,
		"\xff": 5,
		"":     6,
	}

	result, err := Encode(dict)
	require.NoError(t, err)
	assert.Equal(t, "d0:i6e1:Bi3e1:ai2e2:abi4e1:bi1e1:\xffi5ee", string(result))
}

func TestEncodeIsDeterministic(t *testing.T) {
	build := func(keys []string) map[string]any {
		m := make(map[string]any, len(keys))
		for i, k := range keys {
			m[k] = []any{i % 2, k}
		}
		return m
	}
	forward := build([]string{"alpha", "beta", "gamma", "delta", "epsilon"})
	backward := build([]string{"epsilon", "delta", "gamma", "beta", "alpha"})
	for k, v := range forward {
		backward[k] = v
	}

	first, err := Encode(forward)
	require.NoError(t, err)
	for n := 0; n < 20; n++ {
		again, err := Encode(backward)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncoderConfigIsCopiedOnSet(t *testing.T) {
	base := NewEncoder()
	flipped := base.SetEncodeEmptyArrayAsDictionary(true)

	assert.False(t, base.Config().EncodeEmptyArrayAsDictionary)
	assert.True(t, flipped.Config().EncodeEmptyArrayAsDictionary)

	result, err := base.Encode([]any{})
	require.NoError(t, err)
	assert.Equal(t, "le", string(result))

	result, err = flipped.Encode([]any{})
	require.NoError(t, err)
	assert.Equal(t, "de", string(result))
}

func TestNewEncoderWithConfig(t *testing.T) {
	enc := NewEncoder(WithConfig(Config{EncodeEmptyArrayAsDictionary: true}))

	result, err := enc.Encode(map[int]any{})
	require.NoError(t, err)
	assert.Equal(t, "de", string(result))

	reset := enc.WithConfig(DefaultConfig())
	result, err = reset.Encode(map[int]any{})
	require.NoError(t, err)
	assert.Equal(t, "le", string(result))
}

func TestEncoderLogsDecisions(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	enc := NewEncoder(WithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)))

	_, err := enc.Encode(map[int]any{1: "b", 0: "a"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"container classified as list"`)
	assert.Contains(t, buf.String(), `"type":"map[int]interface {}"`)

	buf.Reset()
	_, err = enc.EncodeInteger("7")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, buf.String(), `"message":"type mismatch"`)
	assert.Contains(t, buf.String(), `"expected":"integer"`)
}
