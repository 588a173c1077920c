package bencode_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParamvirSran/gobencode/internal/bencode"
	"github.com/ParamvirSran/gobencode/internal/decode"
)

func TestRoundTrip(t *testing.T) {
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)

	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"integer", 42, int64(42)},
		{"negative integer", -7, int64(-7)},
		{"big integer", huge, huge},
		{"string", "spam", "spam"},
		{"binary string", []byte{0, 1, 2, 0xfe, 0xff}, "\x00\x01\x02\xfe\xff"},
		{"unicode string", "ünïcödé", "ünïcödé"},
		{"list", []any{1, "a", []any{}}, []any{int64(1), "a", []any{}}},
		{
			"dictionary",
			map[string]any{"b": 1, "a": []any{"x"}},
			map[string]any{"a": []any{"x"}, "b": int64(1)},
		},
		{
			"ambiguous containers",
			map[string]any{"dense": map[int]any{1: "b", 0: "a"}, "sparse": map[int]any{5: "f"}},
			map[string]any{"dense": []any{"a", "b"}, "sparse": map[string]any{"5": "f"}},
		},
		{
			"torrent-like",
			map[string]any{
				"announce": "http://tracker.example/announce",
				"info": map[string]any{
					"name":         "file.bin",
					"piece length": 262144,
					"pieces":       []byte{0xde, 0xad, 0xbe, 0xef},
					"length":       int64(1 << 33),
				},
			},
			map[string]any{
				"announce": "http://tracker.example/announce",
				"info": map[string]any{
					"name":         "file.bin",
					"piece length": int64(262144),
					"pieces":       "\xde\xad\xbe\xef",
					"length":       int64(1 << 33),
				},
			},
		},
	}

	enc := bencode.NewEncoder()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encoded, err := enc.Encode(test.input)
			require.NoError(t, err)

			decoded, err := decode.DecodeBytes(encoded)
			require.NoError(t, err, "encoded form %q", encoded)
			assert.Equal(t, test.expected, decoded)

			again, err := enc.Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, encoded, again, "re-encoding a decoded value must be byte-identical")
		})
	}
}

func TestEmptyContainerRoundTripUsesFlag(t *testing.T) {
	enc := bencode.NewEncoder().SetEncodeEmptyArrayAsDictionary(true)

	encoded, err := enc.Encode([]any{})
	require.NoError(t, err)

	decoded, err := decode.DecodeBytes(encoded)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, decoded)
}
