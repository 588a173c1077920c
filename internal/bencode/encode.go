package bencode

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ParamvirSran/gobencode/internal/logging"
)

// Encoder turns Go values into canonical bencode. An Encoder is immutable
// once built and safe for concurrent use.
type Encoder struct {
	cfg Config
	log zerolog.Logger
}

type Option func(*Encoder)

func WithConfig(cfg Config) Option {
	return func(e *Encoder) {
		e.cfg = cfg
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Encoder) {
		e.log = logger
	}
}

// NewEncoder returns an encoder using DefaultConfig unless overridden.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		cfg: DefaultConfig(),
		log: logging.Logger("bencode"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEncoder = NewEncoder()

// Encode serializes data with the default configuration.
func Encode(data any) ([]byte, error) {
	return defaultEncoder.Encode(data)
}

func (e *Encoder) Config() Config {
	return e.cfg
}

// WithConfig returns a copy of e using cfg. e itself is not modified.
func (e *Encoder) WithConfig(cfg Config) *Encoder {
	clone := *e
	clone.cfg = cfg
	return &clone
}

// SetEncodeEmptyArrayAsDictionary returns a copy of e with the empty
// container tie-break set to v.
func (e *Encoder) SetEncodeEmptyArrayAsDictionary(v bool) *Encoder {
	cfg := e.cfg
	cfg.EncodeEmptyArrayAsDictionary = v
	return e.WithConfig(cfg)
}

// Encode serializes data into bencode.
//
// Integers (any Go integer kind, *big.Int, integral json.Number) become
// integers, strings and byte slices become byte strings. Slices, arrays and
// maps keyed by integers or interfaces are ambiguous: they encode as a list
// when their keys are exactly 0..n-1 and as a dictionary otherwise. Maps keyed
// by strings are always dictionaries. Only integer-typed keys count as list
// indices: string keys such as "0" and "1" stay strings, so a map keyed by
// them is a dictionary even where other bencode libraries would treat them as
// indices. Anything else fails with ErrUnsupportedType.
func (e *Encoder) Encode(data any) ([]byte, error) {
	v, err := e.Value(data)
	if err != nil {
		return nil, err
	}
	return Marshal(v)
}

// EncodeInteger serializes data, which must be an integer.
func (e *Encoder) EncodeInteger(data any) ([]byte, error) {
	n, ok := toInteger(data)
	if !ok {
		return nil, e.mismatch("integer", data)
	}
	return Marshal(n)
}

// EncodeString serializes data, which must be a string or byte slice.
func (e *Encoder) EncodeString(data any) ([]byte, error) {
	s, ok := toByteString(data)
	if !ok {
		return nil, e.mismatch("string", data)
	}
	return Marshal(s)
}

// EncodeList serializes the values of a container as a list, in the
// container's iteration order. Items are classified independently.
func (e *Encoder) EncodeList(data any) ([]byte, error) {
	c, ok, err := inspect(data)
	if !ok {
		return nil, e.mismatch("container", data)
	}
	if err != nil {
		return nil, err
	}
	list, err := e.toList(c)
	if err != nil {
		return nil, err
	}
	return Marshal(list)
}

// EncodeDictionary serializes a container as a dictionary. Keys are coerced
// to byte strings, integer keys in decimal form.
func (e *Encoder) EncodeDictionary(data any) ([]byte, error) {
	c, ok, err := inspect(data)
	if !ok {
		return nil, e.mismatch("container", data)
	}
	if err != nil {
		return nil, err
	}
	dict, err := e.toDictionary(c)
	if err != nil {
		return nil, err
	}
	return Marshal(dict)
}

// Value converts data into the typed bencode model, applying the same
// classification as Encode. Byte slices in data are shared, not copied.
func (e *Encoder) Value(data any) (Value, error) {
	if v, ok := data.(Value); ok {
		return v, nil
	}
	if n, ok := toInteger(data); ok {
		return n, nil
	}
	if s, ok := toByteString(data); ok {
		return s, nil
	}

	c, ok, err := inspect(data)
	if !ok {
		e.log.Debug().Str("type", fmt.Sprintf("%T", data)).Msg("unencodable value")
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case c.keyed:
		return e.toDictionary(c)
	case len(c.entries) == 0:
		if e.cfg.EncodeEmptyArrayAsDictionary {
			e.log.Trace().Str("type", c.typ).Msg("empty container encoded as dictionary")
			return Dictionary{}, nil
		}
		e.log.Trace().Str("type", c.typ).Msg("empty container encoded as list")
		return List{}, nil
	case c.dense:
		e.log.Trace().Str("type", c.typ).Int("size", len(c.entries)).Msg("container classified as list")
		return e.toList(c)
	default:
		e.log.Trace().Str("type", c.typ).Int("size", len(c.entries)).Msg("container classified as dictionary")
		return e.toDictionary(c)
	}
}

func (e *Encoder) toList(c container) (List, error) {
	list := make(List, len(c.entries))
	for i, entry := range c.entries {
		item, err := e.Value(entry.value)
		if err != nil {
			return nil, fmt.Errorf("error encoding list item %d: %w", i, err)
		}
		list[i] = item
	}
	return list, nil
}

func (e *Encoder) toDictionary(c container) (Dictionary, error) {
	dict := make(Dictionary, len(c.entries))
	for _, entry := range c.entries {
		val, err := e.Value(entry.value)
		if err != nil {
			return nil, fmt.Errorf("error encoding dictionary value for key '%s': %w", entry.key, err)
		}
		dict[entry.key] = val
	}
	return dict, nil
}

func (e *Encoder) mismatch(expected string, data any) error {
	e.log.Debug().Str("expected", expected).Str("type", fmt.Sprintf("%T", data)).Msg("type mismatch")
	return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, expected, data)
}
