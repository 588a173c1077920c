package bencode

import "errors"

var (
	// ErrUnsupportedType is returned when a value has no bencode representation.
	ErrUnsupportedType = errors.New("bencode: unsupported type")

	// ErrTypeMismatch is returned by the typed entry points when handed the wrong kind of value.
	ErrTypeMismatch = errors.New("bencode: type mismatch")

	// ErrDuplicateKey is returned when two dictionary keys collide once coerced to byte strings.
	ErrDuplicateKey = errors.New("bencode: duplicate dictionary key")

	// ErrUnknownConfigKey is returned when a config file sets a key Config does not define.
	ErrUnknownConfigKey = errors.New("bencode: unknown config key")
)
