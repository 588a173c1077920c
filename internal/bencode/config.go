package bencode

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the encoder's behavioral options.
type Config struct {
	// EncodeEmptyArrayAsDictionary encodes an empty ambiguous container as
	// "de" instead of "le".
	EncodeEmptyArrayAsDictionary bool `toml:"encode_empty_array_as_dictionary"`
}

func DefaultConfig() Config {
	return Config{}
}

// LoadConfig reads a TOML config file. Keys absent from the file keep their
// defaults; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load bencode config: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig is LoadConfig for an in-memory TOML document.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse bencode config: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkUndecoded(meta toml.MetaData) error {
	if keys := meta.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, keys[0].String())
	}
	return nil
}
