package bencode

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

type entry struct {
	key   string
	value any
}

// container is an inspected slice, array or map. entries are in index order
// when dense, otherwise in byte-wise key order.
type container struct {
	typ     string
	entries []entry
	keyed   bool // map keyed by a string kind; never a list
	dense   bool // keys are exactly 0..len(entries)-1
}

func toInteger(data any) (Integer, bool) {
	switch n := data.(type) {
	case Integer:
		return n, true
	case *big.Int:
		if n == nil {
			return Integer{}, false
		}
		return BigInt(n), true
	case json.Number:
		return parseIntegerLiteral(string(n))
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), true
	}
	return Integer{}, false
}

// parseIntegerLiteral accepts a decimal literal without a fraction or
// exponent, of any magnitude.
func parseIntegerLiteral(s string) (Integer, bool) {
	if strings.ContainsAny(s, ".eE") {
		return Integer{}, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Integer{}, false
	}
	return BigInt(n), true
}

func toByteString(data any) (ByteString, bool) {
	switch s := data.(type) {
	case ByteString:
		return s, true
	case json.Number:
		return nil, false
	case string:
		return ByteString(s), true
	case []byte:
		return ByteString(s), true
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.String:
		return ByteString(rv.String()), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return ByteString(rv.Bytes()), true
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return ByteString(b), true
		}
	}
	return nil, false
}

// inspect reports whether data is a container and, if so, lists its entries.
// A non-nil error means data is a container whose keys cannot be coerced.
func inspect(data any) (container, bool, error) {
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return container{}, false, nil
		}
		return inspectSequence(rv), true, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return inspectStringMap(rv), true, nil
		}
		c, err := inspectAmbiguousMap(rv)
		return c, true, err
	}
	return container{}, false, nil
}

func inspectSequence(rv reflect.Value) container {
	c := container{
		typ:     rv.Type().String(),
		entries: make([]entry, rv.Len()),
		dense:   true,
	}
	for i := range c.entries {
		c.entries[i] = entry{key: strconv.Itoa(i), value: rv.Index(i).Interface()}
	}
	return c
}

func inspectStringMap(rv reflect.Value) container {
	c := container{
		typ:     rv.Type().String(),
		entries: make([]entry, 0, rv.Len()),
		keyed:   true,
	}
	iter := rv.MapRange()
	for iter.Next() {
		c.entries = append(c.entries, entry{key: iter.Key().String(), value: iter.Value().Interface()})
	}
	sortEntries(c.entries)
	return c
}

// inspectAmbiguousMap handles maps keyed by integers or interfaces. Such a
// map is a list when its keys are integers forming exactly 0..n-1.
func inspectAmbiguousMap(rv reflect.Value) (container, error) {
	c := container{typ: rv.Type().String()}
	n := rv.Len()

	if slots, ok := denseSlots(rv); ok {
		c.dense = true
		c.entries = make([]entry, n)
		for i, key := range slots {
			c.entries[i] = entry{key: strconv.Itoa(i), value: rv.MapIndex(key).Interface()}
		}
		return c, nil
	}

	c.entries = make([]entry, 0, n)
	seen := make(map[string]struct{}, n)
	iter := rv.MapRange()
	for iter.Next() {
		key, err := coerceKey(iter.Key())
		if err != nil {
			return container{}, err
		}
		if _, dup := seen[key]; dup {
			return container{}, fmt.Errorf("%w: '%s' in %s", ErrDuplicateKey, key, c.typ)
		}
		seen[key] = struct{}{}
		c.entries = append(c.entries, entry{key: key, value: iter.Value().Interface()})
	}
	sortEntries(c.entries)
	return c, nil
}

// denseSlots returns the map keys ordered by index when every key is an
// integer and together they cover 0..n-1 with none missing.
func denseSlots(rv reflect.Value) ([]reflect.Value, bool) {
	n := rv.Len()
	slots := make([]reflect.Value, n)
	iter := rv.MapRange()
	for iter.Next() {
		idx, ok := keyIndex(iter.Key())
		if !ok || idx < 0 || idx >= int64(n) || slots[idx].IsValid() {
			return nil, false
		}
		slots[idx] = iter.Key()
	}
	return slots, true
}

func keyIndex(key reflect.Value) (int64, bool) {
	key = unwrap(key)
	switch key.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return key.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := key.Uint(); u <= 1<<63-1 {
			return int64(u), true
		}
	}
	return 0, false
}

func coerceKey(key reflect.Value) (string, error) {
	key = unwrap(key)
	switch key.Kind() {
	case reflect.String:
		return key.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(key.Uint(), 10), nil
	case reflect.Array:
		if key.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, key.Len())
			reflect.Copy(reflect.ValueOf(b), key)
			return string(b), nil
		}
	case reflect.Invalid:
		return "", fmt.Errorf("%w: <nil> dictionary key", ErrUnsupportedType)
	}
	return "", fmt.Errorf("%w: %s dictionary key", ErrUnsupportedType, key.Type())
}

func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func sortEntries(entries []entry) {
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})
}
