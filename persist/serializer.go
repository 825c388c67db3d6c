package persist

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"
)

// Serializer converts cell values to and from their stored string form.
type Serializer[T any] struct {
	ToStr   func(T) string
	FromStr func(string) (T, error)
}

var (
	Bool = Serializer[bool]{
		ToStr:   strconv.FormatBool,
		FromStr: strconv.ParseBool,
	}

	Int = Serializer[int]{
		ToStr:   strconv.Itoa,
		FromStr: strconv.Atoi,
	}

	BigInt = Serializer[*big.Int]{
		ToStr: func(n *big.Int) string { return n.String() },
		FromStr: func(s string) (*big.Int, error) {
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			return n, nil
		},
	}

	Float = Serializer[float64]{
		ToStr:   func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
		FromStr: func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
	}

	String = Serializer[string]{
		ToStr:   func(s string) string { return s },
		FromStr: func(s string) (string, error) { return s, nil },
	}
)

var jsonOptions = &ojg.Options{Sort: true}

// Array stores a slice as a JSON array of the element strings.
func Array[T any](conv Serializer[T]) Serializer[[]T] {
	return Serializer[[]T]{
		ToStr: func(ts []T) string {
			return oj.JSON(lo.Map(ts, func(t T, _ int) any { return conv.ToStr(t) }), jsonOptions)
		},
		FromStr: func(s string) ([]T, error) {
			items, err := parseArray(s)
			if err != nil {
				return nil, err
			}
			return decodeAll(items, conv)
		},
	}
}

// Object stores a string-keyed map as a JSON object of the value strings.
func Object[T any](conv Serializer[T]) Serializer[map[string]T] {
	return Map(String, conv)
}

// Map stores a map as a JSON object, encoding keys with keys and values with
// values.
func Map[K comparable, V any](keys Serializer[K], values Serializer[V]) Serializer[map[K]V] {
	return Serializer[map[K]V]{
		ToStr: func(m map[K]V) string {
			obj := make(map[string]any, len(m))
			for k, v := range m {
				obj[keys.ToStr(k)] = values.ToStr(v)
			}
			return oj.JSON(obj, jsonOptions)
		},
		FromStr: func(s string) (map[K]V, error) {
			v, err := oj.ParseString(s)
			if err != nil {
				return nil, err
			}
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected a JSON object, got %T", v)
			}

			m := make(map[K]V, len(obj))
			for ks, vs := range obj {
				str, ok := vs.(string)
				if !ok {
					return nil, fmt.Errorf("key %q: expected a string, got %T", ks, vs)
				}
				k, err := keys.FromStr(ks)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", ks, err)
				}
				if m[k], err = values.FromStr(str); err != nil {
					return nil, fmt.Errorf("key %q: %w", ks, err)
				}
			}
			return m, nil
		},
	}
}

// Set stores a set as a sorted JSON array of the element strings.
func Set[T comparable](conv Serializer[T]) Serializer[map[T]struct{}] {
	return Serializer[map[T]struct{}]{
		ToStr: func(set map[T]struct{}) string {
			items := lo.MapToSlice(set, func(t T, _ struct{}) string { return conv.ToStr(t) })
			slices.Sort(items)
			return oj.JSON(lo.ToAnySlice(items), jsonOptions)
		},
		FromStr: func(s string) (map[T]struct{}, error) {
			items, err := parseArray(s)
			if err != nil {
				return nil, err
			}
			ts, err := decodeAll(items, conv)
			if err != nil {
				return nil, err
			}
			return lo.Keyify(ts), nil
		},
	}
}

func parseArray(s string) ([]any, error) {
	v, err := oj.ParseString(s)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	return items, nil
}

func decodeAll[T any](items []any, conv Serializer[T]) ([]T, error) {
	ts := make([]T, len(items))
	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a string, got %T", i, item)
		}
		t, err := conv.FromStr(str)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		ts[i] = t
	}
	return ts, nil
}
