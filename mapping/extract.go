package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Extractor pulls one value out of a raw object. It reports ok=false when
// the object carries no usable value, which is never an error by itself.
// Extractors must not fail on a missing key.
type Extractor[V any] func(s *Scope, raw Raw) (v V, ok bool, err error)

// Scalar lists the types As and List can convert raw values into.
type Scalar interface {
	string | int | int64 | float64 | bool
}

// Field returns the raw value at key. JSON null counts as absent.
func Field(key string) Extractor[any] {
	return func(_ *Scope, raw Raw) (any, bool, error) {
		v, ok := raw[key]
		if !ok || v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
}

// Path returns the raw value found by descending through nested objects.
// Any missing step makes the value absent; a step that is not an object is
// an error.
func Path(keys ...string) Extractor[any] {
	return func(_ *Scope, raw Raw) (any, bool, error) {
		var cur any = raw
		for i, k := range keys {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false, fmt.Errorf("%s: expected object, got %T", strings.Join(keys[:i], "."), cur)
			}
			cur, ok = m[k]
			if !ok || cur == nil {
				return nil, false, nil
			}
		}
		return cur, true, nil
	}
}

// Convert coerces the output of ext to V.
func Convert[V Scalar](ext Extractor[any]) Extractor[V] {
	return func(s *Scope, raw Raw) (V, bool, error) {
		var zero V
		v, ok, err := ext(s, raw)
		if err != nil || !ok {
			return zero, false, err
		}
		out, err := coerce[V](v)
		if err != nil {
			return zero, false, err
		}
		return out, true, nil
	}
}

// As returns the value at key coerced to V: numbers are cast, strings are
// parsed. A value that cannot be converted is an error.
func As[V Scalar](key string) Extractor[V] {
	return Convert[V](Field(key))
}

// StringID returns the identifier at key as a string. Identifiers arrive as
// JSON numbers in some payloads and as strings in others; comparing them
// only works once both sides are strings.
func StringID(key string) Extractor[string] {
	return PathID(key)
}

// PathID is StringID for an identifier nested under keys.
func PathID(keys ...string) Extractor[string] {
	ext := Path(keys...)
	return func(s *Scope, raw Raw) (string, bool, error) {
		v, ok, err := ext(s, raw)
		if err != nil || !ok {
			return "", false, err
		}
		if _, isBool := v.(bool); isBool {
			return "", false, &CoercionError{Value: v, Want: "identifier"}
		}
		id, err := toString(v)
		if err != nil {
			return "", false, err
		}
		return id, true, nil
	}
}

// Mapped returns fn applied to the value at key. The raw value must be an S.
func Mapped[S, V any](key string, fn func(S) (V, error)) Extractor[V] {
	return func(_ *Scope, raw Raw) (V, bool, error) {
		var zero V
		v, ok := raw[key]
		if !ok || v == nil {
			return zero, false, nil
		}
		in, ok := v.(S)
		if !ok {
			return zero, false, fmt.Errorf("%s: expected %T, got %T", key, *new(S), v)
		}
		out, err := fn(in)
		if err != nil {
			return zero, false, fmt.Errorf("%s: %w", key, err)
		}
		return out, true, nil
	}
}

// ListMapped returns fn applied to every element of the list at key.
func ListMapped[S, V any](key string, fn func(S) (V, error)) Extractor[[]V] {
	return func(_ *Scope, raw Raw) ([]V, bool, error) {
		list, ok, err := listAt(raw, key)
		if err != nil || !ok {
			return nil, false, err
		}
		out := make([]V, 0, len(list))
		for i, e := range list {
			in, ok := e.(S)
			if !ok {
				return nil, false, fmt.Errorf("%s[%d]: expected %T, got %T", key, i, *new(S), e)
			}
			v, err := fn(in)
			if err != nil {
				return nil, false, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			out = append(out, v)
		}
		return out, true, nil
	}
}

// List returns the list at key with every element coerced to V.
func List[V Scalar](key string) Extractor[[]V] {
	return ListMapped(key, coerce[V])
}

// Nested maps the object at key to a T using the registered definition.
// Failures of the nested mapping, including missing required fields, are
// returned to the enclosing property.
func Nested[T any](key string) Extractor[T] {
	return NestedWith[T](key, nil)
}

// NestedWith is Nested with an explicit definition.
func NestedWith[T any](key string, def *Definition[T]) Extractor[T] {
	return func(s *Scope, raw Raw) (T, bool, error) {
		var zero T
		v, ok := raw[key]
		if !ok || v == nil {
			return zero, false, nil
		}
		m, ok := v.(map[string]any)
		if !ok {
			return zero, false, fmt.Errorf("%s: expected object, got %T", key, v)
		}
		out, err := record[T](s, m, def)
		if err != nil {
			return zero, false, err
		}
		return out, true, nil
	}
}

// ListOf maps every object in the list at key to a T, keeping source order.
func ListOf[T any](key string) Extractor[[]T] {
	return func(s *Scope, raw Raw) ([]T, bool, error) {
		list, ok, err := listAt(raw, key)
		if err != nil || !ok {
			return nil, false, err
		}
		out := make([]T, 0, len(list))
		for i, e := range list {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, false, fmt.Errorf("%s[%d]: expected object, got %T", key, i, e)
			}
			rec, err := record[T](s, m, nil)
			if err != nil {
				return nil, false, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			out = append(out, rec)
		}
		return out, true, nil
	}
}

// Datetime returns the epoch timestamp at key as a UTC time. Seconds may be
// a JSON number or a numeric string, with an optional fractional part.
func Datetime(key string) Extractor[time.Time] {
	return func(_ *Scope, raw Raw) (time.Time, bool, error) {
		v, ok := raw[key]
		if !ok || v == nil {
			return time.Time{}, false, nil
		}
		secs, err := toFloat64(v)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%s: %w", key, err)
		}
		return epoch(secs), true, nil
	}
}

func epoch(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

func listAt(raw Raw, key string) ([]any, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false, fmt.Errorf("%s: expected list, got %T", key, v)
	}
	return list, true, nil
}

func coerce[V Scalar](v any) (V, error) {
	var out V
	var err error
	switch p := any(&out).(type) {
	case *string:
		*p, err = toString(v)
	case *int:
		var n int64
		n, err = toInt64(v)
		if err == nil && (n < math.MinInt || n > math.MaxInt) {
			err = &CoercionError{Value: v, Want: "int", Err: errOutOfRange}
		}
		if err == nil {
			*p = int(n)
		}
	case *int64:
		*p, err = toInt64(v)
	case *float64:
		*p, err = toFloat64(v)
	case *bool:
		*p, err = toBool(v)
	}
	return out, err
}

var (
	errNotScalar  = errors.New("not a scalar")
	errOutOfRange = errors.New("out of range")
	errFraction   = errors.New("has a fractional part")
)

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", &CoercionError{Value: v, Want: "string", Err: errNotScalar}
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		return floatToInt64(v, x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &CoercionError{Value: v, Want: "integer", Err: err}
		}
		return floatToInt64(v, f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, &CoercionError{Value: v, Want: "integer", Err: err}
		}
		return n, nil
	}
	return 0, &CoercionError{Value: v, Want: "integer", Err: errNotScalar}
}

// floatToInt64 accepts only integral values inside the int64 range.
func floatToInt64(v any, f float64) (int64, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0) || f < -1<<63 || f >= 1<<63:
		return 0, &CoercionError{Value: v, Want: "integer", Err: errOutOfRange}
	case f != math.Trunc(f):
		return 0, &CoercionError{Value: v, Want: "integer", Err: errFraction}
	}
	return int64(f), nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, &CoercionError{Value: v, Want: "number", Err: err}
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, &CoercionError{Value: v, Want: "number", Err: err}
		}
		return f, nil
	}
	return 0, &CoercionError{Value: v, Want: "number", Err: errNotScalar}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, &CoercionError{Value: v, Want: "bool", Err: err}
		}
		return b, nil
	case float64, int, int64, json.Number:
		f, err := toFloat64(x)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
	return false, &CoercionError{Value: v, Want: "bool", Err: errNotScalar}
}
