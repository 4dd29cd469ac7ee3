// Package timeconv normalizes loosely-typed date values into time.Time.
//
// Stored documents and imported payloads carry dates in several shapes: native
// time values, BSON datetimes, {seconds, nanoseconds} timestamp objects, Unix
// milliseconds, RFC 3339 strings and bare calendar dates. Everything is converted
// here, at the store boundary, so the domain only ever sees time.Time.
package timeconv

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnsupported is returned for values that cannot be interpreted as a date.
var ErrUnsupported = errors.New("unsupported date value")

// DateLayout is the bare calendar date format accepted on input and used for display.
const DateLayout = "2006-01-02"

// Normalize converts v into a time.Time in loc. A nil loc means UTC.
// Bare calendar dates are interpreted as midnight in loc.
func Normalize(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch x := v.(type) {
	case time.Time:
		return checkZero(x.In(loc))
	case *time.Time:
		if x == nil {
			return time.Time{}, ErrUnsupported
		}
		return checkZero(x.In(loc))
	case primitive.DateTime:
		return x.Time().In(loc), nil
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).In(loc), nil
	case string:
		return ParseString(x, loc)
	case int64:
		return time.UnixMilli(x).In(loc), nil
	case int:
		return time.UnixMilli(int64(x)).In(loc), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, ErrUnsupported
		}
		return time.UnixMilli(int64(x)).In(loc), nil
	case map[string]any:
		return fromTimestampObject(x, loc)
	case primitive.M:
		return fromTimestampObject(map[string]any(x), loc)
	case primitive.D:
		return fromTimestampObject(x.Map(), loc)
	}
	return time.Time{}, fmt.Errorf("%T: %w", v, ErrUnsupported)
}

// ParseString parses RFC 3339 (with or without fractional seconds) or a bare date.
func ParseString(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty string: %w", ErrUnsupported)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, ErrUnsupported)
}

// fromTimestampObject reads {seconds, nanoseconds} objects, also accepting the
// underscore-prefixed field names some exporters emit.
func fromTimestampObject(m map[string]any, loc *time.Location) (time.Time, error) {
	secRaw, ok := lookup(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("object without seconds: %w", ErrUnsupported)
	}
	sec, ok := toInt64(secRaw)
	if !ok {
		return time.Time{}, fmt.Errorf("seconds %T: %w", secRaw, ErrUnsupported)
	}
	var nsec int64
	if nsRaw, ok := lookup(m, "nanoseconds", "_nanoseconds"); ok {
		if nsec, ok = toInt64(nsRaw); !ok {
			return time.Time{}, fmt.Errorf("nanoseconds %T: %w", nsRaw, ErrUnsupported)
		}
	}
	return time.Unix(sec, nsec).In(loc), nil
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func checkZero(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("zero time: %w", ErrUnsupported)
	}
	return t, nil
}
