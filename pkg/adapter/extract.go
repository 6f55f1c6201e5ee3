package adapter

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// safeExtract runs fn and turns a panic or an empty result into the sentinel
func safeExtract(fn func() string) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = UnknownErrorMessage
		}
	}()

	msg = fn()
	if strings.TrimSpace(msg) == "" {
		msg = UnknownErrorMessage
	}
	return msg
}

// safeMatch runs fn and reports false on panic
func safeMatch(fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return fn()
}

// extractBase is the extraction shared by every adapter: strings verbatim,
// errors via Error(), structured values via the generic message fields.
func extractBase(err any) string {
	switch v := err.(type) {
	case nil:
		return UnknownErrorMessage
	case string:
		if strings.TrimSpace(v) == "" {
			return UnknownErrorMessage
		}
		return v
	case error:
		if msg := v.Error(); msg != "" {
			return msg
		}
		return UnknownErrorMessage
	}

	m, ok := toMap(err)
	if !ok {
		return UnknownErrorMessage
	}
	if msg := messageFromMap(m); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

// messageFromMap checks message, error.message, error (as a string),
// reason and data.message in that order
func messageFromMap(m map[string]any) string {
	for _, path := range [][]string{
		{"message"},
		{"error", "message"},
		{"error"},
		{"reason"},
		{"data", "message"},
	} {
		if s := str(m, path...); s != "" {
			return s
		}
	}
	return ""
}

// messageOf returns the text of a string or error, and false for anything else
func messageOf(err any) (string, bool) {
	switch v := err.(type) {
	case string:
		return v, true
	case error:
		return v.Error(), true
	default:
		return "", false
	}
}

// toMap normalizes structured values to a generic map. Maps are converted
// with cast, JSON bytes are decoded, structs and pointers go through a JSON
// round trip.
func toMap(err any) (map[string]any, bool) {
	switch v := err.(type) {
	case nil, string, error:
		return nil, false
	case map[string]any:
		return v, true
	case json.RawMessage:
		return decodeJSON(v)
	case []byte:
		return decodeJSON(v)
	}

	if m, e := cast.ToStringMapE(err); e == nil {
		return m, true
	}

	rv := reflect.ValueOf(err)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, false
	}

	data, e := json.Marshal(err)
	if e != nil {
		return nil, false
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// lookup walks a dotted path through nested maps
func lookup(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, key := range path {
		next, err := cast.ToStringMapE(cur)
		if err != nil {
			return nil, false
		}
		v, ok := next[key]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, cur != nil
}

// has reports whether the path exists
func has(m map[string]any, path ...string) bool {
	_, ok := lookup(m, path...)
	return ok
}

// str reads a scalar at path as a trimmed string, "" for maps, slices and
// missing values
func str(m map[string]any, path ...string) string {
	v, ok := lookup(m, path...)
	if !ok {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// num reads a numeric value at path. Numeric strings are accepted.
func num(m map[string]any, path ...string) (int64, bool) {
	v, ok := lookup(m, path...)
	if !ok {
		return 0, false
	}
	switch v.(type) {
	case bool, map[string]any, []any:
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// containsAny reports whether s contains one of the substrings
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasAnyKey reports whether m has one of the top-level keys
func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}
