package docache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Doc is the plain-data projection of a stored record.
type Doc = map[string]any

// FieldFunc returns the string value of field on v.
// ok is false when the field is missing, nil or empty.
type FieldFunc[V any] func(v V, field string) (value string, ok bool)

// WithPrefix namespaces rawKey under entity: lowercase(entity) + ":" + rawKey.
func WithPrefix(entity, rawKey string) string {
	return strings.ToLower(entity) + ":" + rawKey
}

// DocField reads field from d and renders it as a key string.
func DocField(d Doc, field string) (string, bool) {
	if d == nil {
		return "", false
	}
	raw, ok := d[field]
	if !ok || raw == nil {
		return "", false
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		s = fmt.Sprint(v)
	case interface{ Hex() string }: // bson ObjectID
		s = v.Hex()
	case fmt.Stringer:
		s = v.String()
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// defaultField picks DocField when V is Doc.
func defaultField[V any]() (FieldFunc[V], bool) {
	var zero V
	if _, ok := any(zero).(Doc); !ok {
		return nil, false
	}
	return func(v V, field string) (string, bool) {
		d, _ := any(v).(Doc)
		return DocField(d, field)
	}, true
}

// isNull reports whether v is a nil map, slice, pointer or interface.
func isNull[V any](v V) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

var jsonNull = []byte("null")

// nullPayload reports whether b is a JSON null.
func nullPayload(b []byte) bool { return bytes.Equal(bytes.TrimSpace(b), jsonNull) }
