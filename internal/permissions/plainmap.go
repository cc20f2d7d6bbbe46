package permissions

import (
	"encoding/json"
	"reflect"

	"gorm.io/datatypes"
)

// Coerce normalizes any stored mapping representation into a plain
// string-keyed map: native maps, JSONB column payloads, raw JSON bytes, or
// struct values, at arbitrary nesting depth when deep is set. Non-map inputs
// (including nil) yield an empty map, so callers never special-case the
// persistence wrapper a value arrived in.
func Coerce(v interface{}, deep bool) map[string]interface{} {
	m := toPlainMap(v)
	if m == nil {
		return map[string]interface{}{}
	}
	if deep {
		for key, val := range m {
			m[key] = coerceValue(val)
		}
	}
	return m
}

func coerceValue(v interface{}) interface{} {
	if child := toPlainMap(v); child != nil {
		for key, val := range child {
			child[key] = coerceValue(val)
		}
		return child
	}
	if items, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = coerceValue(item)
		}
		return out
	}
	return v
}

// toPlainMap returns nil for anything that is not map-like.
func toPlainMap(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for key, val := range t {
			out[key] = val
		}
		return out
	case datatypes.JSONMap:
		out := make(map[string]interface{}, len(t))
		for key, val := range t {
			out[key] = val
		}
		return out
	case datatypes.JSON:
		return unmarshalMap([]byte(t))
	case json.RawMessage:
		return unmarshalMap([]byte(t))
	case []byte:
		return unmarshalMap(t)
	case string:
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	case reflect.Struct:
		// One decode pass through JSON turns a typed record back into the
		// same shape the coercion produces for stored payloads.
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil
		}
		return unmarshalMap(raw)
	default:
		return nil
	}
}

func unmarshalMap(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
