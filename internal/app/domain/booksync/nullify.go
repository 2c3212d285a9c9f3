package booksync

import "reflect"

// NullifyAbsent rewrites a document tree so every absent optional value is an
// explicit nil. Document stores reject "undefined"-like typed nils, so nil
// pointers, nil slices and nil maps all become untyped nil and non-nil
// pointers are dereferenced.
func NullifyAbsent(value any) any {
	if value == nil {
		return nil
	}
	return nullify(reflect.ValueOf(value))
}

func nullify(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return nullify(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = nullify(iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = nullify(v.Index(i))
		}
		return out
	default:
		return v.Interface()
	}
}
