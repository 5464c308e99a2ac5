package report

import (
	"fmt"
	"reflect"
	"time"

	"github.com/d5/tengo/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Script compiles a tengo expression into a callback spec. The object is
// bound to `record`, e.g. `record.first_name + " " + record.last_name`.
func Script(expr string) (FieldSpec, error) {
	if expr == "" {
		return FieldSpec{}, fmt.Errorf("%w: empty script", ErrInvalidLookup)
	}

	script := tengo.NewScript([]byte("value := " + expr))
	if err := script.Add("record", map[string]interface{}{}); err != nil {
		return FieldSpec{}, err
	}
	compiled, err := script.Compile()
	if err != nil {
		return FieldSpec{}, fmt.Errorf("%w: failed to compile script: %v", ErrInvalidLookup, err)
	}

	return Callback(func(obj any) (any, error) {
		run := compiled.Clone()
		if err := run.Set("record", scriptValue(obj)); err != nil {
			return nil, fmt.Errorf("failed to bind record: %w", err)
		}
		if err := run.Run(); err != nil {
			return nil, fmt.Errorf("failed to run script: %w", err)
		}
		v := run.Get("value")
		if v.IsUndefined() {
			return nil, nil
		}
		return v.Value(), nil
	}), nil
}

// scriptValue converts obj into values tengo can hold.
func scriptValue(obj any) interface{} {
	switch v := obj.(type) {
	case nil, string, bool, int, int64, float64, []byte, time.Time:
		return v
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time()
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprint(obj)
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = scriptValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = scriptValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return scriptValue(rv.Elem().Interface())
	case reflect.Struct:
		out := make(map[string]interface{})
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if sf := t.Field(i); sf.IsExported() {
				out[sf.Name] = scriptValue(rv.Field(i).Interface())
			}
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return fmt.Sprint(obj)
}
