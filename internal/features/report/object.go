package report

import (
	"fmt"
	"reflect"
	"strings"
)

// Attributer is implemented by objects that resolve their own attributes,
// such as record.Record.
type Attributer interface {
	Attr(name string) (any, bool)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// LookupAttr finds the named attribute on obj. Struct fields and methods
// match by exact name, json tag, or snake_case to CamelCase.
func LookupAttr(obj any, name string) (any, bool) {
	if obj == nil || name == "" {
		return nil, false
	}
	switch o := obj.(type) {
	case Attributer:
		return o.Attr(name)
	case map[string]any:
		v, ok := o[name]
		return v, ok
	}

	rv := reflect.ValueOf(obj)
	if m, ok := findMethod(rv, name); ok {
		return m.Interface(), true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		if f, ok := findField(rv, name); ok {
			return f.Interface(), true
		}
	}
	return nil, false
}

func findMethod(rv reflect.Value, name string) (reflect.Value, bool) {
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}
	want := normalize(name)
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if normalize(t.Method(i).Name) == want {
			return rv.Method(i), true
		}
	}
	return reflect.Value{}, false
}

func findField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	want := normalize(name)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag == name {
			return rv.Field(i), true
		}
		if normalize(sf.Name) == want {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// callIfCallable invokes zero-argument functions and returns other values
// unchanged.
func callIfCallable(v any) (any, error) {
	switch f := v.(type) {
	case func() any:
		return f(), nil
	case func() (any, error):
		return f()
	case func() string:
		return f(), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return v, nil
	}
	if rv.IsNil() {
		return nil, nil
	}
	if rv.Type().NumIn() != 0 {
		return nil, fmt.Errorf("attribute requires %d arguments", rv.Type().NumIn())
	}
	return results(rv.Call(nil))
}

// results maps a function's return values to (value, error). A trailing
// error result is treated as the call's error.
func results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
