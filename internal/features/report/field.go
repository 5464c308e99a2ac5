package report

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrInvalidLookup = errors.New("invalid field lookup")

// SpecKind tells Resolve how to turn a FieldSpec into a value.
type SpecKind int

const (
	KindLiteral SpecKind = iota
	KindCallback
	KindAttr
)

func (k SpecKind) String() string {
	switch k {
	case KindCallback:
		return "callback"
	case KindAttr:
		return "attr"
	default:
		return "literal"
	}
}

// CallbackFunc computes a column value from the object being reported on.
type CallbackFunc func(obj any) (any, error)

// FieldSpec says where a column value comes from: a constant, a function of
// the object, or a named attribute of the object.
type FieldSpec struct {
	kind  SpecKind
	value any
	name  string
	fn    CallbackFunc
}

// Literal is emitted unchanged for every row.
func Literal(v any) FieldSpec {
	return FieldSpec{kind: KindLiteral, value: v}
}

func Callback(fn CallbackFunc) FieldSpec {
	return FieldSpec{kind: KindCallback, fn: fn}
}

// Func wraps a callback that cannot fail.
func Func(fn func(obj any) any) FieldSpec {
	return Callback(func(obj any) (any, error) { return fn(obj), nil })
}

// Attr reads the named attribute. Objects without it yield the name itself.
func Attr(name string) FieldSpec {
	return FieldSpec{kind: KindAttr, name: name}
}

// Infer classifies a loosely typed lookup value: functions become callbacks,
// strings become attribute names and anything else is a literal.
func Infer(v any) FieldSpec {
	switch t := v.(type) {
	case FieldSpec:
		return t
	case CallbackFunc:
		return Callback(t)
	case func(any) (any, error):
		return Callback(t)
	case func(any) any:
		return Func(t)
	case string:
		return Attr(t)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func && !rv.IsNil() {
		return Callback(func(obj any) (any, error) { return callFunc(rv, obj) })
	}
	return Literal(v)
}

func (s FieldSpec) Kind() SpecKind { return s.kind }

// Name is the attribute name of an Attr spec.
func (s FieldSpec) Name() string { return s.name }

func (s FieldSpec) String() string {
	switch s.kind {
	case KindCallback:
		return "callback"
	case KindAttr:
		return "attr(" + s.name + ")"
	default:
		return fmt.Sprintf("literal(%v)", s.value)
	}
}

func (s FieldSpec) validate() error {
	switch s.kind {
	case KindCallback:
		if s.fn == nil {
			return fmt.Errorf("%w: callback is nil", ErrInvalidLookup)
		}
	case KindAttr:
		if s.name == "" {
			return fmt.Errorf("%w: empty attribute name", ErrInvalidLookup)
		}
	}
	return nil
}

// FieldLookup pairs an output column with the spec producing its values.
type FieldLookup struct {
	Column string
	Spec   FieldSpec
}

// Lookup builds a FieldLookup, classifying v with Infer.
func Lookup(column string, v any) FieldLookup {
	return FieldLookup{Column: column, Spec: Infer(v)}
}

// Resolve produces the value of spec for obj.
func Resolve(obj any, spec FieldSpec) (any, error) {
	switch spec.kind {
	case KindCallback:
		if spec.fn == nil {
			return nil, fmt.Errorf("%w: callback is nil", ErrInvalidLookup)
		}
		return spec.fn(obj)
	case KindAttr:
		v, ok := LookupAttr(obj, spec.name)
		if !ok {
			return spec.name, nil
		}
		return callIfCallable(v)
	default:
		return spec.value, nil
	}
}

// callFunc invokes a reflected one-argument function with obj.
func callFunc(fn reflect.Value, obj any) (any, error) {
	t := fn.Type()
	if t.NumIn() != 1 {
		return nil, fmt.Errorf("%w: callback must take one argument, takes %d", ErrInvalidLookup, t.NumIn())
	}
	arg := reflect.ValueOf(obj)
	if !arg.IsValid() {
		arg = reflect.Zero(t.In(0))
	}
	if !arg.Type().AssignableTo(t.In(0)) {
		return nil, fmt.Errorf("callback expects %s, got %s", t.In(0), arg.Type())
	}
	return results(fn.Call([]reflect.Value{arg}))
}
