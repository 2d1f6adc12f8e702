package exprel

import (
	"fmt"
	"reflect"

	"github.com/viant/toolbox"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

var stringType = reflect.TypeOf("")

// StructResolver resolves exported fields and methods of struct and
// struct-pointer bases through reflection. Properties are coerced to the
// field name; unknown or unexported fields fail with PropertyNotFoundError.
//
// Writes require an addressable field, which in practice means a pointer
// base; a plain struct value arrives as a copy and its fields are reported
// read-only. The ReadOnly configuration makes the whole resolver reject
// writes regardless of addressability.
type StructResolver struct {
	ReadOnly bool
}

var (
	_ Resolver = (*StructResolver)(nil)
	_ Invoker  = (*StructResolver)(nil)
)

func (r *StructResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok, err := structBase(base)
	if !ok || err != nil {
		return nil, false, err
	}
	f, err := structField(v, base, property)
	if err != nil {
		return nil, false, err
	}
	return f.Interface(), true, nil
}

func (r *StructResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok, err := structBase(base)
	if !ok || err != nil {
		return nil, false, err
	}
	f, err := structField(v, base, property)
	if err != nil {
		return nil, false, err
	}
	if r.ReadOnly || !f.CanSet() {
		return nil, true, nil
	}
	return f.Type(), true, nil
}

func (r *StructResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	v, ok, err := structBase(base)
	if !ok || err != nil {
		return false, err
	}
	f, err := structField(v, base, property)
	if err != nil {
		return false, err
	}
	if r.ReadOnly || !f.CanSet() {
		return false, &PropertyNotWritableError{Base: base, Property: property}
	}
	converted, err := ctx.ConvertToType(value, f.Type())
	if err != nil {
		return false, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	f.Set(reflect.ValueOf(converted))
	return true, nil
}

func (r *StructResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	v, ok, err := structBase(base)
	if !ok || err != nil {
		return false, false, err
	}
	f, err := structField(v, base, property)
	if err != nil {
		return false, false, err
	}
	return r.ReadOnly || !f.CanSet(), true, nil
}

func (r *StructResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	_, ok, err := structBase(base)
	if !ok && err == nil {
		return nil
	}
	return stringType
}

// Invoke looks the method up by name across the base's value and pointer
// method sets, filters by paramTypes when given, matches arity, converts
// each argument to the formal parameter type through the evaluation's
// conversion path, and calls it. A method returning a trailing non-nil error
// fails with EvaluationError; panics during the call are captured the same
// way.
func (r *StructResolver) Invoke(ctx *Context, base any, method string, paramTypes []reflect.Type, params []any) (value any, ok bool, err error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	if _, isStruct, berr := structBase(base); !isStruct || berr != nil {
		return nil, false, berr
	}
	m := methodByName(base, method)
	if !m.IsValid() {
		return nil, false, &MethodNotFoundError{Base: base, Method: method}
	}
	mt := m.Type()
	if !matchesParamTypes(mt, paramTypes) {
		return nil, false, &MethodNotFoundError{Base: base, Method: method}
	}
	args, err := convertArgs(ctx, base, method, mt, params)
	if err != nil {
		return nil, false, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			value, ok = nil, false
			err = &EvaluationError{Base: base, Property: method, Cause: fmt.Errorf("panic in method %s: %v", method, rec)}
		}
	}()
	results := m.Call(args)
	return methodResult(base, method, mt, results)
}

// structBase unwraps struct and non-nil struct-pointer bases. A typed nil
// pointer is a recognized struct shape that cannot be read, which is an
// owned failure rather than a decline.
func structBase(base any) (reflect.Value, bool, error) {
	v := reflect.ValueOf(base)
	switch {
	case v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Struct:
		if v.IsNil() {
			return reflect.Value{}, true, &EvaluationError{Base: base, Cause: fmt.Errorf("nil %s base", v.Type())}
		}
		return v.Elem(), true, nil
	case v.IsValid() && v.Kind() == reflect.Struct:
		return v, true, nil
	}
	return reflect.Value{}, false, nil
}

func structField(v reflect.Value, base, property any) (reflect.Value, error) {
	name := toolbox.AsString(property)
	sf, ok := v.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return reflect.Value{}, &PropertyNotFoundError{Base: base, Property: property}
	}
	return v.FieldByIndex(sf.Index), nil
}

// methodByName searches the base's own method set first and, for plain
// struct values, an addressable copy so that pointer-receiver methods are
// callable too.
func methodByName(base any, name string) reflect.Value {
	v := reflect.ValueOf(base)
	if m := v.MethodByName(name); m.IsValid() {
		return m
	}
	if v.Kind() == reflect.Struct {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p.MethodByName(name)
	}
	return reflect.Value{}
}

func matchesParamTypes(mt reflect.Type, paramTypes []reflect.Type) bool {
	if paramTypes == nil {
		return true
	}
	if mt.NumIn() != len(paramTypes) {
		return false
	}
	for i, pt := range paramTypes {
		if pt == nil {
			continue
		}
		if pt != mt.In(i) && !pt.AssignableTo(mt.In(i)) {
			return false
		}
	}
	return true
}

func convertArgs(ctx *Context, base any, method string, mt reflect.Type, params []any) ([]reflect.Value, error) {
	fixed := mt.NumIn()
	if mt.IsVariadic() {
		fixed--
		if len(params) < fixed {
			return nil, &MethodNotFoundError{Base: base, Method: method}
		}
	} else if len(params) != fixed {
		return nil, &MethodNotFoundError{Base: base, Method: method}
	}
	args := make([]reflect.Value, 0, len(params))
	for i, p := range params {
		formal := mt.In(min(i, fixed))
		if mt.IsVariadic() && i >= fixed {
			formal = mt.In(fixed).Elem()
		}
		converted, err := ctx.ConvertToType(p, formal)
		if err != nil {
			return nil, &EvaluationError{Base: base, Property: method, Cause: err}
		}
		if converted == nil {
			args = append(args, reflect.Zero(formal))
			continue
		}
		args = append(args, reflect.ValueOf(converted))
	}
	return args, nil
}

// methodResult maps Go return conventions onto the resolution outcome: a
// trailing non-nil error fails the invocation, a void method resolves to
// nil, otherwise the first result is the value.
func methodResult(base any, method string, mt reflect.Type, results []reflect.Value) (any, bool, error) {
	n := mt.NumOut()
	if n > 0 && mt.Out(n-1) == errorType {
		if e, _ := results[n-1].Interface().(error); e != nil {
			return nil, false, &EvaluationError{Base: base, Property: method, Cause: e}
		}
		results = results[:n-1]
	}
	if len(results) == 0 {
		return nil, true, nil
	}
	return results[0].Interface(), true, nil
}
