package exprel

import "reflect"

// ArrayResolver resolves integer-indexed properties on fixed-size array
// bases, both [N]T values and *[N]T pointers. Reads work on either form;
// writes require the pointer form, since an array value passed through an
// any is a copy with no addressable storage behind it.
type ArrayResolver struct{}

var _ Resolver = (*ArrayResolver)(nil)

func (r *ArrayResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok := arrayBase(base)
	if !ok {
		return nil, false, nil
	}
	idx, err := arrayIndex(base, property, v.Len())
	if err != nil {
		return nil, false, err
	}
	return v.Index(idx).Interface(), true, nil
}

func (r *ArrayResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok := arrayBase(base)
	if !ok {
		return nil, false, nil
	}
	idx, err := arrayIndex(base, property, v.Len())
	if err != nil {
		return nil, false, err
	}
	if !v.Index(idx).CanSet() {
		// value form: readable but immutable
		return nil, true, nil
	}
	return v.Type().Elem(), true, nil
}

func (r *ArrayResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	v, ok := arrayBase(base)
	if !ok {
		return false, nil
	}
	idx, err := arrayIndex(base, property, v.Len())
	if err != nil {
		return false, err
	}
	if !v.Index(idx).CanSet() {
		return false, &PropertyNotWritableError{Base: base, Property: property}
	}
	converted, err := ctx.ConvertToType(value, v.Type().Elem())
	if err != nil {
		return false, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	v.Index(idx).Set(reflect.ValueOf(converted))
	return true, nil
}

func (r *ArrayResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	v, ok := arrayBase(base)
	if !ok {
		return false, false, nil
	}
	idx, err := arrayIndex(base, property, v.Len())
	if err != nil {
		return false, false, err
	}
	return !v.Index(idx).CanSet(), true, nil
}

func (r *ArrayResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	if _, ok := arrayBase(base); !ok {
		return nil
	}
	return intType
}

// arrayBase unwraps [N]T and non-nil *[N]T bases. The dereferenced form
// keeps addressability, so element writes through the pointer succeed.
func arrayBase(base any) (reflect.Value, bool) {
	v := reflect.ValueOf(base)
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Array {
		return v.Elem(), true
	}
	if v.IsValid() && v.Kind() == reflect.Array {
		return v, true
	}
	return reflect.Value{}, false
}

func arrayIndex(base, property any, length int) (int, error) {
	idx, err := toIndex(property)
	if err != nil {
		return 0, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	if idx < 0 || idx >= length {
		return 0, &PropertyNotFoundError{Base: base, Property: property}
	}
	return idx, nil
}
