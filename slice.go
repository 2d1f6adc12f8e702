package exprel

import "reflect"

// LengthProperty is the pseudo-property name SliceResolver exposes when
// configured with LengthProperty.
const LengthProperty = "len"

var intType = reflect.TypeOf(int(0))

// SliceResolver resolves integer-indexed properties on slice bases.
// Properties are coerced to int; a property that cannot be coerced on a
// recognized base is an evaluation failure, not a decline.
//
// With LengthProperty enabled, the string property "len" resolves to the
// slice length as a read-only pseudo-property, ahead of index coercion.
type SliceResolver struct {
	// LengthProperty exposes "len" as a read-only pseudo-property.
	LengthProperty bool
}

var _ Resolver = (*SliceResolver)(nil)

func (r *SliceResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok := sliceBase(base)
	if !ok {
		return nil, false, nil
	}
	if r.isLength(property) {
		return v.Len(), true, nil
	}
	idx, err := r.index(base, property, v.Len())
	if err != nil {
		return nil, false, err
	}
	return v.Index(idx).Interface(), true, nil
}

func (r *SliceResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	v, ok := sliceBase(base)
	if !ok {
		return nil, false, nil
	}
	if r.isLength(property) {
		// read-only pseudo-property
		return nil, true, nil
	}
	if _, err := r.index(base, property, v.Len()); err != nil {
		return nil, false, err
	}
	return v.Type().Elem(), true, nil
}

func (r *SliceResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	v, ok := sliceBase(base)
	if !ok {
		return false, nil
	}
	if r.isLength(property) {
		return false, &PropertyNotWritableError{Base: base, Property: property}
	}
	idx, err := r.index(base, property, v.Len())
	if err != nil {
		return false, err
	}
	converted, err := ctx.ConvertToType(value, v.Type().Elem())
	if err != nil {
		return false, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	v.Index(idx).Set(reflect.ValueOf(converted))
	return true, nil
}

func (r *SliceResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	v, ok := sliceBase(base)
	if !ok {
		return false, false, nil
	}
	if r.isLength(property) {
		return true, true, nil
	}
	if _, err := r.index(base, property, v.Len()); err != nil {
		return false, false, err
	}
	return false, true, nil
}

func (r *SliceResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	if _, ok := sliceBase(base); !ok {
		return nil
	}
	return intType
}

func (r *SliceResolver) isLength(property any) bool {
	if !r.LengthProperty {
		return false
	}
	s, ok := property.(string)
	return ok && s == LengthProperty
}

// index coerces property and bounds-checks it against length. Both failure
// modes occur after recognition, so both are owned outcomes.
func (r *SliceResolver) index(base, property any, length int) (int, error) {
	idx, err := toIndex(property)
	if err != nil {
		return 0, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	if idx < 0 || idx >= length {
		return 0, &PropertyNotFoundError{Base: base, Property: property}
	}
	return idx, nil
}

func sliceBase(base any) (reflect.Value, bool) {
	v := reflect.ValueOf(base)
	if !v.IsValid() || v.Kind() != reflect.Slice {
		return reflect.Value{}, false
	}
	return v, true
}
