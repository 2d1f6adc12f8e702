package exprel

import "reflect"

// MapResolver resolves keyed properties on map bases of any key and value
// type. Keys are coerced to the map's key type; a key that cannot be coerced
// is certainly absent, so lookups resolve to nil rather than failing.
//
// A missing key resolves to nil on reads (maps accept any key of the right
// type) and inserts on writes.
type MapResolver struct {
	// ReadOnly rejects every write with PropertyNotWritableError.
	ReadOnly bool
}

var _ Resolver = (*MapResolver)(nil)

func (r *MapResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	m, ok := mapBase(base)
	if !ok {
		return nil, false, nil
	}
	key, err := Coerce(property, m.Type().Key())
	if err != nil {
		return nil, true, nil
	}
	v := m.MapIndex(reflect.ValueOf(key))
	if !v.IsValid() {
		return nil, true, nil
	}
	return v.Interface(), true, nil
}

func (r *MapResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	m, ok := mapBase(base)
	if !ok {
		return nil, false, nil
	}
	if r.ReadOnly {
		return nil, true, nil
	}
	return m.Type().Elem(), true, nil
}

func (r *MapResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	m, ok := mapBase(base)
	if !ok {
		return false, nil
	}
	if r.ReadOnly || m.IsNil() {
		return false, &PropertyNotWritableError{Base: base, Property: property}
	}
	key, err := ctx.ConvertToType(property, m.Type().Key())
	if err != nil {
		return false, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	converted, err := ctx.ConvertToType(value, m.Type().Elem())
	if err != nil {
		return false, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	m.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(converted))
	return true, nil
}

func (r *MapResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	m, ok := mapBase(base)
	if !ok {
		return false, false, nil
	}
	return r.ReadOnly || m.IsNil(), true, nil
}

func (r *MapResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	m, ok := mapBase(base)
	if !ok {
		return nil
	}
	key := m.Type().Key()
	if key == AnyType {
		return AnyType
	}
	return key
}

func mapBase(base any) (reflect.Value, bool) {
	v := reflect.ValueOf(base)
	if !v.IsValid() || v.Kind() != reflect.Map {
		return reflect.Value{}, false
	}
	return v, true
}
