package exprel

import "reflect"

// Optional is a container holding zero or one value, the wrapper shape
// recognized by OptionalResolver.
type Optional struct {
	value   any
	present bool
}

// OptionalOf wraps v. A present Optional may hold nil.
func OptionalOf(v any) Optional { return Optional{value: v, present: true} }

// EmptyOptional returns the empty wrapper.
func EmptyOptional() Optional { return Optional{} }

// Get returns the wrapped value and whether one is present.
func (o Optional) Get() (any, bool) { return o.value, o.present }

// IsPresent reports whether the wrapper holds a value.
func (o Optional) IsPresent() bool { return o.present }

// IsEmpty reports whether the wrapper is empty.
func (o Optional) IsEmpty() bool { return !o.present }

// OptionalResolver resolves Optional bases. It is always read-only.
//
// The resolver is transparent: with a property requested on a present
// wrapper it unwraps the inner value and re-enters the evaluation's
// top-level chain (obtained from the Context, not from itself), forwarding
// one level of indirection instead of resolving the nested property on its
// own. An empty wrapper resolves to nil whether or not a property was
// requested.
type OptionalResolver struct{}

var (
	_ Resolver      = (*OptionalResolver)(nil)
	_ Invoker       = (*OptionalResolver)(nil)
	_ TypeConverter = (*OptionalResolver)(nil)
)

func (r *OptionalResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	o, ok := optionalBase(base)
	if !ok {
		return nil, false, nil
	}
	if o.IsEmpty() {
		return nil, true, nil
	}
	if property == nil {
		return o.value, true, nil
	}
	if o.value == nil {
		// delegating a nil base would read as a variable lookup
		return nil, true, nil
	}
	v, _, err := ctx.Resolver().GetValue(ctx, o.value, property)
	if err != nil {
		return nil, false, err
	}
	// The wrapper itself is resolved even when the delegated chain
	// declines; an unresolvable inner property reads as nil.
	return v, true, nil
}

func (r *OptionalResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	if _, ok := optionalBase(base); !ok {
		return nil, false, nil
	}
	// always read-only
	return nil, true, nil
}

func (r *OptionalResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	if _, ok := optionalBase(base); !ok {
		return false, nil
	}
	return false, &PropertyNotWritableError{Base: base, Property: property}
}

func (r *OptionalResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	if _, ok := optionalBase(base); !ok {
		return false, false, nil
	}
	return true, true, nil
}

// CommonPropertyType is AnyType for a recognized base: after unwrapping, any
// property might apply.
func (r *OptionalResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	if _, ok := optionalBase(base); !ok {
		return nil
	}
	return AnyType
}

// Invoke unwraps a present wrapper and delegates the call to the top-level
// chain; an empty wrapper resolves to nil without delegation.
func (r *OptionalResolver) Invoke(ctx *Context, base any, method string, paramTypes []reflect.Type, params []any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	o, ok := optionalBase(base)
	if !ok || method == "" {
		return nil, false, nil
	}
	if o.IsEmpty() {
		return nil, true, nil
	}
	inv, capable := ctx.Resolver().(Invoker)
	if !capable {
		return nil, true, nil
	}
	v, _, err := inv.Invoke(ctx, o.value, method, paramTypes, params)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ConvertToType converts the wrapped value: a present inner value already
// assignable to target passes through unchanged; otherwise the generic
// conversion path runs on the inner value (nil when empty). A failed generic
// conversion declines rather than failing, so other converters get a chance.
func (r *OptionalResolver) ConvertToType(ctx *Context, obj any, target reflect.Type) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	o, ok := optionalBase(obj)
	if !ok {
		return nil, false, nil
	}
	var value any
	if o.IsPresent() {
		value = o.value
		if value != nil && reflect.TypeOf(value).AssignableTo(target) {
			return value, true, nil
		}
	}
	converted, err := ctx.ConvertToType(value, target)
	if err != nil {
		return nil, false, nil
	}
	return converted, true, nil
}

func optionalBase(base any) (Optional, bool) {
	switch o := base.(type) {
	case Optional:
		return o, true
	case *Optional:
		if o != nil {
			return *o, true
		}
	}
	return Optional{}, false
}
