package exprel

import "reflect"

// CompositeResolver is an ordered aggregate of Resolvers presenting the same
// contract, enabling chained fallback. Registration order is resolution
// priority order; duplicates are permitted; a composite is itself a Resolver,
// so composites nest and evaluate depth-first left-to-right, flattening into
// a single total priority order.
//
// The child list is expected to be configured once during setup and shared
// read-only across concurrent evaluations afterwards. Add is not safe to call
// concurrently with dispatch.
type CompositeResolver struct {
	resolvers []Resolver
}

var (
	_ Resolver      = (*CompositeResolver)(nil)
	_ Invoker       = (*CompositeResolver)(nil)
	_ TypeConverter = (*CompositeResolver)(nil)
)

// NewCompositeResolver returns a composite over resolvers, consulted in the
// given order.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{resolvers: resolvers}
}

// Add appends r with the lowest priority so far.
func (c *CompositeResolver) Add(r Resolver) {
	c.resolvers = append(c.resolvers, r)
}

// GetValue consults children in order. The first child that resolves wins:
// its value is returned, the pair is recorded on the context, and no later
// child is consulted. The first child error propagates unchanged. If every
// child declines, the composite declines, which the caller must treat as
// "undefined", not as a nil result.
func (c *CompositeResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	for _, r := range c.resolvers {
		v, ok, err := r.GetValue(ctx, base, property)
		if err != nil {
			return nil, false, err
		}
		if ok {
			ctx.MarkResolved(base, property)
			return v, true, nil
		}
	}
	return nil, false, nil
}

// GetType dispatches like GetValue.
func (c *CompositeResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	for _, r := range c.resolvers {
		t, ok, err := r.GetType(ctx, base, property)
		if err != nil {
			return nil, false, err
		}
		if ok {
			ctx.MarkResolved(base, property)
			return t, true, nil
		}
	}
	return nil, false, nil
}

// SetValue dispatches like GetValue.
func (c *CompositeResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	for _, r := range c.resolvers {
		ok, err := r.SetValue(ctx, base, property, value)
		if err != nil {
			return false, err
		}
		if ok {
			ctx.MarkResolved(base, property)
			return true, nil
		}
	}
	return false, nil
}

// IsReadOnly dispatches like GetValue.
func (c *CompositeResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	for _, r := range c.resolvers {
		ro, ok, err := r.IsReadOnly(ctx, base, property)
		if err != nil {
			return false, false, err
		}
		if ok {
			ctx.MarkResolved(base, property)
			return ro, true, nil
		}
	}
	return false, false, nil
}

// Invoke dispatches like GetValue over the children that implement Invoker;
// the rest decline by construction.
func (c *CompositeResolver) Invoke(ctx *Context, base any, method string, paramTypes []reflect.Type, params []any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	for _, r := range c.resolvers {
		inv, capable := r.(Invoker)
		if !capable {
			continue
		}
		v, ok, err := inv.Invoke(ctx, base, method, paramTypes, params)
		if err != nil {
			return nil, false, err
		}
		if ok {
			ctx.MarkResolved(base, method)
			return v, true, nil
		}
	}
	return nil, false, nil
}

// ConvertToType dispatches over the children that implement TypeConverter.
// Conversion operates on a single value, so no (base, property) pair is
// recorded on the context.
func (c *CompositeResolver) ConvertToType(ctx *Context, obj any, target reflect.Type) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	for _, r := range c.resolvers {
		tc, capable := r.(TypeConverter)
		if !capable {
			continue
		}
		v, ok, err := tc.ConvertToType(ctx, obj, target)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// CommonPropertyType unions the children's answers instead of
// short-circuiting: nil if every child declines; a single distinct answer
// wins; AnyType as soon as any child answers AnyType or two answers are not
// related by assignability; when one answer is assignable to the other, the
// broader of the two wins.
func (c *CompositeResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	var common reflect.Type
	for _, r := range c.resolvers {
		t := r.CommonPropertyType(ctx, base)
		switch {
		case t == nil || t == common:
			// declined, or agrees with the union so far
		case common == nil:
			common = t
		case t == AnyType || common == AnyType:
			common = AnyType
		case t.AssignableTo(common):
			// common already subsumes t
		case common.AssignableTo(t):
			common = t
		default:
			common = AnyType
		}
	}
	return common
}
