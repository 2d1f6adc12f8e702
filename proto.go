package exprel

import (
	"reflect"

	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoResolver resolves properties on protobuf well-known dynamic values:
// *structpb.Struct (string-keyed), *structpb.ListValue (integer-indexed) and
// *structpb.Value.
//
// Resolved field values keep their structural form, a nested struct comes
// back as *structpb.Struct and a nested list as *structpb.ListValue, so deeper
// segments stay inside this resolver and writes reach the original message.
// Scalar kinds unwrap to their Go values. A bare *structpb.Value with no
// property unwraps; with a property it delegates to the top-level chain on
// the unwrapped value, like OptionalResolver.
type ProtoResolver struct{}

var _ Resolver = (*ProtoResolver)(nil)

func (r *ProtoResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	switch b := base.(type) {
	case *structpb.Struct:
		if b == nil {
			return nil, false, nil
		}
		key, err := Coerce(property, stringType)
		if err != nil {
			return nil, false, &EvaluationError{Base: base, Property: property, Cause: err}
		}
		field, found := b.GetFields()[key.(string)]
		if !found {
			// struct fields are map-like: absent reads as nil
			return nil, true, nil
		}
		return protoValue(field), true, nil
	case *structpb.ListValue:
		if b == nil {
			return nil, false, nil
		}
		idx, err := protoIndex(base, property, len(b.GetValues()))
		if err != nil {
			return nil, false, err
		}
		return protoValue(b.GetValues()[idx]), true, nil
	case *structpb.Value:
		if b == nil {
			return nil, false, nil
		}
		inner := protoValue(b)
		if property == nil {
			return inner, true, nil
		}
		if inner == nil {
			// a null cell with a property reads as nil, like an empty Optional
			return nil, true, nil
		}
		v, _, err := ctx.Resolver().GetValue(ctx, inner, property)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	return nil, false, nil
}

// GetType reports AnyType for writable slots: structpb fields accept any
// JSON-compatible value, and the write path converts through
// structpb.NewValue.
func (r *ProtoResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	switch b := base.(type) {
	case *structpb.Struct:
		if b == nil {
			return nil, false, nil
		}
		return AnyType, true, nil
	case *structpb.ListValue:
		if b == nil {
			return nil, false, nil
		}
		if _, err := protoIndex(base, property, len(b.GetValues())); err != nil {
			return nil, false, err
		}
		return AnyType, true, nil
	case *structpb.Value:
		if b == nil {
			return nil, false, nil
		}
		// a bare Value cell is not a settable slot
		return nil, true, nil
	}
	return nil, false, nil
}

func (r *ProtoResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	switch b := base.(type) {
	case *structpb.Struct:
		if b == nil {
			return false, nil
		}
		key, err := Coerce(property, stringType)
		if err != nil {
			return false, &EvaluationError{Base: base, Property: property, Cause: err}
		}
		pv, err := structpb.NewValue(value)
		if err != nil {
			return false, &EvaluationError{Base: base, Property: property, Cause: err}
		}
		if b.Fields == nil {
			b.Fields = map[string]*structpb.Value{}
		}
		b.Fields[key.(string)] = pv
		return true, nil
	case *structpb.ListValue:
		if b == nil {
			return false, nil
		}
		idx, err := protoIndex(base, property, len(b.GetValues()))
		if err != nil {
			return false, err
		}
		pv, err := structpb.NewValue(value)
		if err != nil {
			return false, &EvaluationError{Base: base, Property: property, Cause: err}
		}
		b.Values[idx] = pv
		return true, nil
	case *structpb.Value:
		if b == nil {
			return false, nil
		}
		return false, &PropertyNotWritableError{Base: base, Property: property}
	}
	return false, nil
}

func (r *ProtoResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	switch b := base.(type) {
	case *structpb.Struct:
		if b == nil {
			return false, false, nil
		}
		return false, true, nil
	case *structpb.ListValue:
		if b == nil {
			return false, false, nil
		}
		if _, err := protoIndex(base, property, len(b.GetValues())); err != nil {
			return false, false, err
		}
		return false, true, nil
	case *structpb.Value:
		if b == nil {
			return false, false, nil
		}
		return true, true, nil
	}
	return false, false, nil
}

func (r *ProtoResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	switch b := base.(type) {
	case *structpb.Struct:
		if b != nil {
			return stringType
		}
	case *structpb.ListValue:
		if b != nil {
			return intType
		}
	case *structpb.Value:
		if b != nil {
			return AnyType
		}
	}
	return nil
}

// protoValue unwraps v one level, keeping struct and list forms intact.
func protoValue(v *structpb.Value) any {
	switch v.GetKind().(type) {
	case *structpb.Value_StructValue:
		return v.GetStructValue()
	case *structpb.Value_ListValue:
		return v.GetListValue()
	default:
		return v.AsInterface()
	}
}

func protoIndex(base, property any, length int) (int, error) {
	idx, err := toIndex(property)
	if err != nil {
		return 0, &EvaluationError{Base: base, Property: property, Cause: err}
	}
	if idx < 0 || idx >= length {
		return 0, &PropertyNotFoundError{Base: base, Property: property}
	}
	return idx, nil
}
