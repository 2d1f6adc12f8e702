package exprel

import "reflect"

// AnyType is the universal top type. A resolver returns it from
// CommonPropertyType when it accepts arbitrary property keys for a base, and
// GetType returns it for slots that accept values of any type.
var AnyType = reflect.TypeOf((*any)(nil)).Elem()

// Resolver resolves properties and variables for one base-value shape.
//
// General contract
//   - Every method receives the evaluation's Context first. A nil Context is
//     a precondition violation and must be reported as ErrNilContext.
//   - ok == false with a nil error means the resolver declined: the base (or,
//     for base == nil, the property name) is not a shape it owns. The caller
//     must ignore the other return values. Declining is the only valid
//     "not mine" signal; a resolver must never return a taxonomy error for a
//     shape it does not recognize.
//   - ok == true means the pair was recognized and resolved. A nil value with
//     ok == true is a legitimate resolution result.
//   - A non-nil error implies recognition: the resolver owns the outcome and
//     no later resolver in a chain will be consulted.
//   - Implementations must not retain the Context beyond the call.
//
// Base and property
//   - In variable resolution (the first segment of a path), base is nil and
//     property is the variable name, normally a string.
//   - In property resolution, base is the value produced by the previous
//     segment and property is the key, index, or field name.
type Resolver interface {
	// GetValue resolves property on base and returns the resolved value.
	// Recognized pairs whose target does not exist fail with
	// *PropertyNotFoundError; failures during the access itself are wrapped
	// in *EvaluationError.
	GetValue(ctx *Context, base, property any) (value any, ok bool, err error)

	// GetType returns the most general type acceptable for a value passed to
	// a future SetValue on the same pair. It is the declared slot type (a
	// slice's element type, a map's value type, a struct field's type), never
	// the runtime type of the current value. For a recognized pair that is
	// read-only the returned type is nil with ok == true.
	GetType(ctx *Context, base, property any) (t reflect.Type, ok bool, err error)

	// SetValue stores value into the slot named by (base, property).
	// A recognized pair with no such slot fails with *PropertyNotFoundError;
	// a recognized, existing but immutable slot fails with
	// *PropertyNotWritableError. The not-writable case is a recognized
	// outcome, not a decline: the resolver handled the pair by definitively
	// rejecting the write.
	SetValue(ctx *Context, base, property, value any) (ok bool, err error)

	// IsReadOnly reports whether SetValue on the same pair would always fail
	// due to immutability. Recognition is independent of the boolean result.
	IsReadOnly(ctx *Context, base, property any) (readOnly bool, ok bool, err error)

	// CommonPropertyType returns the most general type this resolver accepts
	// as a property key for base: nil if the base shape is not recognized,
	// AnyType if arbitrary keys are accepted, or a narrower type (e.g. int
	// for index-based shapes). It is advisory, used for tooling, and is not a
	// resolution attempt.
	CommonPropertyType(ctx *Context, base any) reflect.Type
}

// Invoker is the optional method-invocation capability. Resolvers that do not
// implement it decline every invocation by construction.
//
// paramTypes optionally narrows candidate methods by formal parameter types;
// nil means the formal types are unknown and matching falls back to arity and
// argument convertibility. No matching method on a recognized base fails with
// *MethodNotFoundError.
type Invoker interface {
	Invoke(ctx *Context, base any, method string, paramTypes []reflect.Type, params []any) (value any, ok bool, err error)
}

// TypeConverter is the optional type-conversion capability. It operates on a
// single value rather than a (base, property) pair: a converter recognizes
// obj's shape directly and converts it to target. Conversion failure for a
// recognized shape may be reported either as an error or as a decline; the
// OptionalResolver declines so that other converters get a chance.
type TypeConverter interface {
	ConvertToType(ctx *Context, obj any, target reflect.Type) (value any, ok bool, err error)
}
