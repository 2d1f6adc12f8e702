// Package exprel implements an extensible property and variable resolution
// protocol for evaluating path expressions (a.b, a[2], a.method(x)) against
// arbitrary runtime values, without the caller knowing in advance what kinds
// of values it will see.
//
// # Overview
//
// Resolution is performed by an ordered chain of Resolver implementations,
// each owning exactly one base-value shape: slices, arrays, maps, structs,
// Optional wrappers, protobuf Struct values, and top-level variables. The
// chain is assembled with CompositeResolver, which is itself a Resolver, so
// composites nest and flatten into a single total priority order.
//
// Every operation returns its outcome explicitly:
//
//   - ok == false, err == nil: the resolver declined; the base shape is not
//     its own. The caller must ignore the returned value and try the next
//     resolver in the chain.
//   - ok == true: the resolver recognized the pair and resolved it. The value
//     may legitimately be nil; resolved-to-nil and declined are different
//     outcomes.
//   - err != nil: the resolver recognized the pair and owns the failure. The
//     chain stops immediately; errors are never second-guessed by later
//     resolvers.
//
// A resolver that recognizes a (base, property) pair must not decline after
// partial work: it either resolves or returns one of the taxonomy errors
// (PropertyNotFoundError, PropertyNotWritableError, MethodNotFoundError,
// EvaluationError).
//
// # Dispatch
//
// CompositeResolver consults children in registration order and stops at the
// first child that resolves or fails. If every child declines, the composite
// declines, which the caller must treat as "undefined", not as "the value is
// nil". The same short-circuit rule applies uniformly to GetValue, GetType,
// SetValue, IsReadOnly, Invoke, and ConvertToType.
//
// # Contexts
//
// A Context carries per-evaluation state: the Go context, the top-level
// resolver (so transparent variants such as OptionalResolver can re-enter the
// whole chain), an attribute side-table for coordination flags, and the most
// specific (base, property) pair that was resolved, recorded for diagnostics.
// A Context belongs to a single evaluation. Resolver chains are configured
// once and shared read-only across concurrent evaluations; each evaluation
// uses its own Context.
//
// # Capabilities
//
// Method invocation and type conversion are optional capabilities expressed
// as separate interfaces (Invoker, TypeConverter). CompositeResolver detects
// them with type assertions; a resolver that does not implement a capability
// declines it by construction.
//
// The eval subpackage provides a small segment walker that drives a chain
// over pre-split path segments. Parsing an expression grammar is out of scope
// for this module.
package exprel
