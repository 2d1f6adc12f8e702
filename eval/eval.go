// Package eval drives a resolver chain over pre-split path segments. It is
// the evaluation front half of the module: it owns the per-evaluation
// Context lifecycle, the stand-alone identifier marker, and tracing. It does
// not parse anything; callers hand it segments.
package eval

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hanpama/exprel"
)

// UndefinedError reports a path segment no resolver in the chain handled.
// It is distinct from a nil result: nil is a value, undefined is the absence
// of any resolver owning the pair.
type UndefinedError struct {
	Segment any
	Index   int
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("eval: segment %v (position %d) is undefined", e.Segment, e.Index)
}

// Evaluator evaluates segment paths against a configured resolver chain.
// The chain is shared read-only across concurrent evaluations; every call
// creates its own exprel.Context.
type Evaluator struct {
	resolver exprel.Resolver
	tracer   trace.Tracer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithResolver replaces the default chain.
func WithResolver(r exprel.Resolver) Option {
	return func(e *Evaluator) { e.resolver = r }
}

// WithVariables installs top-level variables into the default chain. It has
// no effect when WithResolver is also given.
func WithVariables(vars map[string]any) Option {
	return func(e *Evaluator) {
		if e.resolver == nil {
			e.resolver = Default(vars)
		}
	}
}

// WithTracerProvider sets the provider used for spans; the global provider
// is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Evaluator) { e.tracer = tp.Tracer("exprel/eval") }
}

// New returns an Evaluator. Without options it uses Default(nil) and the
// global tracer provider.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = Default(nil)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("exprel/eval")
	}
	return e
}

// Resolver returns the evaluator's chain.
func (e *Evaluator) Resolver() exprel.Resolver { return e.resolver }

// Default returns the standard chain: variables, Optional unwrapping,
// protobuf Struct values, maps, slices (with the "len" pseudo-property),
// arrays, then structs. Order matters: the transparent variants go first so
// wrapped bases are recognized before the general-purpose ones.
func Default(vars map[string]any) exprel.Resolver {
	return exprel.NewCompositeResolver(
		exprel.NewVarResolver(vars),
		&exprel.OptionalResolver{},
		&exprel.ProtoResolver{},
		&exprel.MapResolver{},
		&exprel.SliceResolver{LengthProperty: true},
		&exprel.ArrayResolver{},
		&exprel.StructResolver{},
	)
}

// Resolve evaluates segments left to right, starting from a nil base so the
// first segment resolves as a top-level variable. A single-segment path is
// flagged as a stand-alone identifier. An unhandled segment yields
// *UndefinedError.
func (e *Evaluator) Resolve(ctx context.Context, segments ...any) (any, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("eval: empty path")
	}
	ctx, span := e.startSpan(ctx, "exprel.resolve", segments)
	defer span.End()

	rc := e.newContext(ctx, segments)
	base, err := e.walk(rc, segments)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return base, nil
}

// Assign resolves all but the last segment, then writes value into the slot
// named by the final one.
func (e *Evaluator) Assign(ctx context.Context, value any, segments ...any) error {
	if len(segments) == 0 {
		return fmt.Errorf("eval: empty path")
	}
	ctx, span := e.startSpan(ctx, "exprel.assign", segments)
	defer span.End()

	rc := e.newContext(ctx, segments)
	base, err := e.walk(rc, segments[:len(segments)-1])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	last := segments[len(segments)-1]
	rc.Reset()
	ok, err := e.resolver.SetValue(rc, base, last, value)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !ok {
		return &UndefinedError{Segment: last, Index: len(segments) - 1}
	}
	return nil
}

// TypeOf resolves all but the last segment and returns the most general
// type accepted for a write to the final slot; nil means the slot is
// read-only.
func (e *Evaluator) TypeOf(ctx context.Context, segments ...any) (reflect.Type, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("eval: empty path")
	}
	ctx, span := e.startSpan(ctx, "exprel.typeof", segments)
	defer span.End()

	rc := e.newContext(ctx, segments)
	base, err := e.walk(rc, segments[:len(segments)-1])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	last := segments[len(segments)-1]
	rc.Reset()
	t, ok, err := e.resolver.GetType(rc, base, last)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		return nil, &UndefinedError{Segment: last, Index: len(segments) - 1}
	}
	return t, nil
}

// ReadOnly reports whether assigning through the final segment would always
// fail due to immutability.
func (e *Evaluator) ReadOnly(ctx context.Context, segments ...any) (bool, error) {
	if len(segments) == 0 {
		return false, fmt.Errorf("eval: empty path")
	}
	ctx, span := e.startSpan(ctx, "exprel.readonly", segments)
	defer span.End()

	rc := e.newContext(ctx, segments)
	base, err := e.walk(rc, segments[:len(segments)-1])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	last := segments[len(segments)-1]
	rc.Reset()
	ro, ok, err := e.resolver.IsReadOnly(rc, base, last)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if !ok {
		return false, &UndefinedError{Segment: last, Index: len(segments) - 1}
	}
	return ro, nil
}

// Call resolves segments to a receiver and invokes method on it with args.
func (e *Evaluator) Call(ctx context.Context, method string, args []any, segments ...any) (any, error) {
	ctx, span := e.startSpan(ctx, "exprel.call", segments)
	defer span.End()
	span.SetAttributes(attribute.String("method", method))

	rc := e.newContext(ctx, segments)
	receiver, err := e.walk(rc, segments)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	inv, capable := e.resolver.(exprel.Invoker)
	if !capable {
		return nil, &exprel.MethodNotFoundError{Base: receiver, Method: method}
	}
	rc.Reset()
	v, ok, err := inv.Invoke(rc, receiver, method, nil, args)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		return nil, &exprel.MethodNotFoundError{Base: receiver, Method: method}
	}
	return v, nil
}

// Convert converts v to target through the evaluation's whole chain.
func (e *Evaluator) Convert(ctx context.Context, v any, target reflect.Type) (any, error) {
	rc := exprel.NewContext(ctx, e.resolver)
	return rc.ConvertToType(v, target)
}

func (e *Evaluator) newContext(ctx context.Context, segments []any) *exprel.Context {
	rc := exprel.NewContext(ctx, e.resolver)
	if len(segments) == 1 {
		rc.MarkStandaloneIdentifier()
	}
	return rc
}

// walk folds segments through GetValue, resetting the context between
// attempts so each segment is a logically distinct resolution. Each segment
// gets its own child span under the evaluation span.
func (e *Evaluator) walk(rc *exprel.Context, segments []any) (any, error) {
	var base any
	for i, seg := range segments {
		_, span := e.tracer.Start(rc.Context(), "exprel.segment", trace.WithAttributes(
			attribute.String("segment", fmt.Sprint(seg)),
			attribute.Int("segment.index", i),
		))
		rc.Reset()
		v, ok, err := e.resolver.GetValue(rc, base, seg)
		if err == nil && !ok {
			err = &UndefinedError{Segment: seg, Index: i}
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return nil, err
		}
		span.End()
		base = v
	}
	return base, nil
}

func (e *Evaluator) startSpan(ctx context.Context, name string, segments []any) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("path.segments", len(segments)),
		attribute.String("path", fmt.Sprint(segments...)),
	))
}
