package exprel

import (
	"context"
	"fmt"
	"reflect"
)

// Context carries the per-evaluation state of a resolution: the Go context,
// the top-level resolver chain, an attribute side-table for coordination
// flags, and the most specific (base, property) pair that was resolved.
//
// A Context is created once per expression evaluation, reset between
// independent resolution attempts within that evaluation, and discarded at
// the end. It is exclusively owned by the active evaluation: resolver chains
// are shared read-only across concurrent evaluations, but each evaluation
// must use its own Context. Resolvers receive a transient reference and must
// not retain it beyond the call.
type Context struct {
	ctx      context.Context
	resolver Resolver
	attrs    map[any]any

	resolved         bool
	resolvedBase     any
	resolvedProperty any
}

// NewContext returns a Context for one evaluation driven by resolver.
// resolver is the top-level chain; transparent variants such as
// OptionalResolver re-enter it through Resolver.
func NewContext(ctx context.Context, resolver Resolver) *Context {
	return &Context{ctx: ctx, resolver: resolver}
}

// Context returns the evaluation's Go context, never nil.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Resolver returns the top-level resolver chain of this evaluation.
func (c *Context) Resolver() Resolver { return c.resolver }

// Put stores an attribute under key. Keys follow the context.Context idiom:
// unexported types owned by the package that defines the attribute.
func (c *Context) Put(key, value any) {
	if c.attrs == nil {
		c.attrs = map[any]any{}
	}
	c.attrs[key] = value
}

// Get returns the attribute stored under key.
func (c *Context) Get(key any) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// Delete removes the attribute stored under key.
func (c *Context) Delete(key any) {
	delete(c.attrs, key)
}

// MarkResolved records base and property as the most specific pair resolved
// during the current attempt. CompositeResolver calls it when a child
// resolves; custom chains should do the same. It is diagnostic state: no
// dispatch decision reads it.
func (c *Context) MarkResolved(base, property any) {
	c.resolved = true
	c.resolvedBase = base
	c.resolvedProperty = property
}

// Resolved reports whether MarkResolved was called since the last Reset.
func (c *Context) Resolved() bool { return c.resolved }

// ResolvedPair returns the pair recorded by the last MarkResolved.
func (c *Context) ResolvedPair() (base, property any) {
	return c.resolvedBase, c.resolvedProperty
}

// Reset clears the resolved pair so the Context can serve the next
// resolution attempt of the same evaluation. Attributes survive a Reset;
// they are evaluation-scoped.
func (c *Context) Reset() {
	c.resolved = false
	c.resolvedBase = nil
	c.resolvedProperty = nil
}

// ConvertToType converts obj to target using the evaluation's whole chain:
// any TypeConverter in the top-level resolver is consulted first, then the
// built-in Coerce rules. Variants use this escape hatch instead of
// duplicating coercion logic.
func (c *Context) ConvertToType(obj any, target reflect.Type) (any, error) {
	if tc, ok := c.resolver.(TypeConverter); ok {
		v, handled, err := tc.ConvertToType(c, obj, target)
		if err != nil {
			return nil, err
		}
		if handled {
			return v, nil
		}
	}
	return Coerce(obj, target)
}

type standaloneIdentifierKey struct{}

// MarkStandaloneIdentifier flags the current lookup as a single, stand-alone
// top-level identifier. The evaluator sets it before invoking the chain for
// such a lookup; resolvers may read it to skip expensive shape-recognition
// work that only pays off for stand-alone identifiers.
func (c *Context) MarkStandaloneIdentifier() {
	c.Put(standaloneIdentifierKey{}, true)
}

// ClearStandaloneIdentifier removes the stand-alone identifier flag.
func (c *Context) ClearStandaloneIdentifier() {
	c.Delete(standaloneIdentifierKey{})
}

// IsStandaloneIdentifier reports whether the current lookup was flagged as a
// stand-alone top-level identifier.
func (c *Context) IsStandaloneIdentifier() bool {
	v, ok := c.Get(standaloneIdentifierKey{})
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// String identifies the context in diagnostics without dumping attributes.
func (c *Context) String() string {
	if !c.resolved {
		return "exprel.Context(unresolved)"
	}
	return fmt.Sprintf("exprel.Context(resolved %v on %T)", c.resolvedProperty, c.resolvedBase)
}
