package exprel

import (
	"reflect"
	"sync"
)

// VarResolver resolves top-level variables: lookups with a nil base and a
// string property. Variables live in a map configured at setup and may be
// defined or overwritten through SetValue.
//
// An optional Loader supplies names that are expensive to materialize (an
// environment, an import table). The loader is consulted only when the
// evaluator flagged the lookup as a stand-alone identifier, so ordinary
// path-head lookups skip the expensive work; values it returns are memoized
// into the variable map.
//
// The resolver is safe for concurrent use: a chain holding one VarResolver
// may serve many evaluations at once, including memoizing reads and
// SetValue writes.
type VarResolver struct {
	mu     sync.RWMutex
	vars   map[string]any
	loader func(name string) (any, bool)
}

var _ Resolver = (*VarResolver)(nil)

// NewVarResolver returns a resolver over vars. The map is retained, not
// copied; after setup all access must go through the resolver.
func NewVarResolver(vars map[string]any) *VarResolver {
	if vars == nil {
		vars = map[string]any{}
	}
	return &VarResolver{vars: vars}
}

// WithLoader configures the stand-alone identifier loader and returns the
// receiver for chaining during setup.
func (r *VarResolver) WithLoader(loader func(name string) (any, bool)) *VarResolver {
	r.loader = loader
	return r
}

func (r *VarResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	name, ok := variableName(base, property)
	if !ok {
		return nil, false, nil
	}
	r.mu.RLock()
	v, found := r.vars[name]
	r.mu.RUnlock()
	if found {
		return v, true, nil
	}
	if r.loader != nil && ctx.IsStandaloneIdentifier() {
		if v, found := r.loader(name); found {
			r.mu.Lock()
			// another evaluation may have loaded the name meanwhile;
			// the first stored value wins so lookups stay stable
			if prior, raced := r.vars[name]; raced {
				v = prior
			} else {
				r.vars[name] = v
			}
			r.mu.Unlock()
			return v, true, nil
		}
	}
	// unknown names decline so later chain members can try
	return nil, false, nil
}

// GetType returns AnyType for known names: a variable slot accepts a value
// of any type.
func (r *VarResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	if ctx == nil {
		return nil, false, ErrNilContext
	}
	name, ok := variableName(base, property)
	if !ok {
		return nil, false, nil
	}
	r.mu.RLock()
	_, found := r.vars[name]
	r.mu.RUnlock()
	if !found {
		return nil, false, nil
	}
	return AnyType, true, nil
}

// SetValue defines or overwrites a variable. Unlike reads, writes handle
// unknown names: defining a new variable is the point.
func (r *VarResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	name, ok := variableName(base, property)
	if !ok {
		return false, nil
	}
	r.mu.Lock()
	r.vars[name] = value
	r.mu.Unlock()
	return true, nil
}

func (r *VarResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	if ctx == nil {
		return false, false, ErrNilContext
	}
	name, ok := variableName(base, property)
	if !ok {
		return false, false, nil
	}
	r.mu.RLock()
	_, found := r.vars[name]
	r.mu.RUnlock()
	if !found {
		return false, false, nil
	}
	return false, true, nil
}

func (r *VarResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	if base != nil {
		return nil
	}
	return stringType
}

func variableName(base, property any) (string, bool) {
	if base != nil {
		return "", false
	}
	name, ok := property.(string)
	return name, ok
}
