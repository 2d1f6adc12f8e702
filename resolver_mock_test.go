package exprel

import "reflect"

// mockResolver is a scripted resolver for dispatch tests. It recognizes a
// (base, property) pair when match returns true, records every consultation
// in calls, and then answers with the configured value or error.
type mockResolver struct {
	name  string
	match func(base, property any) bool
	value any
	err   error

	commonType reflect.Type

	calls *[]string
}

var _ Resolver = (*mockResolver)(nil)

func matchAny(base, property any) bool { return true }

func matchNone(base, property any) bool { return false }

// newMockResolver returns a scripted resolver logging into calls.
func newMockResolver(name string, calls *[]string, match func(base, property any) bool) *mockResolver {
	return &mockResolver{name: name, calls: calls, match: match}
}

func (m *mockResolver) withValue(v any) *mockResolver {
	m.value = v
	return m
}

func (m *mockResolver) withError(err error) *mockResolver {
	m.err = err
	return m
}

func (m *mockResolver) withCommonType(t reflect.Type) *mockResolver {
	m.commonType = t
	return m
}

func (m *mockResolver) record(op string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name+"."+op)
	}
}

func (m *mockResolver) GetValue(ctx *Context, base, property any) (any, bool, error) {
	m.record("GetValue")
	if !m.match(base, property) {
		return nil, false, nil
	}
	if m.err != nil {
		return nil, false, m.err
	}
	return m.value, true, nil
}

func (m *mockResolver) GetType(ctx *Context, base, property any) (reflect.Type, bool, error) {
	m.record("GetType")
	if !m.match(base, property) {
		return nil, false, nil
	}
	if m.err != nil {
		return nil, false, m.err
	}
	return reflect.TypeOf(m.value), true, nil
}

func (m *mockResolver) SetValue(ctx *Context, base, property, value any) (bool, error) {
	m.record("SetValue")
	if !m.match(base, property) {
		return false, nil
	}
	if m.err != nil {
		return false, m.err
	}
	m.value = value
	return true, nil
}

func (m *mockResolver) IsReadOnly(ctx *Context, base, property any) (bool, bool, error) {
	m.record("IsReadOnly")
	if !m.match(base, property) {
		return false, false, nil
	}
	if m.err != nil {
		return false, false, m.err
	}
	return false, true, nil
}

func (m *mockResolver) CommonPropertyType(ctx *Context, base any) reflect.Type {
	m.record("CommonPropertyType")
	return m.commonType
}
