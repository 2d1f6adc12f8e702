package exprel

import (
	"errors"
	"reflect"
	"testing"
)

func optionalChain() *CompositeResolver {
	return NewCompositeResolver(
		&OptionalResolver{},
		&MapResolver{},
		&SliceResolver{},
		&StructResolver{},
	)
}

func TestOptionalResolver_GetValue(t *testing.T) {
	r := &OptionalResolver{}

	t.Run("empty wrapper with no property resolves to nil", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.GetValue(ctx, EmptyOptional(), nil)
		if err != nil || !ok || v != nil {
			t.Fatalf("got (%v, %v, %v), want resolved nil", v, ok, err)
		}
	})

	t.Run("present wrapper with no property unwraps", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.GetValue(ctx, OptionalOf("inner"), nil)
		if err != nil || !ok || v != "inner" {
			t.Fatalf("got (%v, %v, %v), want inner", v, ok, err)
		}
	})

	t.Run("present wrapper with a property delegates to the top-level chain", func(t *testing.T) {
		chain := optionalChain()
		ctx := newTestContext(chain)
		wrapped := OptionalOf(employee{Name: "Ada"})

		v, ok, err := r.GetValue(ctx, wrapped, "Name")
		if err != nil || !ok {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
		direct, _, err := chain.GetValue(ctx, employee{Name: "Ada"}, "Name")
		if err != nil {
			t.Fatal(err)
		}
		if v != direct {
			t.Fatalf("delegated %v != direct %v", v, direct)
		}
	})

	t.Run("empty wrapper with a property resolves to nil before later resolvers", func(t *testing.T) {
		var calls []string
		bean := newMockResolver("bean", &calls, matchAny)
		chain := NewCompositeResolver(&OptionalResolver{}, bean)
		ctx := newTestContext(chain)

		v, ok, err := chain.GetValue(ctx, EmptyOptional(), "name")
		if err != nil || !ok || v != nil {
			t.Fatalf("got (%v, %v, %v), want resolved nil", v, ok, err)
		}
		if len(calls) != 0 {
			t.Fatalf("later resolver consulted: %v", calls)
		}
	})

	t.Run("declines non-optional bases", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		if _, ok, err := r.GetValue(ctx, "plain", "p"); ok || err != nil {
			t.Fatalf("got (ok=%v, err=%v), want decline", ok, err)
		}
	})
}

func TestOptionalResolver_ReadOnly(t *testing.T) {
	r := &OptionalResolver{}
	ctx := newTestContext(optionalChain())

	ro, ok, err := r.IsReadOnly(ctx, OptionalOf(1), "p")
	if err != nil || !ok || !ro {
		t.Fatalf("IsReadOnly = (%v, %v, %v), want read-only", ro, ok, err)
	}

	// setValue on an empty optional is NotWritable, not NotFound: the
	// resolver recognizes the wrapper shape before checking anything else.
	var notWritable *PropertyNotWritableError
	if _, err := r.SetValue(ctx, EmptyOptional(), "missing.path", 1); !errors.As(err, &notWritable) {
		t.Fatalf("got %v, want PropertyNotWritableError", err)
	}

	typ, ok, err := r.GetType(ctx, OptionalOf(1), "p")
	if err != nil || !ok || typ != nil {
		t.Fatalf("GetType = (%v, %v, %v), want nil type", typ, ok, err)
	}

	if got := r.CommonPropertyType(ctx, OptionalOf(1)); got != AnyType {
		t.Fatalf("CommonPropertyType = %v, want AnyType", got)
	}
}

func TestOptionalResolver_Invoke(t *testing.T) {
	r := &OptionalResolver{}

	t.Run("delegates to the unwrapped value", func(t *testing.T) {
		chain := optionalChain()
		ctx := newTestContext(chain)
		v, ok, err := r.Invoke(ctx, OptionalOf(employee{Name: "Ada"}), "Greet", nil, []any{"Hello"})
		if err != nil || !ok || v != "Hello Ada" {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
	})

	t.Run("empty wrapper resolves to nil without delegation", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.Invoke(ctx, EmptyOptional(), "Greet", nil, nil)
		if err != nil || !ok || v != nil {
			t.Fatalf("got (%v, %v, %v), want resolved nil", v, ok, err)
		}
	})
}

func TestOptionalResolver_ConvertToType(t *testing.T) {
	r := &OptionalResolver{}

	t.Run("assignable inner value passes through unchanged", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.ConvertToType(ctx, OptionalOf("text"), stringType)
		if err != nil || !ok || v != "text" {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
	})

	t.Run("non-assignable inner value goes through generic conversion", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.ConvertToType(ctx, OptionalOf(42), stringType)
		if err != nil || !ok || v != "42" {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
	})

	t.Run("empty wrapper converts nil", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		v, ok, err := r.ConvertToType(ctx, EmptyOptional(), stringType)
		if err != nil || !ok || v != "" {
			t.Fatalf("got (%v, %v, %v), want zero string", v, ok, err)
		}
	})

	t.Run("failed generic conversion declines instead of failing", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		structTarget := reflect.TypeOf(employee{})
		v, ok, err := r.ConvertToType(ctx, OptionalOf("not an employee"), structTarget)
		if err != nil || ok {
			t.Fatalf("got (%v, %v, %v), want decline", v, ok, err)
		}
	})

	t.Run("declines non-optional objects", func(t *testing.T) {
		ctx := newTestContext(optionalChain())
		_, ok, err := r.ConvertToType(ctx, "plain", stringType)
		if err != nil || ok {
			t.Fatalf("got (ok=%v, err=%v), want decline", ok, err)
		}
	})
}

func TestOptionalRoundTrip(t *testing.T) {
	// wrapping then resolving with no property returns the value unchanged
	r := &OptionalResolver{}
	ctx := newTestContext(optionalChain())

	for _, v := range []any{42, "text", nil} {
		got, ok, err := r.GetValue(ctx, OptionalOf(v), nil)
		if err != nil || !ok {
			t.Fatalf("wrap %v: got (%v, %v)", v, ok, err)
		}
		if got != v {
			t.Fatalf("wrap %v: got %v back", v, got)
		}
	}
}
