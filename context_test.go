package exprel

import (
	"context"
	"reflect"
	"testing"
)

func TestContext_Attributes(t *testing.T) {
	type key struct{}
	ctx := NewContext(context.Background(), NewCompositeResolver())

	if _, ok := ctx.Get(key{}); ok {
		t.Fatal("empty context has attributes")
	}
	ctx.Put(key{}, "v")
	if v, ok := ctx.Get(key{}); !ok || v != "v" {
		t.Fatalf("got (%v, %v)", v, ok)
	}
	ctx.Delete(key{})
	if _, ok := ctx.Get(key{}); ok {
		t.Fatal("attribute survived Delete")
	}
}

func TestContext_StandaloneIdentifierMarker(t *testing.T) {
	ctx := NewContext(context.Background(), NewCompositeResolver())
	if ctx.IsStandaloneIdentifier() {
		t.Fatal("marker set on a fresh context")
	}
	ctx.MarkStandaloneIdentifier()
	if !ctx.IsStandaloneIdentifier() {
		t.Fatal("marker not readable")
	}
	ctx.ClearStandaloneIdentifier()
	if ctx.IsStandaloneIdentifier() {
		t.Fatal("marker survived Clear")
	}
}

func TestContext_ResetKeepsAttributes(t *testing.T) {
	ctx := NewContext(context.Background(), NewCompositeResolver())
	ctx.MarkStandaloneIdentifier()
	ctx.MarkResolved("base", "prop")

	ctx.Reset()
	if ctx.Resolved() {
		t.Fatal("resolved pair survived Reset")
	}
	if !ctx.IsStandaloneIdentifier() {
		t.Fatal("attributes must be evaluation-scoped, not attempt-scoped")
	}
}

func TestContext_ConvertToType(t *testing.T) {
	t.Run("falls back to Coerce without converters", func(t *testing.T) {
		ctx := NewContext(context.Background(), NewCompositeResolver(&MapResolver{}))
		v, err := ctx.ConvertToType(41, stringType)
		if err != nil || v != "41" {
			t.Fatalf("got (%v, %v)", v, err)
		}
	})

	t.Run("chain converters run first", func(t *testing.T) {
		chain := NewCompositeResolver(&OptionalResolver{})
		ctx := NewContext(context.Background(), chain)
		v, err := ctx.ConvertToType(OptionalOf("wrapped"), stringType)
		if err != nil || v != "wrapped" {
			t.Fatalf("got (%v, %v)", v, err)
		}
	})

	t.Run("failure is an error, not a silent nil", func(t *testing.T) {
		ctx := NewContext(context.Background(), NewCompositeResolver())
		if _, err := ctx.ConvertToType("text", reflect.TypeOf(employee{})); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestContext_GoContext(t *testing.T) {
	if NewContext(nil, nil).Context() == nil {
		t.Fatal("Context() must never return nil")
	}
	type ctxKey struct{}
	goCtx := context.WithValue(context.Background(), ctxKey{}, "v")
	if NewContext(goCtx, nil).Context().Value(ctxKey{}) != "v" {
		t.Fatal("wrapped context not returned")
	}
}
