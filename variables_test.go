package exprel

import (
	"fmt"
	"sync"
	"testing"
)

func TestVarResolver(t *testing.T) {
	t.Run("resolves known names with a nil base", func(t *testing.T) {
		r := NewVarResolver(map[string]any{"user": "ada"})
		ctx := newTestContext(NewCompositeResolver(r))
		v, ok, err := r.GetValue(ctx, nil, "user")
		if err != nil || !ok || v != "ada" {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
	})

	t.Run("unknown names decline so later resolvers can try", func(t *testing.T) {
		r := NewVarResolver(nil)
		ctx := newTestContext(NewCompositeResolver(r))
		if _, ok, err := r.GetValue(ctx, nil, "ghost"); ok || err != nil {
			t.Fatalf("got (ok=%v, err=%v), want decline", ok, err)
		}
	})

	t.Run("declines non-nil bases and non-string properties", func(t *testing.T) {
		r := NewVarResolver(map[string]any{"user": "ada"})
		ctx := newTestContext(NewCompositeResolver(r))
		if _, ok, _ := r.GetValue(ctx, "base", "user"); ok {
			t.Fatal("resolved with a non-nil base")
		}
		if _, ok, _ := r.GetValue(ctx, nil, 42); ok {
			t.Fatal("resolved a non-string property")
		}
	})

	t.Run("SetValue defines new variables", func(t *testing.T) {
		r := NewVarResolver(nil)
		ctx := newTestContext(NewCompositeResolver(r))
		ok, err := r.SetValue(ctx, nil, "answer", 42)
		if err != nil || !ok {
			t.Fatalf("got (%v, %v)", ok, err)
		}
		v, ok, err := r.GetValue(ctx, nil, "answer")
		if err != nil || !ok || v != 42 {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
	})

	t.Run("loader runs only for stand-alone identifiers", func(t *testing.T) {
		loads := 0
		r := NewVarResolver(nil).WithLoader(func(name string) (any, bool) {
			loads++
			if name == "lazy" {
				return "loaded", true
			}
			return nil, false
		})
		chain := NewCompositeResolver(r)

		ctx := newTestContext(chain)
		if _, ok, _ := r.GetValue(ctx, nil, "lazy"); ok {
			t.Fatal("loader consulted without the stand-alone marker")
		}
		if loads != 0 {
			t.Fatalf("loads = %d, want 0", loads)
		}

		ctx.MarkStandaloneIdentifier()
		v, ok, err := r.GetValue(ctx, nil, "lazy")
		if err != nil || !ok || v != "loaded" {
			t.Fatalf("got (%v, %v, %v)", v, ok, err)
		}
		if loads != 1 {
			t.Fatalf("loads = %d, want 1", loads)
		}

		// memoized: a second lookup skips the loader
		if _, ok, _ := r.GetValue(ctx, nil, "lazy"); !ok {
			t.Fatal("memoized value not found")
		}
		if loads != 1 {
			t.Fatalf("loads = %d, want 1 after memoization", loads)
		}
	})

	t.Run("one resolver serves concurrent evaluations", func(t *testing.T) {
		r := NewVarResolver(nil).WithLoader(func(name string) (any, bool) {
			return "loaded:" + name, true
		})
		chain := NewCompositeResolver(r)

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					name := fmt.Sprintf("var%d", i%16)
					ctx := newTestContext(chain)
					ctx.MarkStandaloneIdentifier()
					v, ok, err := chain.GetValue(ctx, nil, name)
					if err != nil || !ok || v != "loaded:"+name {
						t.Errorf("goroutine %d: got (%v, %v, %v)", g, v, ok, err)
						return
					}
					if i%50 == 0 {
						if _, err := chain.SetValue(newTestContext(chain), nil, fmt.Sprintf("w%d-%d", g, i), i); err != nil {
							t.Errorf("goroutine %d: SetValue: %v", g, err)
							return
						}
					}
				}
			}(g)
		}
		wg.Wait()
	})

	t.Run("GetType and common property type", func(t *testing.T) {
		r := NewVarResolver(map[string]any{"user": "ada"})
		ctx := newTestContext(NewCompositeResolver(r))
		typ, ok, err := r.GetType(ctx, nil, "user")
		if err != nil || !ok || typ != AnyType {
			t.Fatalf("GetType = (%v, %v, %v), want AnyType", typ, ok, err)
		}
		if got := r.CommonPropertyType(ctx, nil); got != stringType {
			t.Fatalf("base nil: got %v, want string", got)
		}
		if got := r.CommonPropertyType(ctx, "base"); got != nil {
			t.Fatalf("base non-nil: got %v, want nil", got)
		}
	})
}
