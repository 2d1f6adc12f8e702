package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		in   string
		want []any
	}{
		{"name", []any{"name"}},
		{"users[0].name", []any{"users", 0, "name"}},
		{"matrix[1][2]", []any{"matrix", 1, 2}},
		{`config["region"]`, []any{"config", "region"}},
		{"a.b.c", []any{"a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := splitPath(tc.in)
			if err != nil {
				t.Fatalf("splitPath: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("segments mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("rejects malformed paths", func(t *testing.T) {
		for _, in := range []string{"", "a[1", "."} {
			if _, err := splitPath(in); err == nil {
				t.Fatalf("splitPath(%q): expected an error", in)
			}
		}
	})
}
