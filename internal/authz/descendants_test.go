package authz

import (
	"context"
	"testing"
)

// treeChildren builds a ChildrenFunc over a static adjacency map and counts
// how many times it is invoked.
func treeChildren(children map[string][]string, calls *int) ChildrenFunc {
	return func(ctx context.Context, frontier []string) ([]string, error) {
		*calls++
		var out []string
		for _, id := range frontier {
			out = append(out, children[id]...)
		}
		return out, nil
	}
}

func TestCollectDescendants(t *testing.T) {
	tests := []struct {
		name     string
		children map[string][]string
		roots    []string
		want     []string
		// one call per level plus the final empty frontier check
		wantCalls int
	}{
		{
			name: "linear chain",
			children: map[string][]string{
				"a": {"b"},
				"b": {"c"},
				"c": {"d"},
			},
			roots:     []string{"a"},
			want:      []string{"b", "c", "d"},
			wantCalls: 4,
		},
		{
			name:      "leaf has no descendants",
			children:  map[string][]string{},
			roots:     []string{"a"},
			want:      nil,
			wantCalls: 1,
		},
		{
			name: "wide level resolved in one call",
			children: map[string][]string{
				"a": {"b", "c"},
				"b": {"d"},
				"c": {"e"},
			},
			roots:     []string{"a"},
			want:      []string{"b", "c", "d", "e"},
			wantCalls: 3,
		},
		{
			name: "cycle terminates",
			children: map[string][]string{
				"a": {"b"},
				"b": {"a"},
			},
			roots:     []string{"a"},
			want:      []string{"b"},
			wantCalls: 2,
		},
		{
			name: "multiple roots share a frontier",
			children: map[string][]string{
				"a": {"c"},
				"b": {"d"},
			},
			roots:     []string{"a", "b"},
			want:      []string{"c", "d"},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := CollectDescendants(context.Background(), tt.roots, treeChildren(tt.children, &calls))
			if err != nil {
				t.Fatalf("CollectDescendants: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d descendants %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for _, id := range tt.want {
				if _, ok := got[id]; !ok {
					t.Errorf("missing descendant %q", id)
				}
			}
			for _, root := range tt.roots {
				if _, ok := got[root]; ok {
					t.Errorf("root %q must not appear in its own descendants", root)
				}
			}
			if calls != tt.wantCalls {
				t.Errorf("store round-trips = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestCollectDescendantsEmptyRoots(t *testing.T) {
	calls := 0
	got, err := CollectDescendants(context.Background(), nil, treeChildren(nil, &calls))
	if err != nil {
		t.Fatalf("CollectDescendants: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no descendants, got %v", got)
	}
	if calls != 0 {
		t.Errorf("expected no store calls for empty roots, got %d", calls)
	}
}

func TestDescendantsOf(t *testing.T) {
	children := map[string][]string{
		"a": {"b", "c"},
		"c": {"d"},
		"x": {"y"},
	}

	got := DescendantsOf([]string{"a"}, children)

	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("missing descendant %q", id)
		}
	}
	if _, ok := got["y"]; ok {
		t.Error("unrelated subtree leaked into result")
	}
}
