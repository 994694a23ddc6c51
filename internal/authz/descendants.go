package authz

import (
	"context"
)

// ChildrenFunc returns the IDs of the direct children of every node in the
// frontier. Implementations must answer the whole frontier in one store
// round-trip, so the collector issues one query per tree level rather than
// one per node.
type ChildrenFunc func(ctx context.Context, frontier []string) ([]string, error)

// CollectDescendants returns every ID reachable by following child links
// transitively from the roots, excluding the roots themselves. The walk is
// breadth-level: each iteration fetches the children of the current frontier
// and stops when a level comes back empty. Already-seen IDs are never
// re-enqueued, so the walk terminates even on corrupt cyclic data.
func CollectDescendants(ctx context.Context, rootIDs []string, childrenOf ChildrenFunc) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	if len(rootIDs) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{}, len(rootIDs))
	frontier := make([]string, 0, len(rootIDs))
	for _, id := range rootIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for len(frontier) > 0 {
		children, err := childrenOf(ctx, frontier)
		if err != nil {
			return nil, err
		}

		next := children[:0:0]
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result[id] = struct{}{}
			next = append(next, id)
		}
		frontier = next
	}

	return result, nil
}

// DescendantsOf is the in-memory variant of CollectDescendants for callers
// that already hold a full parent → children adjacency map (the graph
// endpoint loads all folders once and walks them without further queries).
func DescendantsOf(rootIDs []string, childrenByParent map[string][]string) map[string]struct{} {
	result := make(map[string]struct{})

	seen := make(map[string]struct{}, len(rootIDs))
	frontier := make([]string, 0, len(rootIDs))
	for _, id := range rootIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for len(frontier) > 0 {
		var next []string
		for _, parent := range frontier {
			for _, child := range childrenByParent[parent] {
				if _, ok := seen[child]; ok {
					continue
				}
				seen[child] = struct{}{}
				result[child] = struct{}{}
				next = append(next, child)
			}
		}
		frontier = next
	}

	return result
}
