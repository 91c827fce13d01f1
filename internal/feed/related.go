package feed

import (
	"slices"

	"github.com/orgball2608/contentflow/internal/domain"
)

// RootOf follows sourceId links from id to the oldest ancestor still present.
// A dangling sourceId ends the walk. Cycles stop at the first revisited post.
func RootOf(items []domain.Post, id string) (domain.Post, bool) {
	byID := index(items)
	cur, ok := byID[id]
	if !ok {
		return domain.Post{}, false
	}

	seen := map[string]bool{cur.ID: true}
	for cur.SourceID != "" {
		parent, ok := byID[cur.SourceID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		cur = parent
	}
	return cur, true
}

// RelatedOf returns the root of id's chain and all of its descendants,
// ordered by createdAt. Every member of a chain yields the same set.
func RelatedOf(items []domain.Post, id string) []domain.Post {
	root, ok := RootOf(items, id)
	if !ok {
		return nil
	}

	members := map[string]bool{root.ID: true}
	for grew := true; grew; {
		grew = false
		for _, p := range items {
			if !members[p.ID] && p.SourceID != "" && members[p.SourceID] {
				members[p.ID] = true
				grew = true
			}
		}
	}

	out := make([]domain.Post, 0, len(members))
	for _, p := range items {
		if members[p.ID] {
			out = append(out, p)
		}
	}
	sortOldest(out)
	return out
}

// TreeOf nests id's chain under its root.
func TreeOf(items []domain.Post, id string) *Node {
	root, ok := RootOf(items, id)
	if !ok {
		return nil
	}

	children := map[string][]domain.Post{}
	for _, p := range RelatedOf(items, id) {
		if p.ID != root.ID {
			children[p.SourceID] = append(children[p.SourceID], p)
		}
	}

	seen := map[string]bool{}
	var build func(p domain.Post) *Node
	build = func(p domain.Post) *Node {
		seen[p.ID] = true
		n := &Node{Post: p, Children: []*Node{}}
		for _, c := range children[p.ID] {
			if !seen[c.ID] {
				n.Children = append(n.Children, build(c))
			}
		}
		return n
	}
	return build(root)
}

func index(items []domain.Post) map[string]domain.Post {
	m := make(map[string]domain.Post, len(items))
	for _, p := range items {
		m[p.ID] = p
	}
	return m
}

func sortOldest(items []domain.Post) {
	slices.SortStableFunc(items, func(a, b domain.Post) int {
		switch {
		case a.CreatedAt < b.CreatedAt:
			return -1
		case a.CreatedAt > b.CreatedAt:
			return 1
		}
		return 0
	})
}
