package graph

import (
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Set is an insertion-ordered collection of items with unique keys. Adding an
// item whose key is already present is a no-op, so the first occurrence wins.
type Set[T any] struct {
	key   func(T) string
	items *orderedmap.OrderedMap[string, T]
}

func newSet[T any](key func(T) string) *Set[T] {
	return &Set[T]{
		key:   key,
		items: orderedmap.New[string, T](),
	}
}

// NewNodeSet returns a set of nodes keyed by node id.
func NewNodeSet() *Set[common.GraphNode] {
	return newSet(func(n common.GraphNode) string { return n.ID })
}

// NewEdgeSet returns a set of edges keyed by the (from, to) pair.
func NewEdgeSet() *Set[common.GraphEdge] {
	return newSet(func(e common.GraphEdge) string { return e.Key() })
}

// Add inserts item unless an item with the same key exists. It reports
// whether the item was added.
func (s *Set[T]) Add(item T) bool {
	k := s.key(item)
	if _, ok := s.items.Get(k); ok {
		return false
	}
	s.items.Set(k, item)
	return true
}

// AddAll adds every item in order.
func (s *Set[T]) AddAll(items []T) {
	for _, item := range items {
		s.Add(item)
	}
}

func (s *Set[T]) Has(key string) bool {
	_, ok := s.items.Get(key)
	return ok
}

func (s *Set[T]) Len() int {
	return s.items.Len()
}

// Items returns the items in insertion order. The result is never nil.
func (s *Set[T]) Items() []T {
	out := make([]T, 0, s.items.Len())
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
