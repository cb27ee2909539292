// Package catalog provides an in-memory item store that context queries can
// run against.
//
// A Catalog is both the everything sequence of a query and an index
// provider. It keeps items in insertion order and maintains two indexes:
// one by item id and one by provided capability (namespace and name).
// Index candidates are always returned in catalog order, so operators that
// depend on order, such as first, give the same answer with or without the
// index.
//
// # Example
//
//	cat, err := catalog.LoadFile("items.yaml")
//	res, err := ev.Query(ctx, expr, cat, evaluator.WithIndexProvider(cat))
package catalog

import (
	"sync"

	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

type capKey struct {
	namespace string
	name      string
}

// Catalog is an append-only, insertion-ordered set of items.
//
// Safe for concurrent use. Iteration works on a snapshot taken when the
// iterator is created.
type Catalog struct {
	mu    sync.RWMutex
	items []*model.Item
	byID  map[string][]int
	byCap map[capKey][]int
}

// New creates a catalog holding items.
func New(items ...*model.Item) *Catalog {
	c := &Catalog{
		byID:  make(map[string][]int),
		byCap: make(map[capKey][]int),
	}
	c.Add(items...)
	return c
}

// Add appends items. Nil items are ignored.
func (c *Catalog) Add(items ...*model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range items {
		if it == nil {
			continue
		}
		pos := len(c.items)
		c.items = append(c.items, it)
		c.byID[it.ID] = append(c.byID[it.ID], pos)
		for _, cp := range it.ProvidedCapabilities() {
			k := capKey{cp.Namespace, cp.Name}
			if list := c.byCap[k]; len(list) > 0 && list[len(list)-1] == pos {
				continue
			}
			c.byCap[k] = append(c.byCap[k], pos)
		}
	}
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of the items in insertion order.
func (c *Catalog) Items() []*model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*model.Item(nil), c.items...)
}

// Iterator implements types.Iterable.
func (c *Catalog) Iterator() types.Iterator {
	c.mu.RLock()
	snapshot := c.items
	c.mu.RUnlock()

	i := 0
	return types.IteratorFunc(func() (interface{}, bool) {
		if i >= len(snapshot) {
			return nil, false
		}
		it := snapshot[i]
		i++
		return it, true
	})
}

// Index implements evaluator.IndexProvider.
func (c *Catalog) Index(member string) (evaluator.Index, bool) {
	switch member {
	case "id":
		return idIndex{c}, true
	case evaluator.MemberProvidedCapabilities:
		return capabilityIndex{c}, true
	}
	return nil, false
}

// at returns an iterator over the items at the given positions.
func (c *Catalog) at(positions []int) types.Iterator {
	c.mu.RLock()
	snapshot := c.items
	positions = append([]int(nil), positions...)
	c.mu.RUnlock()

	i := 0
	return types.IteratorFunc(func() (interface{}, bool) {
		if i >= len(positions) {
			return nil, false
		}
		it := snapshot[positions[i]]
		i++
		return it, true
	})
}

func (c *Catalog) withID(id string) types.Iterator {
	c.mu.RLock()
	list := c.byID[id]
	c.mu.RUnlock()
	return c.at(list)
}

func (c *Catalog) withCapability(namespace, name string) types.Iterator {
	c.mu.RLock()
	list := c.byCap[capKey{namespace, name}]
	c.mu.RUnlock()
	return c.at(list)
}
