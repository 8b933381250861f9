package lineage

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when NewCache is given a non-positive size.
const DefaultCacheSize = 4096

// Cache is an Accessor that remembers resolved nodes. Misses and errors are
// never cached, so a node that appears later in the store becomes visible.
type Cache struct {
	acc   Accessor
	nodes *lru.Cache[ID, Node]
}

// NewCache wraps acc with an LRU of the given size.
func NewCache(acc Accessor, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	nodes, err := lru.New[ID, Node](size)
	if err != nil {
		return nil, fmt.Errorf("create node cache: %w", err)
	}
	return &Cache{acc: acc, nodes: nodes}, nil
}

// Resolve implements Accessor.Resolve.
func (c *Cache) Resolve(id ID) (Node, error) {
	if node, ok := c.nodes.Get(id); ok {
		return node, nil
	}
	node, err := c.acc.Resolve(id)
	if err != nil {
		return Node{}, err
	}
	c.nodes.Add(id, node)
	return node, nil
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	return c.nodes.Len()
}

// Purge drops every cached node.
func (c *Cache) Purge() {
	c.nodes.Purge()
}
