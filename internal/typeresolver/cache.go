package typeresolver

import (
	"container/list"
	"sync"
)

// nsNameCache is the composite-hash lookup the read path uses to resolve an
// NS_-kind type id to its ClassInfo: (namespace-hash, name-hash) -> entry.
//
// Reference: adapted from the teacher's internal/cache LRU block cache,
// generalized from a fixed-capacity, evictable CacheKey{FileNumber,
// BlockOffset} -> []byte table to an unbounded cacheKey{NamespaceHash,
// NameHash} -> *ClassInfo table. Registrations are rare and permanent
// relative to a resolver's lifetime, so eviction is dropped; the list is
// kept only to preserve the teacher's insertion-order bookkeeping idiom for
// future capacity-bounding if a very large registration set ever warrants
// it.
type nsNameCache struct {
	mu    sync.RWMutex
	table map[cacheKey]*list.Element
	order *list.List
}

type cacheKey struct {
	NamespaceHash uint64
	NameHash      uint64
}

type cacheEntry struct {
	key   cacheKey
	value *ClassInfo
}

func newNSNameCache() *nsNameCache {
	return &nsNameCache{
		table: make(map[cacheKey]*list.Element),
		order: list.New(),
	}
}

func (c *nsNameCache) Lookup(key cacheKey) (*ClassInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	elem, ok := c.table[key]
	if !ok {
		return nil, false
	}
	return elem.Value.(*cacheEntry).value, true
}

func (c *nsNameCache) Insert(key cacheKey, info *ClassInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.table[key]; ok {
		elem.Value.(*cacheEntry).value = info
		return
	}
	elem := c.order.PushBack(&cacheEntry{key: key, value: info})
	c.table[key] = elem
}
